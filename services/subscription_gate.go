package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

// SubscriptionGate truncates outward-facing result sets to what the caller's
// tier may see. It never drops silently: every gated view reports how much
// was hidden.
type SubscriptionGate struct {
	Cfg  *configs.Config
	Repo *repository.SubscriptionRepository
}

func NewSubscriptionGate(cfg *configs.Config, repo *repository.SubscriptionRepository) *SubscriptionGate {
	return &SubscriptionGate{Cfg: cfg, Repo: repo}
}

// unlimited is the admin bypass; limit 0 in a tier row also means unlimited.
var unlimited = entity.SubscriptionLimits{Tier: "admin"}

// LimitsFor resolves the tier row. Admins bypass truncation entirely; an
// unknown tier falls back to the free tier rather than failing open.
func (g *SubscriptionGate) LimitsFor(ctx context.Context, tier string, isAdmin bool) (*entity.SubscriptionLimits, error) {
	if isAdmin {
		return &unlimited, nil
	}
	if tier == "" {
		tier = entity.TierFree
	}
	lim, err := g.Repo.LimitsFor(ctx, tier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			lim, err = g.Repo.LimitsFor(ctx, entity.TierFree)
			if err != nil {
				return nil, apperr.DataUnavailable(err)
			}
			return lim, nil
		}
		return nil, apperr.DataUnavailable(err)
	}
	return lim, nil
}

// Truncate keeps the top-limit items (the input is already ordered by the
// caller's ranking criteria) and reports the hidden remainder. limit <= 0 is
// unlimited. Invariant: len(kept) + hidden == len(items).
func Truncate[T any](items []T, limit int) (kept []T, hidden int) {
	if limit <= 0 || len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}

// CheckMarketBreadth bounds how many distinct destination markets a merchant
// may rank checkouts in. Markets already in use stay usable; only opening one
// past the limit is rejected, with upsell context.
func (g *SubscriptionGate) CheckMarketBreadth(lim *entity.SubscriptionLimits, markets []string, dest string) error {
	if lim.MaxMarkets <= 0 || dest == "" {
		return nil
	}
	for _, m := range markets {
		if m == dest {
			return nil
		}
	}
	if len(markets) >= lim.MaxMarkets {
		return apperr.SubscriptionLimited(lim.Tier, g.Cfg.UpgradeURL)
	}
	return nil
}

// ClampLookback bounds a requested lookback to the tier's maximum. An
// explicit request past the limit is an error carrying upsell context;
// requestedDays <= 0 means "as far as the tier allows".
func (g *SubscriptionGate) ClampLookback(lim *entity.SubscriptionLimits, requestedDays int) (time.Time, int, error) {
	maxDays := lim.MaxLookbackDays
	if maxDays <= 0 {
		maxDays = g.Cfg.MaxWindowDays
	}
	days := requestedDays
	if days <= 0 {
		days = maxDays
	}
	if days > maxDays {
		return time.Time{}, 0, apperr.SubscriptionLimited(lim.Tier, g.Cfg.UpgradeURL)
	}
	return time.Now().AddDate(0, 0, -days), days, nil
}

// SubscriptionView is attached to every gated response so the caller knows
// its tier and what was withheld.
type SubscriptionView struct {
	Tier            string `json:"tier"`
	MaxLookbackDays int    `json:"maxLookbackDays"`
	HiddenCount     int    `json:"hiddenCount"`
	UpgradeURL      string `json:"upgradeUrl,omitempty"`
}

func (g *SubscriptionGate) View(lim *entity.SubscriptionLimits, hidden int) SubscriptionView {
	v := SubscriptionView{
		Tier:            lim.Tier,
		MaxLookbackDays: lim.MaxLookbackDays,
		HiddenCount:     hidden,
	}
	if hidden > 0 {
		v.UpgradeURL = g.Cfg.UpgradeURL
	}
	return v
}
