package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

// AnalyticsService rolls checkout-position history up into dashboards.
// Read-only; every outward view passes through the subscription gate.
type AnalyticsService struct {
	CheckoutRepo *repository.CheckoutRepository
	Gate         *SubscriptionGate
}

func NewAnalyticsService(checkoutRepo *repository.CheckoutRepository, gate *SubscriptionGate) *AnalyticsService {
	return &AnalyticsService{CheckoutRepo: checkoutRepo, Gate: gate}
}

type WeeklyPoint struct {
	Week        string `json:"week"` // ISO year-Www
	Appearances int64  `json:"appearances"`
	Selections  int64  `json:"selections"`
}

type CheckoutAnalytics struct {
	Summary      *repository.PositionSummary  `json:"summary"`
	Distribution []repository.PositionBucket  `json:"distribution"`
	TopMerchants []repository.CounterpartyRow `json:"topMerchants,omitempty"`
	TopCouriers  []repository.CounterpartyRow `json:"topCouriers,omitempty"`
	Trend        []repository.TrendPoint      `json:"trend"`
	WeeklyTrend  []WeeklyPoint                `json:"weeklyTrend"`
	Subscription SubscriptionView             `json:"subscription"`
}

// ForCourier builds the courier-side dashboard: how this courier placed
// across merchant checkouts, with merchant breadth gated by tier.
func (s *AnalyticsService) ForCourier(ctx context.Context, courierID uint, tier string, isAdmin bool, requestedDays int) (*CheckoutAnalytics, error) {
	return s.rollup(ctx, "courier_id", "merchant_id", courierID, tier, isAdmin, requestedDays)
}

// ForMerchant mirrors the courier view from the merchant side.
func (s *AnalyticsService) ForMerchant(ctx context.Context, merchantID uint, tier string, isAdmin bool, requestedDays int) (*CheckoutAnalytics, error) {
	return s.rollup(ctx, "merchant_id", "courier_id", merchantID, tier, isAdmin, requestedDays)
}

func (s *AnalyticsService) rollup(ctx context.Context, byColumn, groupColumn string, id uint, tier string, isAdmin bool, requestedDays int) (*CheckoutAnalytics, error) {
	lim, err := s.Gate.LimitsFor(ctx, tier, isAdmin)
	if err != nil {
		return nil, err
	}
	from, _, err := s.Gate.ClampLookback(lim, requestedDays)
	if err != nil {
		return nil, err
	}

	summary, err := s.CheckoutRepo.Summary(ctx, byColumn, id, from)
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}
	distribution, err := s.CheckoutRepo.Distribution(ctx, byColumn, id, from)
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}
	counterparties, err := s.CheckoutRepo.TopCounterparties(ctx, byColumn, groupColumn, id, from)
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}
	trend, err := s.CheckoutRepo.DailyTrend(ctx, byColumn, id, from)
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}

	kept, hidden := Truncate(counterparties, lim.MaxCounterparties)

	out := &CheckoutAnalytics{
		Summary:      summary,
		Distribution: distribution,
		Trend:        trend,
		WeeklyTrend:  foldWeekly(trend),
		Subscription: s.Gate.View(lim, hidden),
	}
	if byColumn == "courier_id" {
		out.TopMerchants = kept
	} else {
		out.TopCouriers = kept
	}
	return out, nil
}

// foldWeekly folds daily buckets into ISO weeks.
func foldWeekly(daily []repository.TrendPoint) []WeeklyPoint {
	byWeek := map[string]*WeeklyPoint{}
	var order []string
	for _, d := range daily {
		t, err := time.Parse("2006-01-02", d.Day)
		if err != nil {
			continue
		}
		year, week := t.ISOWeek()
		key := fmt.Sprintf("%04d-W%02d", year, week)
		p, ok := byWeek[key]
		if !ok {
			p = &WeeklyPoint{Week: key}
			byWeek[key] = p
			order = append(order, key)
		}
		p.Appearances += d.Appearances
		p.Selections += d.Selections
	}

	out := make([]WeeklyPoint, 0, len(order))
	for _, key := range order {
		out = append(out, *byWeek[key])
	}
	return out
}
