package services

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/middlewares"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

// RankRequest is the delivery context at merchant checkout time.
type RankRequest struct {
	SessionID   string  `json:"sessionId"`
	MerchantID  uint    `json:"merchantId"`
	DestCountry string  `json:"destCountry"`
	DestPostal  string  `json:"destPostal"`
	ValueCents  int64   `json:"valueCents"`
	WeightKg    float64 `json:"weightKg"`
	// Empty means all active couriers rated for the destination country.
	CourierIDs []uint `json:"courierIds"`
}

// RankedCourier carries the values used at ranking time; these are the same
// values snapshotted into the audit row.
type RankedCourier struct {
	CourierID     uint    `json:"courierId"`
	Name          string  `json:"name"`
	PositionShown int     `json:"positionShown"`
	TrustScore    float64 `json:"trustScore"`
	LowConfidence bool    `json:"lowConfidence"`
	PriceCents    int64   `json:"priceCents"`
	EtaMinutes    int     `json:"etaMinutes"`
}

// RankResult is returned to the storefront once the audit rows are durable.
type RankResult struct {
	SessionID string          `json:"sessionId"`
	Couriers  []RankedCourier `json:"couriers"`
}

// RankingService ranks eligible couriers at checkout and records one
// CheckoutPosition row per shown candidate before responding.
type RankingService struct {
	DB           *gorm.DB
	Scores       *ScoreCache
	CourierRepo  *repository.CourierRepository
	CheckoutRepo *repository.CheckoutRepository
}

func NewRankingService(
	db *gorm.DB,
	scores *ScoreCache,
	courierRepo *repository.CourierRepository,
	checkoutRepo *repository.CheckoutRepository,
) *RankingService {
	return &RankingService{
		DB: db, Scores: scores, CourierRepo: courierRepo, CheckoutRepo: checkoutRepo,
	}
}

// Rank selects eligible couriers, orders them (trust desc, price asc, ETA
// asc, courier id asc) and persists the audit rows. Zero eligible couriers is
// a valid empty result, not an error.
func (s *RankingService) Rank(ctx context.Context, req *RankRequest) (*RankResult, error) {
	// A requested ranking runs to completion: the storefront hanging up
	// mid-call must not leave a shown-but-unaudited result, so the whole
	// flow is detached from request cancellation.
	ctx = context.WithoutCancel(ctx)

	if req.DestCountry == "" {
		return nil, apperr.Validation("destCountry is required")
	}
	if req.WeightKg < 0 {
		return nil, apperr.Validation("weightKg must be non-negative")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	candidates, err := s.CourierRepo.ListCandidates(ctx, req.DestCountry, req.CourierIDs)
	if err != nil {
		middlewares.RecordCheckoutRank(false)
		return nil, apperr.DataUnavailable(err)
	}
	if len(candidates) == 0 {
		middlewares.RecordCheckoutRank(true)
		return &RankResult{SessionID: req.SessionID, Couriers: []RankedCourier{}}, nil
	}

	ranked := make([]RankedCourier, 0, len(candidates))
	for _, c := range candidates {
		rate, err := s.CourierRepo.RateFor(ctx, c.ID, req.DestCountry)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			middlewares.RecordCheckoutRank(false)
			return nil, apperr.DataUnavailable(err)
		}

		ts, _, err := s.Scores.Get(ctx, c.ID, false)
		if err != nil {
			middlewares.RecordCheckoutRank(false)
			return nil, err
		}

		ranked = append(ranked, RankedCourier{
			CourierID:     c.ID,
			Name:          c.Name,
			TrustScore:    ts.Score,
			LowConfidence: ts.LowConfidence,
			PriceCents:    rate.BaseFee + int64(float64(rate.PerKgFee)*req.WeightKg),
			EtaMinutes:    rate.EtaMinutes,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TrustScore != b.TrustScore {
			return a.TrustScore > b.TrustScore
		}
		if a.PriceCents != b.PriceCents {
			return a.PriceCents < b.PriceCents
		}
		if a.EtaMinutes != b.EtaMinutes {
			return a.EtaMinutes < b.EtaMinutes
		}
		return a.CourierID < b.CourierID
	})

	rows := make([]entity.CheckoutPosition, 0, len(ranked))
	for i := range ranked {
		ranked[i].PositionShown = i + 1
		rows = append(rows, entity.CheckoutPosition{
			SessionID:        req.SessionID,
			CourierID:        ranked[i].CourierID,
			MerchantID:       req.MerchantID,
			PositionShown:    ranked[i].PositionShown,
			TrustScoreAtTime: ranked[i].TrustScore,
			PriceAtTime:      ranked[i].PriceCents,
			EtaMinutes:       ranked[i].EtaMinutes,
			OrderValueCents:  req.ValueCents,
			WeightKg:         req.WeightKg,
			DestCountry:      req.DestCountry,
			DestPostal:       req.DestPostal,
		})
	}

	// Write-before-respond: the audit rows are durable before the result
	// leaves this function.
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.CheckoutRepo.CreateBatch(tx, rows)
	})
	if err != nil {
		middlewares.RecordCheckoutRank(false)
		return nil, apperr.DataUnavailable(err)
	}

	middlewares.RecordCheckoutRank(true)
	return &RankResult{SessionID: req.SessionID, Couriers: ranked}, nil
}

// Track appends a single externally-observed position row (storefront
// integrations that render their own ranking report through this).
func (s *RankingService) Track(ctx context.Context, row *entity.CheckoutPosition) (uint, error) {
	if row.SessionID == "" {
		row.SessionID = uuid.NewString()
	}
	if row.CourierID == 0 {
		return 0, apperr.Validation("courierId is required")
	}
	if row.PositionShown < 1 {
		return 0, apperr.Validation("positionShown must be >= 1")
	}
	row.WasSelected = false

	if err := s.CheckoutRepo.Create(context.WithoutCancel(ctx), row); err != nil {
		return 0, apperr.DataUnavailable(err)
	}
	return row.ID, nil
}

// MarkSelected flips was_selected exactly once per session. Selecting the
// same courier again is a no-op success; selecting a different courier after
// one is already chosen is a conflict and never un-sets the first.
func (s *RankingService) MarkSelected(ctx context.Context, sessionID string, courierID uint) error {
	if sessionID == "" || courierID == 0 {
		return apperr.Validation("sessionId and courierId are required")
	}

	return s.DB.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		selected, err := s.CheckoutRepo.SelectedCourier(tx, sessionID)
		if err != nil {
			return apperr.DataUnavailable(err)
		}
		if selected != 0 {
			if selected == courierID {
				return nil
			}
			return apperr.Conflict("a courier was already selected for this session")
		}

		affected, err := s.CheckoutRepo.MarkSelected(tx, sessionID, courierID)
		if err != nil {
			return apperr.DataUnavailable(err)
		}
		if affected == 0 {
			return apperr.NotFound("no checkout position for this session and courier")
		}
		return nil
	})
}
