package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

// Window bounds a metrics aggregation. Zero values mean "everything up to
// now, capped at the configured maximum lookback".
type Window struct {
	From time.Time
	To   time.Time
}

// CourierMetrics is the aggregator output consumed by the trust score
// calculator.
type CourierMetrics struct {
	CourierID          uint     `json:"courierId"`
	TotalOrders        int64    `json:"totalOrders"`
	CompletedOrders    int64    `json:"completedOrders"`
	OnTimeDeliveries   int64    `json:"onTimeDeliveries"`
	TotalReviews       int64    `json:"totalReviews"`
	AverageRating      float64  `json:"averageRating"`
	AvgResponseMinutes *float64 `json:"avgResponseMinutes,omitempty"`
}

// CompletionRate is completed/total as a percentage; 0 when there are no
// orders (defined, never NaN).
func (m CourierMetrics) CompletionRate() float64 {
	if m.TotalOrders == 0 {
		return 0
	}
	return float64(m.CompletedOrders) / float64(m.TotalOrders) * 100
}

// OnTimeRate uses delivered orders only as its denominator.
func (m CourierMetrics) OnTimeRate() float64 {
	if m.CompletedOrders == 0 {
		return 0
	}
	return float64(m.OnTimeDeliveries) / float64(m.CompletedOrders) * 100
}

// MetricsService aggregates per-courier delivery statistics. Read-only.
type MetricsService struct {
	Cfg         *configs.Config
	OrderRepo   *repository.OrderRepository
	ReviewRepo  *repository.ReviewRepository
	CourierRepo *repository.CourierRepository

	once        sync.Once
	deliveredID uint
	initErr     error
}

func NewMetricsService(
	cfg *configs.Config,
	orderRepo *repository.OrderRepository,
	reviewRepo *repository.ReviewRepository,
	courierRepo *repository.CourierRepository,
) *MetricsService {
	return &MetricsService{
		Cfg: cfg, OrderRepo: orderRepo, ReviewRepo: reviewRepo, CourierRepo: courierRepo,
	}
}

func (s *MetricsService) initIDs() error {
	s.once.Do(func() {
		s.deliveredID, s.initErr = s.OrderRepo.GetStatusIDByName(entity.StatusDelivered)
	})
	return s.initErr
}

// resolveWindow validates and defaults the window. Windows wider than the
// configured maximum are rejected to bound query cost.
func (s *MetricsService) resolveWindow(w Window) (Window, error) {
	maxSpan := time.Duration(s.Cfg.MaxWindowDays) * 24 * time.Hour

	if w.To.IsZero() {
		w.To = time.Now()
	}
	if w.From.IsZero() {
		w.From = w.To.Add(-maxSpan)
	}
	if w.From.After(w.To) {
		return Window{}, apperr.Validation("window start is after window end")
	}
	if w.To.Sub(w.From) > maxSpan {
		return Window{}, apperr.Validation("window exceeds maximum lookback")
	}
	return w, nil
}

// CourierMetrics computes delivery statistics for one courier over a window.
// Storage failures surface as a retryable DataUnavailable, never as zeros.
func (s *MetricsService) CourierMetrics(ctx context.Context, courierID uint, w Window) (*CourierMetrics, error) {
	w, err := s.resolveWindow(w)
	if err != nil {
		return nil, err
	}

	if _, err := s.CourierRepo.Get(ctx, courierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("courier not found")
		}
		return nil, apperr.DataUnavailable(err)
	}
	if err := s.initIDs(); err != nil {
		return nil, apperr.DataUnavailable(err)
	}

	grace := time.Duration(s.Cfg.GraceMinutes) * time.Minute
	stats, err := s.OrderRepo.CountDeliveryStats(ctx, courierID, s.deliveredID, w.From, w.To, grace)
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}

	ratings, err := s.ReviewRepo.RatingStats(ctx, courierID, w.From, w.To)
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}

	response, err := s.OrderRepo.AvgResponseMinutes(ctx, courierID, w.From, w.To)
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}

	return &CourierMetrics{
		CourierID:          courierID,
		TotalOrders:        stats.TotalOrders,
		CompletedOrders:    stats.CompletedOrders,
		OnTimeDeliveries:   stats.OnTimeDeliveries,
		TotalReviews:       ratings.Count,
		AverageRating:      ratings.Avg,
		AvgResponseMinutes: response,
	}, nil
}
