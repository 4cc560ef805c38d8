package services

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/rabbitmq"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

type ReviewService struct {
	Cfg       *configs.Config
	DB        *gorm.DB
	Repo      *repository.ReviewRepository
	OrderRepo *repository.OrderRepository
	Cache     *ScoreCache
	Events    *rabbitmq.RabbitMQ

	once        sync.Once
	deliveredID uint
	initErr     error
}

func NewReviewService(
	cfg *configs.Config,
	db *gorm.DB,
	repo *repository.ReviewRepository,
	orderRepo *repository.OrderRepository,
	cache *ScoreCache,
	events *rabbitmq.RabbitMQ,
) *ReviewService {
	return &ReviewService{
		Cfg: cfg, DB: db, Repo: repo, OrderRepo: orderRepo, Cache: cache, Events: events,
	}
}

func (s *ReviewService) initIDs() error {
	s.once.Do(func() {
		s.deliveredID, s.initErr = s.OrderRepo.GetStatusIDByName(entity.StatusDelivered)
	})
	return s.initErr
}

type CreateReviewReq struct {
	OrderID            uint   `json:"orderId" binding:"required"`
	Rating             int    `json:"rating" binding:"required,min=1,max=5"`
	OnTimeScore        int    `json:"onTimeScore" binding:"omitempty,min=1,max=5"`
	CommunicationScore int    `json:"communicationScore" binding:"omitempty,min=1,max=5"`
	PackageScore       int    `json:"packageScore" binding:"omitempty,min=1,max=5"`
	Comments           string `json:"comments"`
}

// Create files a consumer review against the consumer's own delivered order.
// One review per order; reviews start pending and only count toward the
// trust score once approved.
func (s *ReviewService) Create(ctx context.Context, consumerID uint, req *CreateReviewReq) (*entity.Review, error) {
	if err := s.initIDs(); err != nil {
		return nil, apperr.DataUnavailable(err)
	}

	order, err := s.OrderRepo.Get(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.DataUnavailable(err)
	}
	if order.ConsumerID == nil || *order.ConsumerID != consumerID {
		return nil, apperr.Forbidden("order does not belong to this consumer")
	}
	if order.OrderStatusID != s.deliveredID {
		return nil, apperr.Validation("only delivered orders can be reviewed")
	}

	exists, err := s.Repo.ExistsForOrder(ctx, order.ID)
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}
	if exists {
		return nil, apperr.Conflict("order already reviewed")
	}

	rev := &entity.Review{
		Rating:             req.Rating,
		OnTimeScore:        defaultSub(req.OnTimeScore, req.Rating),
		CommunicationScore: defaultSub(req.CommunicationScore, req.Rating),
		PackageScore:       defaultSub(req.PackageScore, req.Rating),
		Comments:           req.Comments,
		Status:             entity.ReviewPending,
		ReviewDate:         time.Now(),
		OrderID:            order.ID,
		CourierID:          order.CourierID,
		ConsumerID:         &consumerID,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Repo.Create(tx, rev)
	})
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}

	s.Cache.Invalidate(order.CourierID)
	_ = s.Events.PublishScoreEvent(rabbitmq.ScoreEvent{CourierID: order.CourierID, Reason: "review_created"})
	return rev, nil
}

func defaultSub(v, rating int) int {
	if v == 0 {
		return rating
	}
	return v
}

// Moderate is the admin approve/reject transition, the only mutation a
// review allows after creation.
func (s *ReviewService) Moderate(ctx context.Context, reviewID uint, status string) error {
	if status != entity.ReviewApproved && status != entity.ReviewRejected {
		return apperr.Validation("status must be approved or rejected")
	}

	rev, err := s.Repo.Get(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("review not found")
		}
		return apperr.DataUnavailable(err)
	}

	affected, err := s.Repo.UpdateStatus(ctx, reviewID, status)
	if err != nil {
		return apperr.DataUnavailable(err)
	}
	if affected == 0 {
		return apperr.NotFound("review not found")
	}

	s.Cache.Invalidate(rev.CourierID)
	_ = s.Events.PublishScoreEvent(rabbitmq.ScoreEvent{CourierID: rev.CourierID, Reason: "review_moderated"})
	return nil
}

// AutoReviews files system-default reviews for delivered orders whose
// consumer never responded within the timeout. The default maps the
// configured satisfaction (0.70) to rating round(satisfaction*5), applied to
// every sub-score, pre-approved so it feeds the trust score like a real
// review.
func (s *ReviewService) AutoReviews(ctx context.Context, batch int) (int, error) {
	if err := s.initIDs(); err != nil {
		return 0, apperr.DataUnavailable(err)
	}
	if batch <= 0 {
		batch = 200
	}

	cutoff := time.Now().AddDate(0, 0, -s.Cfg.ResponseTimeout)
	orders, err := s.OrderRepo.ListUnreviewedDelivered(ctx, s.deliveredID, cutoff, batch)
	if err != nil {
		return 0, apperr.DataUnavailable(err)
	}

	rating := int(math.Round(s.Cfg.DefaultSatisfact * 5))
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}

	created := 0
	for _, order := range orders {
		rev := &entity.Review{
			Rating:             rating,
			OnTimeScore:        rating,
			CommunicationScore: rating,
			PackageScore:       rating,
			Status:             entity.ReviewApproved,
			IsSystemDefault:    true,
			ReviewDate:         time.Now(),
			OrderID:            order.ID,
			CourierID:          order.CourierID,
		}
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.Repo.Create(tx, rev)
		})
		if err != nil {
			// Unique order_id index makes a racing duplicate harmless.
			log.Printf("auto-review for order %d skipped: %v", order.ID, err)
			continue
		}
		created++
		s.Cache.Invalidate(order.CourierID)
		_ = s.Events.PublishScoreEvent(rabbitmq.ScoreEvent{CourierID: order.CourierID, Reason: "review_created"})
	}
	return created, nil
}
