package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
	"github.com/Performile1/Performile-Version-1-sub000/rabbitmq"
	"github.com/Performile1/Performile-Version-1-sub000/repository"
)

type StatusIDs struct {
	Pending   uint
	Confirmed uint
	PickedUp  uint
	InTransit uint
	Delivered uint
	Cancelled uint
	Failed    uint
}

type OrderService struct {
	DB          *gorm.DB
	Repo        *repository.OrderRepository
	CourierRepo *repository.CourierRepository
	Cache       *ScoreCache
	Events      *rabbitmq.RabbitMQ // nil when rabbit is disabled

	once    sync.Once
	Status  StatusIDs
	initErr error
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	courierRepo *repository.CourierRepository,
	cache *ScoreCache,
	events *rabbitmq.RabbitMQ,
) *OrderService {
	return &OrderService{
		DB: db, Repo: repo, CourierRepo: courierRepo, Cache: cache, Events: events,
	}
}

// initIDs resolves status IDs from names once.
func (s *OrderService) initIDs() error {
	s.once.Do(func() {
		resolve := func(name string, dst *uint) {
			if s.initErr != nil {
				return
			}
			id, err := s.Repo.GetStatusIDByName(name)
			if err != nil {
				s.initErr = err
				return
			}
			*dst = id
		}
		resolve(entity.StatusPending, &s.Status.Pending)
		resolve(entity.StatusConfirmed, &s.Status.Confirmed)
		resolve(entity.StatusPickedUp, &s.Status.PickedUp)
		resolve(entity.StatusInTransit, &s.Status.InTransit)
		resolve(entity.StatusDelivered, &s.Status.Delivered)
		resolve(entity.StatusCancelled, &s.Status.Cancelled)
		resolve(entity.StatusFailed, &s.Status.Failed)
	})
	return s.initErr
}

// ----- DTOs from controller -----

type CreateOrderReq struct {
	CourierID         uint       `json:"courierId" binding:"required"`
	ConsumerID        *uint      `json:"consumerId"`
	ValueCents        int64      `json:"valueCents"`
	WeightKg          float64    `json:"weightKg"`
	DestCountry       string     `json:"destCountry" binding:"required"`
	DestPostal        string     `json:"destPostal"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

// Create opens a pending order for a merchant.
func (s *OrderService) Create(ctx context.Context, merchantID uint, req *CreateOrderReq) (*entity.Order, error) {
	if err := s.initIDs(); err != nil {
		return nil, apperr.DataUnavailable(err)
	}
	if req.WeightKg < 0 {
		return nil, apperr.Validation("weightKg must be non-negative")
	}
	if _, err := s.CourierRepo.Get(ctx, req.CourierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("courier not found")
		}
		return nil, apperr.DataUnavailable(err)
	}

	order := &entity.Order{
		ValueCents:        req.ValueCents,
		WeightKg:          req.WeightKg,
		DestCountry:       req.DestCountry,
		DestPostal:        req.DestPostal,
		EstimatedDelivery: req.EstimatedDelivery,
		MerchantID:        merchantID,
		CourierID:         req.CourierID,
		ConsumerID:        req.ConsumerID,
		OrderStatusID:     s.Status.Pending,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Repo.Create(tx, order)
	})
	if err != nil {
		return nil, apperr.DataUnavailable(err)
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*entity.Order, error) {
	o, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.DataUnavailable(err)
	}
	return o, nil
}

// publishScoreEvent invalidates the process-local cache and fans the change
// out to other instances. Publish failures are not fatal: the local
// invalidation already happened and TTL expiry covers remote caches.
func (s *OrderService) publishScoreEvent(courierID uint, reason string) {
	s.Cache.Invalidate(courierID)
	_ = s.Events.PublishScoreEvent(rabbitmq.ScoreEvent{CourierID: courierID, Reason: reason})
}
