package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
	"github.com/Performile1/Performile-Version-1-sub000/pkg/apperr"
)

// Courier lifecycle actions. Each transition is a guarded compare-and-set
// inside a transaction; zero affected rows means the order was not in the
// expected state (stale client or concurrent update).

func (s *OrderService) courierOwns(ctx context.Context, userID, orderID uint) (*entity.Order, error) {
	o, err := s.Repo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.DataUnavailable(err)
	}
	courier, err := s.CourierRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Forbidden("not a courier account")
		}
		return nil, apperr.DataUnavailable(err)
	}
	if o.CourierID != courier.ID {
		return nil, apperr.Forbidden("order belongs to another courier")
	}
	return o, nil
}

func (s *OrderService) guarded(ctx context.Context, run func(tx *gorm.DB) (int64, error)) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := run(tx)
		if err != nil {
			return apperr.DataUnavailable(err)
		}
		if affected == 0 {
			return apperr.Conflict("order is not in the expected state")
		}
		return nil
	})
}

// Confirm: Pending -> Confirmed, stamping accepted_at.
func (s *OrderService) Confirm(ctx context.Context, userID, orderID uint) error {
	if err := s.initIDs(); err != nil {
		return apperr.DataUnavailable(err)
	}
	o, err := s.courierOwns(ctx, userID, orderID)
	if err != nil {
		return err
	}
	return s.guarded(ctx, func(tx *gorm.DB) (int64, error) {
		return s.Repo.MarkConfirmed(tx, o.ID, s.Status.Pending, s.Status.Confirmed, time.Now())
	})
}

// PickUp: Confirmed -> PickedUp.
func (s *OrderService) PickUp(ctx context.Context, userID, orderID uint) error {
	if err := s.initIDs(); err != nil {
		return apperr.DataUnavailable(err)
	}
	o, err := s.courierOwns(ctx, userID, orderID)
	if err != nil {
		return err
	}
	return s.guarded(ctx, func(tx *gorm.DB) (int64, error) {
		return s.Repo.UpdateStatusGuard(tx, o.ID, s.Status.Confirmed, s.Status.PickedUp)
	})
}

// Transit: PickedUp -> InTransit.
func (s *OrderService) Transit(ctx context.Context, userID, orderID uint) error {
	if err := s.initIDs(); err != nil {
		return apperr.DataUnavailable(err)
	}
	o, err := s.courierOwns(ctx, userID, orderID)
	if err != nil {
		return err
	}
	return s.guarded(ctx, func(tx *gorm.DB) (int64, error) {
		return s.Repo.UpdateStatusGuard(tx, o.ID, s.Status.PickedUp, s.Status.InTransit)
	})
}

// Deliver: InTransit -> Delivered, setting delivered_at in the same guarded
// update. Terminal: invalidates the courier's cached score.
func (s *OrderService) Deliver(ctx context.Context, userID, orderID uint) error {
	if err := s.initIDs(); err != nil {
		return apperr.DataUnavailable(err)
	}
	o, err := s.courierOwns(ctx, userID, orderID)
	if err != nil {
		return err
	}
	err = s.guarded(ctx, func(tx *gorm.DB) (int64, error) {
		return s.Repo.MarkDelivered(tx, o.ID, s.Status.InTransit, s.Status.Delivered, time.Now())
	})
	if err != nil {
		return err
	}
	s.publishScoreEvent(o.CourierID, "order_delivered")
	return nil
}

// Fail: PickedUp|InTransit -> Failed. Terminal.
func (s *OrderService) Fail(ctx context.Context, userID, orderID uint) error {
	if err := s.initIDs(); err != nil {
		return apperr.DataUnavailable(err)
	}
	o, err := s.courierOwns(ctx, userID, orderID)
	if err != nil {
		return err
	}
	err = s.guarded(ctx, func(tx *gorm.DB) (int64, error) {
		affected, err := s.Repo.UpdateStatusGuard(tx, o.ID, s.Status.InTransit, s.Status.Failed)
		if err != nil || affected > 0 {
			return affected, err
		}
		return s.Repo.UpdateStatusGuard(tx, o.ID, s.Status.PickedUp, s.Status.Failed)
	})
	if err != nil {
		return err
	}
	s.publishScoreEvent(o.CourierID, "order_failed")
	return nil
}

// Cancel: Pending|Confirmed -> Cancelled. Terminal.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uint) error {
	if err := s.initIDs(); err != nil {
		return apperr.DataUnavailable(err)
	}
	o, err := s.courierOwns(ctx, userID, orderID)
	if err != nil {
		return err
	}
	err = s.guarded(ctx, func(tx *gorm.DB) (int64, error) {
		affected, err := s.Repo.UpdateStatusGuard(tx, o.ID, s.Status.Pending, s.Status.Cancelled)
		if err != nil || affected > 0 {
			return affected, err
		}
		return s.Repo.UpdateStatusGuard(tx, o.ID, s.Status.Confirmed, s.Status.Cancelled)
	})
	if err != nil {
		return err
	}
	s.publishScoreEvent(o.CourierID, "order_cancelled")
	return nil
}

// AdminSetStatus is the corrective action: it may move an order out of a
// terminal state. Entering Delivered stamps delivered_at; leaving it clears
// the stamp, preserving the delivered_at-iff-Delivered invariant.
func (s *OrderService) AdminSetStatus(ctx context.Context, orderID uint, statusName string) error {
	if err := s.initIDs(); err != nil {
		return apperr.DataUnavailable(err)
	}
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}

	toID, err := s.Repo.GetStatusIDByName(statusName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("unknown status: " + statusName)
		}
		return apperr.DataUnavailable(err)
	}

	var deliveredAt *time.Time
	if toID == s.Status.Delivered {
		if o.DeliveredAt != nil {
			deliveredAt = o.DeliveredAt
		} else {
			now := time.Now()
			deliveredAt = &now
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Repo.ForceStatus(tx, o.ID, toID, deliveredAt)
	})
	if err != nil {
		return apperr.DataUnavailable(err)
	}
	s.publishScoreEvent(o.CourierID, "order_corrected")
	return nil
}
