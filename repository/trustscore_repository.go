package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

type TrustScoreRepository struct {
	DB *gorm.DB
}

func NewTrustScoreRepository(db *gorm.DB) *TrustScoreRepository {
	return &TrustScoreRepository{DB: db}
}

// Upsert replaces the snapshot for a courier. The snapshot is derived state;
// last writer wins.
func (r *TrustScoreRepository) Upsert(ctx context.Context, ts *entity.TrustScore) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "courier_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_orders", "completed_orders", "on_time_deliveries",
			"total_reviews", "average_rating", "completion_rate",
			"on_time_rate", "trust_score", "low_confidence",
			"last_calculated", "updated_at",
		}),
	}).Create(ts).Error
}

func (r *TrustScoreRepository) Get(ctx context.Context, courierID uint) (*entity.TrustScore, error) {
	var ts entity.TrustScore
	err := r.DB.WithContext(ctx).Where("courier_id = ?", courierID).First(&ts).Error
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// ListFilter narrows the public trust score listing.
type ListFilter struct {
	Country    string
	Postal     string
	MinReviews int
	Page       int
	Limit      int

	// Cap bounds the ranked window globally (subscription tier limit).
	// Pagination cannot reach past it; 0 means unlimited.
	Cap int
}

// ScoreRow is a snapshot joined with courier identity for listings.
type ScoreRow struct {
	entity.TrustScore
	CourierName string `json:"courierName"`
	Country     string `json:"country"`
}

// List returns stored snapshots ordered by score descending, courier id
// ascending on ties. A postal implies a concrete destination, so the postal
// filter requires an actual rate card for the market (the listing country, or
// the courier's own country when none is given) rather than mere
// registration. Cap clips Limit+Offset against the global ranked ordering so
// paging cannot walk past a tier window.
func (r *TrustScoreRepository) List(ctx context.Context, f ListFilter) ([]ScoreRow, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	base := r.DB.WithContext(ctx).Table("trust_scores AS ts").
		Joins("JOIN couriers c ON c.id = ts.courier_id AND c.deleted_at IS NULL").
		Where("ts.deleted_at IS NULL AND c.is_active = ?", true)
	if f.Country != "" {
		base = base.Where("c.country = ?", f.Country)
	}
	if f.Postal != "" {
		if f.Country != "" {
			base = base.Where("EXISTS (SELECT 1 FROM courier_rates cr WHERE cr.courier_id = c.id AND cr.country = ? AND cr.deleted_at IS NULL)", f.Country)
		} else {
			base = base.Where("EXISTS (SELECT 1 FROM courier_rates cr WHERE cr.courier_id = c.id AND cr.country = c.country AND cr.deleted_at IS NULL)")
		}
	}
	if f.MinReviews > 0 {
		base = base.Where("ts.total_reviews >= ?", f.MinReviews)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	limit := f.Limit
	if f.Cap > 0 {
		if offset >= f.Cap {
			return []ScoreRow{}, total, nil
		}
		if offset+limit > f.Cap {
			limit = f.Cap - offset
		}
	}

	var rows []ScoreRow
	err := base.
		Select("ts.*, c.name AS courier_name, c.country AS country").
		Order("ts.trust_score DESC, ts.courier_id ASC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
