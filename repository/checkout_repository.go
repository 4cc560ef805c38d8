package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Performile1/Performile-Version-1-sub000/entity"
)

type CheckoutRepository struct {
	DB *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) *CheckoutRepository {
	return &CheckoutRepository{DB: db}
}

func (r *CheckoutRepository) CreateBatch(tx *gorm.DB, rows []entity.CheckoutPosition) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *CheckoutRepository) Create(ctx context.Context, row *entity.CheckoutPosition) error {
	return r.DB.WithContext(ctx).Create(row).Error
}

// MerchantMarkets lists the distinct destination countries a merchant has
// ranked checkouts in; input to the tier's market-breadth limit.
func (r *CheckoutRepository) MerchantMarkets(ctx context.Context, merchantID uint) ([]string, error) {
	var out []string
	err := r.DB.WithContext(ctx).Model(&entity.CheckoutPosition{}).
		Where("merchant_id = ? AND dest_country <> ''", merchantID).
		Distinct("dest_country").
		Order("dest_country ASC").
		Pluck("dest_country", &out).Error
	return out, err
}

// SelectedCourier returns the already-selected courier id for a session, or 0.
func (r *CheckoutRepository) SelectedCourier(tx *gorm.DB, sessionID string) (uint, error) {
	var row entity.CheckoutPosition
	err := tx.Where("session_id = ? AND was_selected = ?", sessionID, true).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return row.CourierID, nil
}

// MarkSelected flips was_selected on exactly one row. The guard keeps the
// flip one-time: a row already selected is never touched again.
func (r *CheckoutRepository) MarkSelected(tx *gorm.DB, sessionID string, courierID uint) (int64, error) {
	res := tx.Model(&entity.CheckoutPosition{}).
		Where("session_id = ? AND courier_id = ? AND was_selected = ?", sessionID, courierID, false).
		Update("was_selected", true)
	return res.RowsAffected, res.Error
}

// PositionSummary is the per-party rollup over a date range.
type PositionSummary struct {
	Appearances   int64   `json:"appearances"`
	Selections    int64   `json:"selections"`
	AvgPosition   float64 `json:"avgPosition"`
	SelectionRate float64 `json:"selectionRate"`
}

func (r *CheckoutRepository) Summary(ctx context.Context, column string, id uint, from time.Time) (*PositionSummary, error) {
	var out struct {
		Appearances int64
		Selections  int64
		AvgPosition *float64
	}
	err := r.DB.WithContext(ctx).Model(&entity.CheckoutPosition{}).
		Select("COUNT(*) AS appearances, " +
			"SUM(CASE WHEN was_selected THEN 1 ELSE 0 END) AS selections, " +
			"AVG(position_shown) AS avg_position").
		Where(column+" = ? AND created_at >= ?", id, from).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}

	s := &PositionSummary{Appearances: out.Appearances, Selections: out.Selections}
	if out.AvgPosition != nil {
		s.AvgPosition = *out.AvgPosition
	}
	if s.Appearances > 0 {
		s.SelectionRate = float64(s.Selections) / float64(s.Appearances)
	}
	return s, nil
}

// PositionBucket is one bar of the position histogram.
type PositionBucket struct {
	Position int   `json:"position"`
	Count    int64 `json:"count"`
}

func (r *CheckoutRepository) Distribution(ctx context.Context, column string, id uint, from time.Time) ([]PositionBucket, error) {
	var out []PositionBucket
	err := r.DB.WithContext(ctx).Model(&entity.CheckoutPosition{}).
		Select("position_shown AS position, COUNT(*) AS count").
		Where(column+" = ? AND created_at >= ?", id, from).
		Group("position_shown").
		Order("position_shown ASC").
		Scan(&out).Error
	return out, err
}

// CounterpartyRow ranks the other side of the checkout relation.
type CounterpartyRow struct {
	ID          uint    `json:"id"`
	Appearances int64   `json:"appearances"`
	Selections  int64   `json:"selections"`
	AvgPosition float64 `json:"avgPosition"`
}

// TopCounterparties groups position rows by the opposite party (merchants for
// a courier view, couriers for a merchant view), ordered by appearances.
func (r *CheckoutRepository) TopCounterparties(ctx context.Context, byColumn, groupColumn string, id uint, from time.Time) ([]CounterpartyRow, error) {
	var out []CounterpartyRow
	err := r.DB.WithContext(ctx).Model(&entity.CheckoutPosition{}).
		Select(groupColumn+" AS id, COUNT(*) AS appearances, "+
			"SUM(CASE WHEN was_selected THEN 1 ELSE 0 END) AS selections, "+
			"AVG(position_shown) AS avg_position").
		Where(byColumn+" = ? AND created_at >= ?", id, from).
		Group(groupColumn).
		Order("appearances DESC, id ASC").
		Scan(&out).Error
	return out, err
}

// TrendPoint is one daily bucket; weekly trends are folded from dailies in
// the service.
type TrendPoint struct {
	Day         string `json:"day"`
	Appearances int64  `json:"appearances"`
	Selections  int64  `json:"selections"`
}

func (r *CheckoutRepository) DailyTrend(ctx context.Context, column string, id uint, from time.Time) ([]TrendPoint, error) {
	var rows []struct {
		CreatedAt   time.Time
		WasSelected bool
	}
	err := r.DB.WithContext(ctx).Model(&entity.CheckoutPosition{}).
		Select("created_at, was_selected").
		Where(column+" = ? AND created_at >= ?", id, from).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Bucket in Go; date-truncation SQL differs between sqlite and postgres.
	byDay := map[string]*TrendPoint{}
	var days []string
	for _, row := range rows {
		day := row.CreatedAt.UTC().Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &TrendPoint{Day: day}
			byDay[day] = p
			days = append(days, day)
		}
		p.Appearances++
		if row.WasSelected {
			p.Selections++
		}
	}

	out := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		out = append(out, *byDay[day])
	}
	return out, nil
}
