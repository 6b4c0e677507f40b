package dashboard

import (
	"context"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/db"
)

type Summary struct {
	Customers         int64  `json:"customers"`
	ActiveItems       int64  `json:"activeItems"`
	OpenOrders        int64  `json:"openOrders"`
	MonthRevenueCents int64  `json:"monthRevenueCents"`
	Month             string `json:"month"`
}

const sqlSummary = `SELECT
		(SELECT count(*) FROM customers),
		(SELECT count(*) FROM items WHERE is_active),
		(SELECT count(*) FROM sales_orders WHERE status IN ('draft', 'confirmed')),
		(SELECT COALESCE(sum(total_cents), 0)::bigint FROM sales_orders
			WHERE status = 'shipped' AND order_date >= $1 AND order_date < $2)`

type Store interface {
	Summary(ctx context.Context, from, to time.Time) (Summary, error)
}

type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

func (r *Repository) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var s Summary
	err := r.base.Q().QueryRow(ctx, sqlSummary, from, to).Scan(
		&s.Customers, &s.ActiveItems, &s.OpenOrders, &s.MonthRevenueCents,
	)
	return s, err
}

type Service struct {
	Store Store
	Now   func() time.Time
}

// MonthBounds returns the first day of t's month and of the following month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if s.Store == nil {
		return Summary{}, apperrors.New(apperrors.KindInternal, "dashboard store not configured")
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	from, to := MonthBounds(now)

	sum, err := s.Store.Summary(ctx, from, to)
	if err != nil {
		return Summary{}, apperrors.Wrap(apperrors.KindInternal, "failed to load dashboard", err)
	}
	sum.Month = from.Format("2006-01")
	return sum, nil
}
