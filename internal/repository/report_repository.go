package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ReportRepo persists the monthly rollups produced by the report sweep.
// Existence of a row for a month is what makes the sweep idempotent.
type ReportRepo struct{ db *sql.DB }

// NewReportRepo constructs a ReportRepo with the given DB handle.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Exists reports whether a rollup for the "YYYY-MM" month is stored.
func (r *ReportRepo) Exists(ctx context.Context, month string) (bool, error) {
	const q = `SELECT COUNT(*) FROM monthly_reports WHERE month = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, month).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert stores one rollup row.
func (r *ReportRepo) Insert(ctx context.Context, rep *model.MonthlyReport) error {
	const q = `INSERT INTO monthly_reports
	           (month, reservations, completed, canceled, guests_served, revenue_cents, generated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		rep.Month, rep.Reservations, rep.Completed, rep.Canceled, rep.GuestsServed, rep.RevenueCents, rep.GeneratedAt)
	return err
}

// List returns all stored rollups, newest month first.
func (r *ReportRepo) List(ctx context.Context) ([]model.MonthlyReport, error) {
	const q = `SELECT month, reservations, completed, canceled, guests_served, revenue_cents, generated_at
	           FROM monthly_reports ORDER BY month DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MonthlyReport, 0)
	for rows.Next() {
		var rep model.MonthlyReport
		if err := rows.Scan(&rep.Month, &rep.Reservations, &rep.Completed, &rep.Canceled,
			&rep.GuestsServed, &rep.RevenueCents, &rep.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Aggregate computes the rollup for reservations created inside
// [from, to).  Revenue counts paid bills whose reservation falls in the
// window; guests served counts completed seatings only.
func (r *ReportRepo) Aggregate(ctx context.Context, from, to time.Time) (*model.MonthlyReport, error) {
	const q = `SELECT COUNT(*),
	                  COALESCE(SUM(status = 'COMPLETED'), 0),
	                  COALESCE(SUM(status = 'CANCELED'), 0),
	                  COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN guests ELSE 0 END), 0)
	           FROM reservations
	           WHERE created_at >= ? AND created_at < ?`
	var rep model.MonthlyReport
	if err := r.db.QueryRowContext(ctx, q, from, to).
		Scan(&rep.Reservations, &rep.Completed, &rep.Canceled, &rep.GuestsServed); err != nil {
		return nil, err
	}
	const qRev = `SELECT COALESCE(SUM(b.final_cents), 0)
	              FROM bills b
	              JOIN reservations r ON r.id = b.reservation_id
	              WHERE b.paid = 1 AND r.created_at >= ? AND r.created_at < ?`
	var revenue sql.NullInt64
	if err := r.db.QueryRowContext(ctx, qRev, from, to).Scan(&revenue); err != nil {
		return nil, err
	}
	rep.RevenueCents = revenue.Int64
	return &rep, nil
}
