package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrHoursNotFound is returned when no weekly row exists for a weekday.
// The slot validator treats it as "fall back to the default window".
var ErrHoursNotFound = errors.New("opening hours not found")

// ErrOverrideNotFound is returned when no override exists for a date.
var ErrOverrideNotFound = errors.New("date override not found")

// HoursRepo stores the weekly opening hours and the per-date overrides
// that take precedence over them.  Open and close times are kept as
// "HH:MM" strings in the restaurant's local zone.
type HoursRepo struct {
	db *sql.DB
}

// NewHoursRepo constructs an HoursRepo with the given DB handle.
func NewHoursRepo(db *sql.DB) *HoursRepo {
	return &HoursRepo{db: db}
}

// GetWeekly returns the schedule row for one weekday (0=Sunday).
func (r *HoursRepo) GetWeekly(ctx context.Context, weekday int) (*model.OpeningHours, error) {
	const q = `SELECT weekday, opens_at, closes_at, closed FROM opening_hours WHERE weekday = ?`
	var h model.OpeningHours
	err := r.db.QueryRowContext(ctx, q, weekday).Scan(&h.Weekday, &h.OpensAt, &h.ClosesAt, &h.Closed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHoursNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ListWeekly returns all weekly rows ordered by weekday.
func (r *HoursRepo) ListWeekly(ctx context.Context) ([]model.OpeningHours, error) {
	const q = `SELECT weekday, opens_at, closes_at, closed FROM opening_hours ORDER BY weekday`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.OpeningHours, 0, 7)
	for rows.Next() {
		var h model.OpeningHours
		if err := rows.Scan(&h.Weekday, &h.OpensAt, &h.ClosesAt, &h.Closed); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// UpsertWeekly replaces the schedule for one weekday.
func (r *HoursRepo) UpsertWeekly(ctx context.Context, h *model.OpeningHours) error {
	const q = `INSERT INTO opening_hours (weekday, opens_at, closes_at, closed)
	           VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE opens_at = VALUES(opens_at),
	                                   closes_at = VALUES(closes_at),
	                                   closed = VALUES(closed)`
	_, err := r.db.ExecContext(ctx, q, h.Weekday, h.OpensAt, h.ClosesAt, h.Closed)
	return err
}

// GetOverride returns the override for a "YYYY-MM-DD" date, if any.
func (r *HoursRepo) GetOverride(ctx context.Context, date string) (*model.DateOverride, error) {
	const q = `SELECT date, opens_at, closes_at, closed, reason FROM date_overrides WHERE date = ?`
	var o model.DateOverride
	err := r.db.QueryRowContext(ctx, q, date).Scan(&o.Date, &o.OpensAt, &o.ClosesAt, &o.Closed, &o.Reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOverrideNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ListOverrides returns all overrides at or after the given date.
func (r *HoursRepo) ListOverrides(ctx context.Context, fromDate string) ([]model.DateOverride, error) {
	const q = `SELECT date, opens_at, closes_at, closed, reason FROM date_overrides
	           WHERE date >= ? ORDER BY date`
	rows, err := r.db.QueryContext(ctx, q, fromDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DateOverride, 0)
	for rows.Next() {
		var o model.DateOverride
		if err := rows.Scan(&o.Date, &o.OpensAt, &o.ClosesAt, &o.Closed, &o.Reason); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpsertOverride creates or replaces the override for one date.
func (r *HoursRepo) UpsertOverride(ctx context.Context, o *model.DateOverride) error {
	const q = `INSERT INTO date_overrides (date, opens_at, closes_at, closed, reason)
	           VALUES (?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE opens_at = VALUES(opens_at),
	                                   closes_at = VALUES(closes_at),
	                                   closed = VALUES(closed),
	                                   reason = VALUES(reason)`
	_, err := r.db.ExecContext(ctx, q, o.Date, o.OpensAt, o.ClosesAt, o.Closed, o.Reason)
	return err
}

// DeleteOverride removes the override for one date.
func (r *HoursRepo) DeleteOverride(ctx context.Context, date string) error {
	const q = `DELETE FROM date_overrides WHERE date = ?`
	res, err := r.db.ExecContext(ctx, q, date)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOverrideNotFound
	}
	return nil
}
