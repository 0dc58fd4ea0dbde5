package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrTableNotFound is returned when a table lookup fails.
var ErrTableNotFound = errors.New("table not found")

// ErrNoFreeTable is returned by FindFree when no unpinned table of
// sufficient capacity exists for the requested window.
var ErrNoFreeTable = errors.New("no free table")

// TableRepo manages the seating pool.  Deleting a table or shrinking
// its capacity is privileged and must go through the booking service so
// the revalidation pass runs afterwards; the raw mutations here only
// guard against removing a table that currently carries guests.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

// Create inserts a new table and reads the row back so timestamps are set.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const qInsert = `INSERT INTO tables (capacity) VALUES (?)`
	res, err := r.db.ExecContext(ctx, qInsert, t.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const qSelect = `SELECT id, capacity, created_at, updated_at FROM tables WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.ID, &t.Capacity, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a table or ErrTableNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT id, capacity, created_at, updated_at FROM tables WHERE id = ?`
	var t model.Table
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Capacity, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns the whole pool ordered by capacity then id, which is the
// order the availability engine consumes capacities in.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT id, capacity, created_at, updated_at FROM tables ORDER BY capacity, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Capacity, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateCapacity sets a table's capacity.  The caller is responsible
// for refusing the change while the table is pinned and for running
// revalidation afterwards.
func (r *TableRepo) UpdateCapacity(ctx context.Context, id uint64, capacity int) error {
	const q = `UPDATE tables SET capacity = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, capacity, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// Delete removes a table from the pool.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM tables WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// FindFree returns the smallest table seating at least `guests` that is
// not pinned by a NOTIFIED or IN_PROGRESS reservation overlapping
// [start, end).  Smallest-first keeps large tables free for large
// parties, matching the ceiling-match rule of the availability engine.
func (r *TableRepo) FindFree(ctx context.Context, guests int, start, end time.Time) (*model.Table, error) {
	const q = `SELECT t.id, t.capacity, t.created_at, t.updated_at
	           FROM tables t
	           WHERE t.capacity >= ?
	             AND NOT EXISTS (
	                 SELECT 1 FROM reservations r
	                 WHERE r.table_id = t.id
	                   AND r.status IN ('NOTIFIED','IN_PROGRESS')
	                   AND r.starts_at < ? AND r.starts_at > ?)
	           ORDER BY t.capacity, t.id
	           LIMIT 1`
	var t model.Table
	err := r.db.QueryRowContext(ctx, q, guests, end, start.Add(-model.SlotDuration)).
		Scan(&t.ID, &t.Capacity, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoFreeTable
		}
		return nil, err
	}
	return &t, nil
}

// HasPinned reports whether the table currently carries a NOTIFIED or
// IN_PROGRESS reservation.  Structural changes are refused while this
// is true, because seated or summoned guests cannot be stranded.
func (r *TableRepo) HasPinned(ctx context.Context, id uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations
	           WHERE table_id = ? AND status IN ('NOTIFIED','IN_PROGRESS')`
	var n int
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
