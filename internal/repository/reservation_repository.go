package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrReservationNotFound is returned when a reservation lookup fails.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrDuplicateCode is returned when an insert collides on the unique
// confirmation_code column.  The booking service retries with a fresh
// code a bounded number of times before giving up.
var ErrDuplicateCode = errors.New("confirmation code already exists")

// ReservationRepo provides CRUD and the targeted queries the booking
// engine needs: the FIFO waitlist, window-overlap scans by status, and
// the candidate lists consumed by the background sweeps.  All mutations
// of lifecycle state are conditional single-row updates (`WHERE status
// = ?`) so that two racing callers cannot both apply the same
// transition; callers learn whether they won from the returned bool.
// All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, customer_id, table_id, starts_at, guests, confirmation_code,
       status, kind, reminder_sent, checked_in_at, checked_out_at, created_at, updated_at`

// scanReservation reads one row laid out as reservationCols into a model
// struct, mapping the nullable columns onto pointers.
func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var r model.Reservation
	var tableID sql.NullInt64
	var startsAt, checkedIn, checkedOut sql.NullTime
	err := row.Scan(
		&r.ID, &r.CustomerID, &tableID, &startsAt, &r.Guests, &r.ConfirmationCode,
		&r.Status, &r.Kind, &r.ReminderSent, &checkedIn, &checkedOut, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		r.TableID = &id
	}
	if startsAt.Valid {
		t := startsAt.Time.UTC()
		r.StartsAt = &t
	}
	if checkedIn.Valid {
		t := checkedIn.Time.UTC()
		r.CheckedInAt = &t
	}
	if checkedOut.Valid {
		t := checkedOut.Time.UTC()
		r.CheckedOutAt = &t
	}
	return &r, nil
}

// Create inserts a new reservation and populates ID, CreatedAt and
// UpdatedAt on the provided struct.  A unique-key collision on
// confirmation_code is reported as ErrDuplicateCode.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (customer_id, table_id, starts_at, guests, confirmation_code, status, kind)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.CustomerID, res.TableID, res.StartsAt, res.Guests, res.ConfirmationCode, res.Status, res.Kind)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrDuplicateCode
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Read the row back so defaults and timestamps are populated.
	const sel = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	got, err := scanReservation(r.db.QueryRowContext(ctx, sel, res.ID))
	if err != nil {
		return err
	}
	*res = *got
	return nil
}

// GetByID returns one reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// GetByConfirmationCode resolves the customer-facing lookup code.
func (r *ReservationRepo) GetByConfirmationCode(ctx context.Context, code string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE confirmation_code = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, strings.ToUpper(strings.TrimSpace(code))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// ListByCustomer returns all reservations a customer owns, newest first.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
	           WHERE customer_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, customerID)
}

// ListOverlapping returns reservations in any of the given statuses
// whose fixed-duration window intersects [start, end).  Because every
// seating lasts exactly model.SlotDuration, "starts_at + duration >
// start" collapses to a pure starts_at range.
func (r *ReservationRepo) ListOverlapping(ctx context.Context, start, end time.Time, statuses ...model.ReservationStatus) ([]model.Reservation, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat(",?", len(statuses))[1:]
	q := `SELECT ` + reservationCols + ` FROM reservations
	      WHERE status IN (` + placeholders + `)
	        AND starts_at IS NOT NULL AND starts_at < ? AND starts_at > ?
	      ORDER BY id`
	args := make([]any, 0, len(statuses)+2)
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, end, start.Add(-model.SlotDuration))
	return r.list(ctx, q, args...)
}

// ListWaiting returns WAITING entries in arrival order.  When maxGuests
// is positive the list is pre-filtered to parties that fit the freed
// capacity, which lets the promoter skip hopeless candidates cheaply.
func (r *ReservationRepo) ListWaiting(ctx context.Context, maxGuests int) ([]model.Reservation, error) {
	if maxGuests > 0 {
		const q = `SELECT ` + reservationCols + ` FROM reservations
		           WHERE status = 'WAITING' AND guests <= ? ORDER BY created_at, id`
		return r.list(ctx, q, maxGuests)
	}
	const q = `SELECT ` + reservationCols + ` FROM reservations
	           WHERE status = 'WAITING' ORDER BY created_at, id`
	return r.list(ctx, q)
}

// ListActiveBetween returns ACTIVE reservations starting inside
// [from, to), ordered by start time.  The revalidation engine walks
// this list after the table pool changes.
func (r *ReservationRepo) ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
	           WHERE status = 'ACTIVE' AND starts_at >= ? AND starts_at < ?
	           ORDER BY starts_at, id`
	return r.list(ctx, q, from, to)
}

// ListUpcoming returns ACTIVE and NOTIFIED reservations with a start
// time at or after the given instant.  Used when opening hours change.
func (r *ReservationRepo) ListUpcoming(ctx context.Context, from time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
	           WHERE status IN ('ACTIVE','NOTIFIED') AND starts_at >= ?
	           ORDER BY starts_at, id`
	return r.list(ctx, q, from)
}

// ListNoShowCandidates returns ACTIVE or NOTIFIED reservations whose
// start time is at or before the cutoff.
func (r *ReservationRepo) ListNoShowCandidates(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
	           WHERE status IN ('ACTIVE','NOTIFIED') AND starts_at IS NOT NULL AND starts_at <= ?
	           ORDER BY starts_at, id`
	return r.list(ctx, q, cutoff)
}

// ListReminderCandidates returns ACTIVE reservations starting inside
// [from, to) that have not yet had a reminder sent.
func (r *ReservationRepo) ListReminderCandidates(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
	           WHERE status = 'ACTIVE' AND reminder_sent = 0
	             AND starts_at >= ? AND starts_at < ?
	           ORDER BY starts_at, id`
	return r.list(ctx, q, from, to)
}

// ListBillingCandidates returns IN_PROGRESS reservations seated at or
// before the cutoff that do not have a bill yet.
func (r *ReservationRepo) ListBillingCandidates(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
	const q = `SELECT r.id, r.customer_id, r.table_id, r.starts_at, r.guests, r.confirmation_code,
	                  r.status, r.kind, r.reminder_sent, r.checked_in_at, r.checked_out_at, r.created_at, r.updated_at
	           FROM reservations r
	           LEFT JOIN bills b ON b.reservation_id = r.id
	           WHERE r.status = 'IN_PROGRESS' AND r.starts_at <= ? AND b.id IS NULL
	           ORDER BY r.starts_at, r.id`
	return r.list(ctx, q, cutoff)
}

// MarkNotified promotes a WAITING entry: pins the table, sets the start
// time and flips the status.  Returns false when the row was no longer
// WAITING, which is how a losing promoter learns it was beaten.
func (r *ReservationRepo) MarkNotified(ctx context.Context, id, tableID uint64, startsAt time.Time) (bool, error) {
	const q = `UPDATE reservations SET status = 'NOTIFIED', table_id = ?, starts_at = ?
	           WHERE id = ? AND status = 'WAITING'`
	return r.exec(ctx, q, tableID, startsAt, id)
}

// MarkInProgress records check-in: the table is pinned (or re-pinned)
// and the check-in timestamp stamped.  Legal from ACTIVE or NOTIFIED.
func (r *ReservationRepo) MarkInProgress(ctx context.Context, id, tableID uint64, checkedIn time.Time) (bool, error) {
	const q = `UPDATE reservations SET status = 'IN_PROGRESS', table_id = ?, checked_in_at = ?
	           WHERE id = ? AND status IN ('ACTIVE','NOTIFIED')`
	return r.exec(ctx, q, tableID, checkedIn, id)
}

// MarkCompleted closes out an IN_PROGRESS reservation at payment time.
func (r *ReservationRepo) MarkCompleted(ctx context.Context, id uint64, checkedOut time.Time) (bool, error) {
	const q = `UPDATE reservations SET status = 'COMPLETED', checked_out_at = ?
	           WHERE id = ? AND status = 'IN_PROGRESS'`
	return r.exec(ctx, q, checkedOut, id)
}

// MarkCanceled cancels a reservation only if it is still in the state
// the caller observed, clearing any pinned table.  The conditional
// keeps a double-running no-show sweep from firing twice.
func (r *ReservationRepo) MarkCanceled(ctx context.Context, id uint64, from model.ReservationStatus) (bool, error) {
	const q = `UPDATE reservations SET status = 'CANCELED', table_id = NULL
	           WHERE id = ? AND status = ?`
	return r.exec(ctx, q, id, from)
}

// DemoteToWaiting pushes an ACTIVE reservation back onto the waitlist
// after revalidation found its slot no longer feasible.  Start time and
// table are cleared; the original created_at keeps its queue position.
func (r *ReservationRepo) DemoteToWaiting(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE reservations SET status = 'WAITING', table_id = NULL, starts_at = NULL
	           WHERE id = ? AND status = 'ACTIVE'`
	return r.exec(ctx, q, id)
}

// MarkReminderSent flips the reminder flag exactly once.
func (r *ReservationRepo) MarkReminderSent(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE reservations SET reminder_sent = 1
	           WHERE id = ? AND reminder_sent = 0`
	return r.exec(ctx, q, id)
}

func (r *ReservationRepo) exec(ctx context.Context, q string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
