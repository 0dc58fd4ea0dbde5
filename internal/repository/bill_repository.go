package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrBillNotFound is returned when a bill lookup fails.
var ErrBillNotFound = errors.New("bill not found")

// BillRepo stores bills.  A bill is created once per reservation and
// becomes immutable after MarkPaid succeeds; the conditional update is
// what makes duplicate payment attempts fail instead of double-apply.
type BillRepo struct {
	db *sql.DB
}

// NewBillRepo constructs a BillRepo with the given DB handle.
func NewBillRepo(db *sql.DB) *BillRepo {
	return &BillRepo{db: db}
}

const billCols = `id, reservation_id, amount_cents, final_cents, paid, paid_at, created_at`

func scanBill(row interface{ Scan(...any) error }) (*model.Bill, error) {
	var b model.Bill
	var paidAt sql.NullTime
	err := row.Scan(&b.ID, &b.ReservationID, &b.AmountCents, &b.FinalCents, &b.Paid, &paidAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		b.PaidAt = &t
	}
	return &b, nil
}

// Create inserts a bill and populates its ID and timestamps.
func (r *BillRepo) Create(ctx context.Context, b *model.Bill) error {
	const q = `INSERT INTO bills (reservation_id, amount_cents, final_cents) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.ReservationID, b.AmountCents, b.FinalCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + billCols + ` FROM bills WHERE id = ?`
	got, err := scanBill(r.db.QueryRowContext(ctx, sel, b.ID))
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID returns one bill or ErrBillNotFound.
func (r *BillRepo) GetByID(ctx context.Context, id uint64) (*model.Bill, error) {
	const q = `SELECT ` + billCols + ` FROM bills WHERE id = ?`
	b, err := scanBill(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	return b, err
}

// GetByReservation returns the bill owned by a reservation, or
// ErrBillNotFound when none has been created yet.
func (r *BillRepo) GetByReservation(ctx context.Context, reservationID uint64) (*model.Bill, error) {
	const q = `SELECT ` + billCols + ` FROM bills WHERE reservation_id = ?`
	b, err := scanBill(r.db.QueryRowContext(ctx, q, reservationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	return b, err
}

// MarkPaid stamps the bill exactly once.  Returns false when the bill
// was already paid, which the service reports as a duplicate payment.
func (r *BillRepo) MarkPaid(ctx context.Context, id uint64, at time.Time) (bool, error) {
	const q = `UPDATE bills SET paid = 1, paid_at = ? WHERE id = ? AND paid = 0`
	res, err := r.db.ExecContext(ctx, q, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
