package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrEmailExists is returned when registration collides on the unique
// email column.
var ErrEmailExists = errors.New("email already exists")

// ErrCustomerNotFound is returned when a customer lookup fails.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepo stores customer accounts.  The booking engine reads only
// ID, Name and Subscriber; the credential columns back the auth handler.
type CustomerRepo struct{ db *sql.DB }

// NewCustomerRepo constructs a CustomerRepo with the given DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = `id, email, password_hash, name, role, subscriber, created_at, updated_at`

// Create inserts a customer and returns its ID.  The password must
// already be hashed by the caller.
func (r *CustomerRepo) Create(ctx context.Context, email, passwordHash, name, role string, subscriber bool) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (email, password_hash, name, role, subscriber) VALUES (?, ?, ?, ?, ?)`,
		email, passwordHash, name, role, subscriber)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT ` + customerCols + ` FROM customers WHERE email = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	const q = `SELECT ` + customerCols + ` FROM customers WHERE id = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *CustomerRepo) scanOne(row *sql.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.Name, &c.Role, &c.Subscriber, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}
