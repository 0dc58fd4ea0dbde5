package model

import "time"

// Customer mirrors the `customers` table.  The reservation engine only
// cares about the ID (ownership) and the Subscriber flag (billing
// discount); the credential columns exist for the thin auth surface
// that issues access tokens.
//
// Fields:
//
//	ID           – primary key identifier.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Name         – display name used in notifications.
//	Role         – CUSTOMER or ADMIN.
//	Subscriber   – subscribers get 10% off every bill.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type Customer struct {
	ID           uint64    // customers.id
	Email        string    // customers.email
	PasswordHash string    // customers.password_hash
	Name         string    // customers.name
	Role         string    // customers.role
	Subscriber   bool      // customers.subscriber
	CreatedAt    time.Time // customers.created_at
	UpdatedAt    time.Time // customers.updated_at
}

// Roles stored in customers.role and carried in the JWT "role" claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)
