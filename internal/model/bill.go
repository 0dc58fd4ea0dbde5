package model

import "time"

// Bill is created lazily the first time payment is requested, or by the
// automatic billing sweep two hours into a seating.  Once Paid is set
// the row is immutable.
//
// Fields:
//
//	ID            – primary key identifier.
//	ReservationID – owning reservation (one bill per reservation).
//	AmountCents   – pre-discount amount in cents.
//	FinalCents    – amount actually owed after the subscriber discount.
//	Paid          – set exactly once by payAndComplete.
//	PaidAt        – payment timestamp (nullable until paid).
//	CreatedAt     – creation timestamp.
type Bill struct {
	ID            uint64     // bills.id
	ReservationID uint64     // bills.reservation_id
	AmountCents   int64      // bills.amount_cents
	FinalCents    int64      // bills.final_cents
	Paid          bool       // bills.paid
	PaidAt        *time.Time // bills.paid_at (nullable)
	CreatedAt     time.Time  // bills.created_at
}
