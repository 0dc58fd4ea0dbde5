package model

import "time"

// ReservationStatus enumerates the lifecycle states a reservation moves
// through.  The legal transitions are:
//
//	ACTIVE  -> NOTIFIED | IN_PROGRESS | WAITING | CANCELED
//	WAITING -> NOTIFIED | CANCELED
//	NOTIFIED -> IN_PROGRESS | CANCELED
//	IN_PROGRESS -> COMPLETED
//
// COMPLETED and CANCELED are terminal and rows in either state are kept
// forever for reporting.
type ReservationStatus string

const (
	StatusActive     ReservationStatus = "ACTIVE"      // accepted advance booking, start time set, no table yet
	StatusWaiting    ReservationStatus = "WAITING"     // waitlist entry, no start time, no table
	StatusNotified   ReservationStatus = "NOTIFIED"    // table pinned, guest told to come in
	StatusInProgress ReservationStatus = "IN_PROGRESS" // guest checked in and dining
	StatusCompleted  ReservationStatus = "COMPLETED"   // bill paid, guest checked out
	StatusCanceled   ReservationStatus = "CANCELED"    // canceled by guest, no-show sweep or hours change
)

// CanCancel reports whether a reservation in this state may still be
// canceled.  IN_PROGRESS is excluded because the party is already dining.
func (s ReservationStatus) CanCancel() bool {
	return s == StatusActive || s == StatusNotified || s == StatusWaiting
}

// CanReceiveTable reports whether check-in is legal from this state.
func (s ReservationStatus) CanReceiveTable() bool {
	return s == StatusActive || s == StatusNotified
}

// Terminal reports whether the state admits no further transitions.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// ReservationKind distinguishes how a reservation entered the system.
type ReservationKind string

const (
	KindAdvance ReservationKind = "ADVANCE" // booked ahead for a concrete slot
	KindWalkIn  ReservationKind = "WALK_IN" // walked in, seated now or waitlisted
)

// Reservation mirrors the `reservations` table.  StartsAt is nil only
// while the reservation is WAITING, and TableID is non-nil only while it
// is NOTIFIED or IN_PROGRESS.
//
// Fields:
//
//	ID               – primary key identifier.
//	CustomerID       – owning customer.
//	TableID          – assigned table (nullable until a table is pinned).
//	StartsAt         – scheduled start (nullable while WAITING).
//	Guests           – party size, always > 0.
//	ConfirmationCode – short unique code presented to the customer.
//	Status           – lifecycle state, see ReservationStatus.
//	Kind             – ADVANCE or WALK_IN.
//	ReminderSent     – set once the reminder sweep has fired for this row.
//	CheckedInAt      – stamped by check-in (nullable).
//	CheckedOutAt     – stamped by payment (nullable).
//	CreatedAt        – creation timestamp, orders the waitlist.
//	UpdatedAt        – last update timestamp.
type Reservation struct {
	ID               uint64            // reservations.id
	CustomerID       uint64            // reservations.customer_id
	TableID          *uint64           // reservations.table_id (nullable)
	StartsAt         *time.Time        // reservations.starts_at (nullable)
	Guests           int               // reservations.guests
	ConfirmationCode string            // reservations.confirmation_code
	Status           ReservationStatus // reservations.status
	Kind             ReservationKind   // reservations.kind
	ReminderSent     bool              // reservations.reminder_sent
	CheckedInAt      *time.Time        // reservations.checked_in_at (nullable)
	CheckedOutAt     *time.Time        // reservations.checked_out_at (nullable)
	CreatedAt        time.Time         // reservations.created_at
	UpdatedAt        time.Time         // reservations.updated_at
}

// SlotDuration is the fixed length of every seating.  All overlap and
// feasibility arithmetic uses this constant.
const SlotDuration = 2 * time.Hour

// EndsAt returns the exclusive end of the reservation's seating window.
// It must not be called while StartsAt is nil.
func (r *Reservation) EndsAt() time.Time {
	return r.StartsAt.Add(SlotDuration)
}

// Overlaps reports whether the reservation's window intersects
// [start, end) using half-open interval semantics.  WAITING rows never
// overlap anything because they have no start time.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	if r.StartsAt == nil {
		return false
	}
	return r.StartsAt.Before(end) && r.EndsAt().After(start)
}
