// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published to the reservation.notify queue, one per
// lifecycle event that must reach a customer.
const (
	KindConfirmed      = "reservation.confirmed"
	KindReminder       = "reservation.reminder"
	KindTableAvailable = "reservation.table_available"
	KindTableReceived  = "reservation.table_received"
	KindBillIssued     = "reservation.bill_issued"
	KindPaymentOK      = "reservation.payment_received"
	KindCanceled       = "reservation.canceled"
	KindMovedToWaiting = "reservation.moved_to_waiting"
)

// NotificationEvent is published once per customer-facing lifecycle
// event.  It carries enough information for a downstream deliverer to
// compose a message without querying the primary database; fields that
// do not apply to a given kind are left zero.
type NotificationEvent struct {
	Kind             string  `json:"kind"`
	ReservationID    uint64  `json:"reservation_id"`
	CustomerID       uint64  `json:"customer_id"`
	ConfirmationCode string  `json:"confirmation_code,omitempty"`
	TableID          *uint64 `json:"table_id,omitempty"`
	StartsAt         string  `json:"starts_at,omitempty"`
	Guests           int     `json:"guests,omitempty"`
	Reason           string  `json:"reason,omitempty"`
	AmountCents      int64   `json:"amount_cents,omitempty"`
	OccurredAt       string  `json:"occurred_at"`
}
