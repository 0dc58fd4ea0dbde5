package booking

import (
	"context"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Cancellation reasons passed to the notification gateway so the
// customer-facing message can say why the booking went away.
const (
	CancelReasonUser   = "customer request"
	CancelReasonNoShow = "no-show"
	CancelReasonHours  = "opening hours changed"
)

// Notifier is the gateway every lifecycle event that must reach a
// customer goes through.  The engine neither knows nor cares whether
// delivery is email, SMS or a simulation; implementations must not
// block the calling operation on delivery and must swallow their own
// failures (a lost notification never fails a reservation).
type Notifier interface {
	ReservationConfirmed(ctx context.Context, r *model.Reservation)
	ReservationReminder(ctx context.Context, r *model.Reservation)
	TableAvailable(ctx context.Context, r *model.Reservation)
	TableReceived(ctx context.Context, r *model.Reservation)
	BillIssued(ctx context.Context, r *model.Reservation, b *model.Bill)
	PaymentReceived(ctx context.Context, r *model.Reservation, b *model.Bill)
	ReservationCanceled(ctx context.Context, r *model.Reservation, reason string)
	MovedToWaiting(ctx context.Context, r *model.Reservation)
}

// NopNotifier discards every event.  Used in tests and as the fallback
// when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) ReservationConfirmed(context.Context, *model.Reservation)         {}
func (NopNotifier) ReservationReminder(context.Context, *model.Reservation)          {}
func (NopNotifier) TableAvailable(context.Context, *model.Reservation)               {}
func (NopNotifier) TableReceived(context.Context, *model.Reservation)                {}
func (NopNotifier) BillIssued(context.Context, *model.Reservation, *model.Bill)      {}
func (NopNotifier) PaymentReceived(context.Context, *model.Reservation, *model.Bill) {}
func (NopNotifier) ReservationCanceled(context.Context, *model.Reservation, string)  {}
func (NopNotifier) MovedToWaiting(context.Context, *model.Reservation)               {}
