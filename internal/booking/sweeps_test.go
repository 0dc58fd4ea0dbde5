package booking

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

func TestSweepNoShows(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	cust := env.store.addCustomer(false)
	env.store.addTable(4)

	missed, _ := env.svc.Create(ctx, cust, env.slot(2), 2)
	later, _ := env.svc.Create(ctx, cust, env.slot(5), 2)
	if !missed.OK || !later.OK {
		t.Fatalf("seed bookings failed")
	}

	// Sixteen minutes past the first start; the second is still hours out.
	env.now = env.now.Add(2*time.Hour + 16*time.Minute)

	n, err := env.svc.SweepNoShows(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one no-show, got %d", n)
	}
	if got := env.store.get(missed.ReservationID).Status; got != model.StatusCanceled {
		t.Fatalf("expected missed booking canceled, got %s", got)
	}
	if got := env.store.get(later.ReservationID).Status; got != model.StatusActive {
		t.Fatalf("expected later booking untouched, got %s", got)
	}
	if env.notes.count("canceled:"+CancelReasonNoShow) != 1 {
		t.Fatalf("expected one no-show notification")
	}

	// Rerunning immediately finds nothing new.
	if n, _ := env.svc.SweepNoShows(ctx); n != 0 {
		t.Fatalf("expected idempotent rerun, got %d", n)
	}
}

func TestSweepNoShowsRespectsGrace(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	cust := env.store.addCustomer(false)
	env.store.addTable(4)

	created, _ := env.svc.Create(ctx, cust, env.slot(2), 2)
	env.now = env.now.Add(2*time.Hour + 10*time.Minute)

	if n, _ := env.svc.SweepNoShows(ctx); n != 0 {
		t.Fatalf("ten minutes late is still inside the grace period, got %d", n)
	}
	if got := env.store.get(created.ReservationID).Status; got != model.StatusActive {
		t.Fatalf("expected booking untouched, got %s", got)
	}
}

func TestSweepReminders(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	cust := env.store.addCustomer(false)
	env.store.addTable(4)

	soon, _ := env.svc.Create(ctx, cust, env.slot(2), 2)
	far, _ := env.svc.Create(ctx, cust, env.slot(6), 2)
	if !soon.OK || !far.OK {
		t.Fatalf("seed bookings failed")
	}

	n, err := env.svc.SweepReminders(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one reminder, got %d", n)
	}
	if !env.store.get(soon.ReservationID).ReminderSent {
		t.Fatalf("expected the reminder flag set")
	}
	if env.store.get(far.ReservationID).ReminderSent {
		t.Fatalf("distant booking must not be reminded yet")
	}
	if n, _ := env.svc.SweepReminders(ctx); n != 0 {
		t.Fatalf("expected idempotent rerun, got %d", n)
	}
	if env.notes.count("reminder") != 1 {
		t.Fatalf("expected exactly one reminder notification, got %d", env.notes.count("reminder"))
	}
}

func TestSweepBilling(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	cust := env.store.addCustomer(false)
	env.store.addTable(4)

	join, _ := env.svc.JoinWaitlist(ctx, cust, 2)
	if rec, _ := env.svc.ReceiveTable(ctx, join.ReservationID); !rec.OK {
		t.Fatalf("check-in failed: %q", rec.Message)
	}

	// Seated less than a full slot: nothing to bill yet.
	if n, _ := env.svc.SweepBilling(ctx); n != 0 {
		t.Fatalf("expected no early bill, got %d", n)
	}

	env.now = env.now.Add(model.SlotDuration + time.Minute)
	n, err := env.svc.SweepBilling(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one bill, got %d", n)
	}
	b, err := env.svc.bills.GetByReservation(ctx, join.ReservationID)
	if err != nil {
		t.Fatalf("bill missing: %v", err)
	}
	if b.Paid {
		t.Fatalf("a swept bill starts unpaid")
	}
	if got := env.store.get(join.ReservationID).Status; got != model.StatusInProgress {
		t.Fatalf("billing must not complete the reservation, got %s", got)
	}
	if n, _ := env.svc.SweepBilling(ctx); n != 0 {
		t.Fatalf("expected idempotent rerun, got %d", n)
	}
	if env.notes.count("bill_issued") != 1 {
		t.Fatalf("expected one bill notification, got %d", env.notes.count("bill_issued"))
	}
}

func TestSweepMonthlyReport(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Hand-placed June rows: one completed with a paid bill, one canceled.
	june := time.Date(2025, time.June, 10, 19, 0, 0, 0, time.UTC)
	tbl := env.store.addTable(4)
	env.store.mu.Lock()
	env.store.reservations[1] = &model.Reservation{
		ID: 1, CustomerID: 1, Guests: 3, Status: model.StatusCompleted,
		Kind: model.KindAdvance, StartsAt: &june, TableID: &tbl,
		ConfirmationCode: "AAAA2222", CreatedAt: june.AddDate(0, 0, -2),
	}
	env.store.reservations[2] = &model.Reservation{
		ID: 2, CustomerID: 1, Guests: 2, Status: model.StatusCanceled,
		Kind: model.KindAdvance, ConfirmationCode: "BBBB3333",
		CreatedAt: june.AddDate(0, 0, -1),
	}
	env.store.nextRes = 2
	paidAt := june.Add(2 * time.Hour)
	env.store.bills[1] = &model.Bill{
		ID: 1, ReservationID: 1, AmountCents: 30000, FinalCents: 27000,
		Paid: true, PaidAt: &paidAt,
	}
	env.store.nextBill = 1
	env.store.mu.Unlock()

	// Not the first of the month: nothing happens.
	if ran, _ := env.svc.SweepMonthlyReport(ctx); ran {
		t.Fatalf("report must only run on the first of a month")
	}

	env.now = time.Date(2025, time.July, 1, 3, 0, 0, 0, time.UTC)
	ran, err := env.svc.SweepMonthlyReport(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatalf("expected the June report to be generated")
	}

	rep, ok := env.store.reports["2025-06"]
	if !ok {
		t.Fatalf("report for 2025-06 not stored")
	}
	if rep.Reservations != 2 || rep.Completed != 1 || rep.Canceled != 1 {
		t.Fatalf("unexpected counts: %+v", rep)
	}
	if rep.GuestsServed != 3 {
		t.Fatalf("expected 3 guests served, got %d", rep.GuestsServed)
	}
	if rep.RevenueCents != 27000 {
		t.Fatalf("expected paid-bill revenue 27000, got %d", rep.RevenueCents)
	}

	// Rerunning the same day is a no-op.
	if ran, _ := env.svc.SweepMonthlyReport(ctx); ran {
		t.Fatalf("expected the stored month to block a rerun")
	}
}
