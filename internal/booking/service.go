package booking

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Create accepts an advance booking for a concrete future slot.  On an
// infeasible slot nothing is persisted and the result carries up to
// three alternatives; on success the reservation starts out ACTIVE with
// a fresh confirmation code.
func (s *Service) Create(ctx context.Context, customerID uint64, start time.Time, guests int) (CreateResult, error) {
	if guests <= 0 {
		return CreateResult{Result: failure(msgBadGuests)}, nil
	}
	reason, err := s.ValidateSlot(ctx, start)
	if err != nil {
		return CreateResult{}, err
	}
	if reason != "" {
		return CreateResult{Result: failure(reason)}, nil
	}
	ok, err := s.IsFeasible(ctx, start, guests)
	if err != nil {
		return CreateResult{}, err
	}
	if !ok {
		return CreateResult{
			Result:       failure("No space at requested time."),
			Alternatives: s.SuggestAlternatives(ctx, start, guests),
		}, nil
	}

	r := &model.Reservation{
		CustomerID: customerID,
		StartsAt:   &start,
		Guests:     guests,
		Status:     model.StatusActive,
		Kind:       model.KindAdvance,
	}
	if err := s.insertWithCode(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return CreateResult{Result: failure("Could not issue a confirmation code, please try again")}, nil
		}
		return CreateResult{}, err
	}
	s.notifier.ReservationConfirmed(ctx, r)
	return CreateResult{
		Result:           success("Reservation confirmed"),
		ReservationID:    r.ID,
		ConfirmationCode: r.ConfirmationCode,
	}, nil
}

// insertWithCode persists a reservation, regenerating the confirmation
// code on a uniqueness collision up to maxCodeRetries times.  Past the
// cap the last ErrDuplicateCode is returned.
func (s *Service) insertWithCode(ctx context.Context, r *model.Reservation) error {
	var err error
	for attempt := 0; attempt < maxCodeRetries; attempt++ {
		r.ConfirmationCode, err = newConfirmationCode()
		if err != nil {
			return err
		}
		err = s.reservations.Create(ctx, r)
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return err
		}
	}
	return err
}

// JoinWaitlist handles a walk-in.  When a table is free right now the
// entry skips the queue entirely and is created NOTIFIED with the table
// already pinned; otherwise it is created WAITING with no start time
// and no table, queued behind earlier arrivals.
func (s *Service) JoinWaitlist(ctx context.Context, customerID uint64, guests int) (JoinResult, error) {
	if guests <= 0 {
		return JoinResult{Result: failure(msgBadGuests)}, nil
	}
	now := s.now()

	var table *model.Table
	feasibleNow, err := s.IsFeasible(ctx, now, guests)
	if err != nil {
		return JoinResult{}, err
	}
	if feasibleNow {
		t, err := s.tables.FindFree(ctx, guests, now, now.Add(model.SlotDuration))
		switch {
		case err == nil:
			table = t
		case errors.Is(err, repository.ErrNoFreeTable):
			// Feasible on paper but every fitting table is pinned; queue it.
		default:
			return JoinResult{}, err
		}
	}

	r := &model.Reservation{
		CustomerID: customerID,
		Guests:     guests,
		Kind:       model.KindWalkIn,
		Status:     model.StatusWaiting,
	}
	if table != nil {
		r.Status = model.StatusNotified
		r.StartsAt = &now
		r.TableID = &table.ID
	}
	if err := s.insertWithCode(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return JoinResult{Result: failure("Could not issue a confirmation code, please try again")}, nil
		}
		return JoinResult{}, err
	}

	res := JoinResult{
		ReservationID:    r.ID,
		ConfirmationCode: r.ConfirmationCode,
		Seated:           table != nil,
		TableID:          r.TableID,
	}
	if table != nil {
		res.Result = success("A table is ready for you")
		s.notifier.TableAvailable(ctx, r)
	} else {
		res.Result = success("Added to the waitlist")
		s.notifier.ReservationConfirmed(ctx, r)
	}
	return res, nil
}

// Cancel transitions a reservation to CANCELED.  Legal only from
// ACTIVE, NOTIFIED or WAITING; a party already dining pays first, and
// terminal states reject a second cancellation so side effects never
// double-apply.  When the freed state could have held a table or an
// active slot the promoter runs afterwards.
func (s *Service) Cancel(ctx context.Context, id uint64) (Result, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return failure("Reservation not found"), nil
		}
		return Result{}, err
	}
	if r.Status == model.StatusInProgress {
		return failure("Party is already seated; settle the bill instead"), nil
	}
	if !r.Status.CanCancel() {
		return failure("Reservation is already completed or canceled"), nil
	}
	won, err := s.reservations.MarkCanceled(ctx, id, r.Status)
	if err != nil {
		return Result{}, err
	}
	if !won {
		return failure("Reservation is already completed or canceled"), nil
	}
	s.notifier.ReservationCanceled(ctx, r, CancelReasonUser)
	if r.Status == model.StatusActive || r.Status == model.StatusNotified {
		// The cancellation is committed; a promoter hiccup must not
		// turn it into an apparent failure.  The next sweep retries.
		if _, err := s.PromoteAll(ctx, 0); err != nil {
			log.Printf("booking: promotion after cancel of %d failed: %v", r.ID, err)
		}
	}
	return success("Reservation canceled"), nil
}

// ReceiveTable checks a party in.  A NOTIFIED reservation re-uses its
// pinned table after confirming the table still exists and still seats
// the party (the pool may have changed since the notification); an
// ACTIVE reservation is assigned a concrete free table now.  Either way
// the reservation moves to IN_PROGRESS with the check-in stamped.
func (s *Service) ReceiveTable(ctx context.Context, id uint64) (ReceiveResult, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return ReceiveResult{Result: failure("Reservation not found")}, nil
		}
		return ReceiveResult{}, err
	}
	if !r.Status.CanReceiveTable() {
		return ReceiveResult{Result: failure("Reservation cannot be checked in from its current state")}, nil
	}
	now := s.now()

	var table *model.Table
	if r.Status == model.StatusNotified && r.TableID != nil {
		t, err := s.tables.GetByID(ctx, *r.TableID)
		switch {
		case err == nil && t.Capacity >= r.Guests:
			table = t
		case err != nil && !errors.Is(err, repository.ErrTableNotFound):
			return ReceiveResult{}, err
		}
	}
	if table == nil {
		windowStart := now
		if r.StartsAt != nil {
			windowStart = *r.StartsAt
		}
		t, err := s.tables.FindFree(ctx, r.Guests, windowStart, windowStart.Add(model.SlotDuration))
		if err != nil {
			if errors.Is(err, repository.ErrNoFreeTable) {
				return ReceiveResult{Result: failure("No table is available right now")}, nil
			}
			return ReceiveResult{}, err
		}
		table = t
	}

	won, err := s.reservations.MarkInProgress(ctx, id, table.ID, now)
	if err != nil {
		return ReceiveResult{}, err
	}
	if !won {
		return ReceiveResult{Result: failure("Reservation cannot be checked in from its current state")}, nil
	}
	r.Status = model.StatusInProgress
	r.TableID = &table.ID
	r.CheckedInAt = &now
	s.notifier.TableReceived(ctx, r)
	return ReceiveResult{Result: success("Enjoy your meal"), TableID: table.ID}, nil
}

// GetOrCreateBill returns the reservation's bill, creating it on first
// request.  Only an IN_PROGRESS party can ask for its bill.
func (s *Service) GetOrCreateBill(ctx context.Context, reservationID uint64) (BillResult, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return BillResult{Result: failure("Reservation not found")}, nil
		}
		return BillResult{}, err
	}
	if r.Status != model.StatusInProgress {
		return BillResult{Result: failure("Bill is only available while the party is seated")}, nil
	}
	b, err := s.bills.GetByReservation(ctx, reservationID)
	if err == nil {
		return BillResult{Result: success("Bill ready"), Bill: b}, nil
	}
	if !errors.Is(err, repository.ErrBillNotFound) {
		return BillResult{}, err
	}
	b, err = s.computeBill(ctx, r)
	if err != nil {
		return BillResult{}, err
	}
	if err := s.bills.Create(ctx, b); err != nil {
		return BillResult{}, err
	}
	s.notifier.BillIssued(ctx, r, b)
	return BillResult{Result: success("Bill ready"), Bill: b}, nil
}

// computeBill prices a seating: a random per-guest amount in [80,150)
// currency units, with the 10% subscriber discount applied to the
// final amount.  The pre-discount amount is kept for reporting.
func (s *Service) computeBill(ctx context.Context, r *model.Reservation) (*model.Bill, error) {
	var amount int64
	for i := 0; i < r.Guests; i++ {
		amount += int64(80+rand.Intn(70)) * 100
	}
	final := amount
	c, err := s.customers.GetByID(ctx, r.CustomerID)
	switch {
	case err == nil && c.Subscriber:
		final = amount * 90 / 100
	case err != nil && !errors.Is(err, repository.ErrCustomerNotFound):
		return nil, err
	}
	return &model.Bill{ReservationID: r.ID, AmountCents: amount, FinalCents: final}, nil
}

// PayAndComplete settles a bill: marks it paid exactly once, completes
// the reservation with a check-out stamp, and reports the freed table
// capacity before running the promoter with it.  A second payment
// attempt fails without re-applying any side effect.
func (s *Service) PayAndComplete(ctx context.Context, billID uint64) (PayResult, error) {
	b, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return PayResult{Result: failure("Bill not found")}, nil
		}
		return PayResult{}, err
	}
	if b.Paid {
		return PayResult{Result: failure("Bill is already paid")}, nil
	}
	r, err := s.reservations.GetByID(ctx, b.ReservationID)
	if err != nil {
		return PayResult{}, err
	}
	if r.Status != model.StatusInProgress {
		return PayResult{Result: failure("Reservation is not currently seated")}, nil
	}
	now := s.now()
	won, err := s.bills.MarkPaid(ctx, b.ID, now)
	if err != nil {
		return PayResult{}, err
	}
	if !won {
		return PayResult{Result: failure("Bill is already paid")}, nil
	}
	if _, err := s.reservations.MarkCompleted(ctx, r.ID, now); err != nil {
		return PayResult{}, err
	}

	freed := 0
	if r.TableID != nil {
		if t, err := s.tables.GetByID(ctx, *r.TableID); err == nil {
			freed = t.Capacity
		}
	}
	b.Paid = true
	b.PaidAt = &now
	s.notifier.PaymentReceived(ctx, r, b)
	// Same as Cancel: the payment stands even if promotion stumbles.
	if _, err := s.PromoteAll(ctx, freed); err != nil {
		log.Printf("booking: promotion after payment of bill %d failed: %v", b.ID, err)
	}
	return PayResult{Result: success("Payment received, thank you"), FreedCapacity: freed}, nil
}

// ListByCustomer returns every reservation the customer owns.
func (s *Service) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Reservation, error) {
	return s.reservations.ListByCustomer(ctx, customerID)
}

// FindByCode resolves a confirmation code for the given customer.
// Codes are customer-facing but still scoped to their owner.
func (s *Service) FindByCode(ctx context.Context, customerID uint64, code string) (*model.Reservation, error) {
	r, err := s.reservations.GetByConfirmationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if r.CustomerID != customerID {
		return nil, repository.ErrForbidden
	}
	return r, nil
}
