package booking

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// The sweeps below are the time-driven half of the lifecycle machine.
// Each is idempotent: the conditional store updates make a sweep that
// runs twice in immediate succession a no-op the second time, so the
// scheduler never needs to coordinate with inbound requests.

// SweepNoShows cancels every ACTIVE or NOTIFIED reservation whose start
// time is at least the no-show grace period in the past, then runs the
// promoter once anything was freed.  Returns how many were canceled.
func (s *Service) SweepNoShows(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.reservations.ListNoShowCandidates(ctx, now.Add(-noShowGrace))
	if err != nil {
		return 0, err
	}
	canceled := 0
	for i := range candidates {
		r := candidates[i]
		won, err := s.reservations.MarkCanceled(ctx, r.ID, r.Status)
		if err != nil {
			return canceled, err
		}
		if won {
			canceled++
			s.notifier.ReservationCanceled(ctx, &r, CancelReasonNoShow)
		}
	}
	if canceled > 0 {
		if _, err := s.PromoteAll(ctx, 0); err != nil {
			return canceled, err
		}
	}
	return canceled, nil
}

// SweepReminders notifies ACTIVE reservations starting inside the
// narrow window centered on now+2h.  The window plus the sent flag
// keeps consecutive sweep runs from double-sending.
func (s *Service) SweepReminders(ctx context.Context) (int, error) {
	now := s.now()
	from := now.Add(reminderLead - reminderHalf)
	to := now.Add(reminderLead + reminderHalf)
	candidates, err := s.reservations.ListReminderCandidates(ctx, from, to)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range candidates {
		r := candidates[i]
		won, err := s.reservations.MarkReminderSent(ctx, r.ID)
		if err != nil {
			return sent, err
		}
		if won {
			sent++
			s.notifier.ReservationReminder(ctx, &r)
		}
	}
	return sent, nil
}

// SweepBilling creates and sends a bill for every IN_PROGRESS
// reservation seated at least one full slot ago that has none yet.  It
// only issues the bill — completion still happens on PayAndComplete.
func (s *Service) SweepBilling(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.reservations.ListBillingCandidates(ctx, now.Add(-model.SlotDuration))
	if err != nil {
		return 0, err
	}
	billed := 0
	for i := range candidates {
		r := candidates[i]
		b, err := s.computeBill(ctx, &r)
		if err != nil {
			return billed, err
		}
		if err := s.bills.Create(ctx, b); err != nil {
			return billed, err
		}
		billed++
		s.notifier.BillIssued(ctx, &r, b)
	}
	return billed, nil
}

// SweepMonthlyReport generates the previous month's rollup on the
// first day of a month, once.  Any other day, or a month already
// stored, is a no-op.
func (s *Service) SweepMonthlyReport(ctx context.Context) (bool, error) {
	now := s.now()
	if now.Day() != 1 {
		return false, nil
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevStart := monthStart.AddDate(0, -1, 0)
	month := prevStart.Format("2006-01")

	exists, err := s.reports.Exists(ctx, month)
	if err != nil || exists {
		return false, err
	}
	rep, err := s.reports.Aggregate(ctx, prevStart, monthStart)
	if err != nil {
		return false, err
	}
	rep.Month = month
	rep.GeneratedAt = now
	if err := s.reports.Insert(ctx, rep); err != nil {
		return false, err
	}
	return true, nil
}
