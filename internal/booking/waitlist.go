package booking

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// PromoteNext scans WAITING entries in arrival order and promotes the
// first one that can be seated right now: it pins a concrete table and
// moves the entry to NOTIFIED with the start time set to "now".  A
// positive capacityHint pre-filters the scan to parties that fit a
// just-freed table.  It returns the promoted reservation id, or false
// when nobody on the list fits.
//
// Every invocation — request-triggered or scheduler-triggered — goes
// through promoteMu, so at most one promotion scan runs at a time; the
// conditional WAITING→NOTIFIED update in the store is the second line
// of defense against an out-of-process racer.
func (s *Service) PromoteNext(ctx context.Context, capacityHint int) (uint64, bool, error) {
	s.promoteMu.Lock()
	defer s.promoteMu.Unlock()
	return s.promoteLocked(ctx, capacityHint)
}

// PromoteAll drains the waitlist: it repeats the promotion scan until a
// pass finds nobody seatable, and returns how many entries were
// promoted.  The capacity hint only applies to the first pass — one
// freed table seats at most one party.
func (s *Service) PromoteAll(ctx context.Context, capacityHint int) (int, error) {
	s.promoteMu.Lock()
	defer s.promoteMu.Unlock()
	promoted := 0
	hint := capacityHint
	for {
		_, ok, err := s.promoteLocked(ctx, hint)
		if err != nil {
			return promoted, err
		}
		if !ok {
			return promoted, nil
		}
		promoted++
		hint = 0
	}
}

// promoteLocked is the single promotion pass.  Callers hold promoteMu.
func (s *Service) promoteLocked(ctx context.Context, capacityHint int) (uint64, bool, error) {
	waiting, err := s.reservations.ListWaiting(ctx, capacityHint)
	if err != nil {
		return 0, false, err
	}
	now := s.now()
	end := now.Add(model.SlotDuration)

	for i := range waiting {
		w := waiting[i]
		ok, err := s.IsFeasible(ctx, now, w.Guests)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			continue
		}
		t, err := s.tables.FindFree(ctx, w.Guests, now, end)
		if err != nil {
			if errors.Is(err, repository.ErrNoFreeTable) {
				continue
			}
			return 0, false, err
		}
		won, err := s.reservations.MarkNotified(ctx, w.ID, t.ID, now)
		if err != nil {
			return 0, false, err
		}
		if !won {
			// Somebody else moved this entry meanwhile; next candidate.
			continue
		}
		w.Status = model.StatusNotified
		w.TableID = &t.ID
		w.StartsAt = &now
		s.notifier.TableAvailable(ctx, &w)
		return w.ID, true, nil
	}
	return 0, false, nil
}
