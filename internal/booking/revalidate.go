package booking

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// RemoveTable deletes a table from the pool.  The change is refused
// outright while the table carries a NOTIFIED or IN_PROGRESS
// reservation — seated or summoned guests cannot be stranded.  After a
// successful delete every future ACTIVE commitment is revalidated
// against the shrunken pool.
func (s *Service) RemoveTable(ctx context.Context, tableID uint64) (Result, error) {
	pinned, err := s.tables.HasPinned(ctx, tableID)
	if err != nil {
		return Result{}, err
	}
	if pinned {
		return failure("Table currently has notified or seated guests"), nil
	}
	if err := s.tables.Delete(ctx, tableID); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return failure("Table not found"), nil
		}
		return Result{}, err
	}
	if err := s.revalidatePool(ctx); err != nil {
		return Result{}, err
	}
	return success("Table removed"), nil
}

// ResizeTable changes a table's capacity under the same refusal rule as
// RemoveTable.  Growing a table can unblock waitlisted parties, so the
// revalidation pass (which ends with a promoter run) executes for both
// directions.
func (s *Service) ResizeTable(ctx context.Context, tableID uint64, capacity int) (Result, error) {
	if capacity <= 0 {
		return failure("Capacity must be a positive number"), nil
	}
	pinned, err := s.tables.HasPinned(ctx, tableID)
	if err != nil {
		return Result{}, err
	}
	if pinned {
		return failure("Table currently has notified or seated guests"), nil
	}
	if err := s.tables.UpdateCapacity(ctx, tableID, capacity); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return failure("Table not found"), nil
		}
		return Result{}, err
	}
	if err := s.revalidatePool(ctx); err != nil {
		return Result{}, err
	}
	return success("Table updated"), nil
}

// revalidatePool re-checks every ACTIVE reservation in the next month
// against the current table pool.  Only the reservations whose party
// goes unmatched when their window is packed are demoted back to
// WAITING — table and start time cleared, the original arrival order
// preserved — and their customers are told; overlapping commitments
// that still find a table keep their slot.  Each reservation is judged
// against a fresh packing so an earlier demotion in the same pass can
// free room for the next candidate.  The pass ends with a promoter run
// because the remaining pool changed.
func (s *Service) revalidatePool(ctx context.Context) error {
	now := s.now()
	active, err := s.reservations.ListActiveBetween(ctx, now, now.AddDate(0, 1, 0))
	if err != nil {
		return err
	}
	for i := range active {
		r := active[i]
		stranded, err := s.strandedAt(ctx, *r.StartsAt)
		if err != nil {
			return err
		}
		if !stranded[r.ID] {
			continue
		}
		demoted, err := s.reservations.DemoteToWaiting(ctx, r.ID)
		if err != nil {
			return err
		}
		if demoted {
			r.Status = model.StatusWaiting
			r.StartsAt = nil
			r.TableID = nil
			s.notifier.MovedToWaiting(ctx, &r)
		}
	}
	_, err = s.PromoteAll(ctx, 0)
	return err
}

// RevalidateHours runs after the weekly schedule or a date override
// changes.  Upcoming ACTIVE and NOTIFIED reservations whose start no
// longer fits the new legal window are canceled outright — an hours
// change forfeits the commitment rather than requeueing it — and each
// affected customer is notified before the promoter runs.
func (s *Service) RevalidateHours(ctx context.Context) (int, error) {
	now := s.now()
	upcoming, err := s.reservations.ListUpcoming(ctx, now)
	if err != nil {
		return 0, err
	}
	canceled := 0
	for i := range upcoming {
		r := upcoming[i]
		fits, err := s.fitsWindow(ctx, *r.StartsAt)
		if err != nil {
			return canceled, err
		}
		if fits {
			continue
		}
		won, err := s.reservations.MarkCanceled(ctx, r.ID, r.Status)
		if err != nil {
			return canceled, err
		}
		if won {
			canceled++
			s.notifier.ReservationCanceled(ctx, &r, CancelReasonHours)
		}
	}
	if _, err := s.PromoteAll(ctx, 0); err != nil {
		return canceled, err
	}
	return canceled, nil
}
