package booking

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Parameters of the alternative-time search: probe outward in
// 30-minute steps, up to 6 hours each way, and keep the first 3 hits.
const (
	suggestionStep  = 30 * time.Minute
	suggestionSteps = 12
	maxSuggestions  = 3
)

// IsFeasible decides whether a new party of the given size can be
// seated at start alongside every already-accepted commitment that
// overlaps the same window.
func (s *Service) IsFeasible(ctx context.Context, start time.Time, guests int) (bool, error) {
	return s.feasible(ctx, start, guests)
}

// feasible runs the bin-packing check for the window anchored at start,
// with extraGuests as the prospective new demand on top of the
// already-booked set.
func (s *Service) feasible(ctx context.Context, start time.Time, extraGuests int) (bool, error) {
	caps, active, err := s.windowLoad(ctx, start)
	if err != nil {
		return false, err
	}
	demands := make([]int, 0, len(active)+1)
	for _, r := range active {
		demands = append(demands, r.Guests)
	}
	if extraGuests > 0 {
		demands = append(demands, extraGuests)
	}
	return packs(caps, demands), nil
}

// windowLoad gathers both sides of the packing for the window anchored
// at start: the capacities of tables not pinned by a NOTIFIED or
// IN_PROGRESS reservation overlapping the window, and the overlapping
// ACTIVE reservations whose parties make up the demand set.
func (s *Service) windowLoad(ctx context.Context, start time.Time) ([]int, []model.Reservation, error) {
	end := start.Add(model.SlotDuration)

	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	pinned, err := s.reservations.ListOverlapping(ctx, start, end, model.StatusNotified, model.StatusInProgress)
	if err != nil {
		return nil, nil, err
	}
	occupied := make(map[uint64]bool, len(pinned))
	for _, r := range pinned {
		if r.TableID != nil {
			occupied[*r.TableID] = true
		}
	}
	caps := make([]int, 0, len(tables))
	for _, t := range tables {
		if !occupied[t.ID] {
			caps = append(caps, t.Capacity)
		}
	}

	active, err := s.reservations.ListOverlapping(ctx, start, end, model.StatusActive)
	if err != nil {
		return nil, nil, err
	}
	return caps, active, nil
}

// strandedAt packs the window anchored at start and reports which of
// the overlapping ACTIVE reservations go unmatched.  Reservations that
// keep a table are not in the map, so revalidation leaves them alone.
func (s *Service) strandedAt(ctx context.Context, start time.Time) (map[uint64]bool, error) {
	caps, active, err := s.windowLoad(ctx, start)
	if err != nil {
		return nil, err
	}
	demands := make([]int, len(active))
	for i := range active {
		demands[i] = active[i].Guests
	}
	stranded := map[uint64]bool{}
	for _, i := range unmatched(caps, demands) {
		stranded[active[i].ID] = true
	}
	return stranded, nil
}

// packs reports whether every demand finds a capacity under the greedy
// ceiling-match rule.
func packs(caps, demands []int) bool {
	return len(unmatched(caps, demands)) == 0
}

// unmatched runs the greedy ceiling match and returns the indices of
// the demands left without a table: largest party first, each into the
// smallest capacity that holds it, equal parties assigned in list
// order.  The heuristic can leave a demand unmatched that an exact
// matching would seat; it is kept deliberately for deterministic,
// compatible behavior.
func unmatched(caps, demands []int) []int {
	if len(demands) == 0 {
		return nil
	}
	free := append([]int(nil), caps...)
	sort.Ints(free)
	order := make([]int, len(demands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return demands[order[a]] > demands[order[b]] })

	var out []int
	for _, idx := range order {
		// Smallest capacity that still holds the party.
		i := sort.SearchInts(free, demands[idx])
		if i == len(free) {
			out = append(out, idx)
			continue
		}
		free = append(free[:i], free[i+1:]...)
	}
	sort.Ints(out)
	return out
}

// SuggestAlternatives looks for up to three nearby slots that are both
// legal and feasible when the requested one is full.  It probes
// start±30min·i for i=1..12, alternating later/earlier, and stops at
// three hits; results come back sorted ascending.  The search is local
// and best-effort: a store error simply ends it with whatever was
// found so far, because suggestions decorate a failure result.
func (s *Service) SuggestAlternatives(ctx context.Context, start time.Time, guests int) []time.Time {
	out := make([]time.Time, 0, maxSuggestions)
	for i := 1; i <= suggestionSteps && len(out) < maxSuggestions; i++ {
		step := time.Duration(i) * suggestionStep
		for _, cand := range [2]time.Time{start.Add(step), start.Add(-step)} {
			if len(out) == maxSuggestions {
				break
			}
			reason, err := s.ValidateSlot(ctx, cand)
			if err != nil {
				return sorted(out)
			}
			if reason != "" {
				continue
			}
			ok, err := s.IsFeasible(ctx, cand, guests)
			if err != nil {
				return sorted(out)
			}
			if ok {
				out = append(out, cand)
			}
		}
	}
	return sorted(out)
}

func sorted(times []time.Time) []time.Time {
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}
