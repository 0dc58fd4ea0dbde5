package booking

import (
	"context"
	"testing"
	"time"
)

func TestPacks(t *testing.T) {
	cases := []struct {
		name    string
		caps    []int
		demands []int
		want    bool
	}{
		{"empty demand always packs", []int{}, []int{}, true},
		{"single exact fit", []int{4}, []int{4}, true},
		{"party larger than any table", []int{2, 4}, []int{5}, false},
		{"more parties than tables", []int{4, 4}, []int{2, 2, 2}, false},
		{"ceiling match leaves room", []int{2, 4, 6}, []int{5, 2, 2}, true},
		{"large party starved by greedy order", []int{2, 4}, []int{4, 3}, false},
		{"each party to its ceiling", []int{2, 3, 4}, []int{4, 3, 2}, true},
		{"no tables at all", []int{}, []int{2}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := packs(tc.caps, tc.demands); got != tc.want {
				t.Fatalf("packs(%v, %v) = %v, want %v", tc.caps, tc.demands, got, tc.want)
			}
		})
	}
}

func TestUnmatchedReportsLosingParties(t *testing.T) {
	cases := []struct {
		name    string
		caps    []int
		demands []int
		want    []int
	}{
		{"all seated", []int{2, 4}, []int{4, 2}, nil},
		{"big party loses its table", []int{2, 4}, []int{3, 5}, []int{1}},
		{"equal parties lose in reverse arrival order", []int{4}, []int{3, 3}, []int{1}},
		{"nobody seated without tables", []int{}, []int{2, 2}, []int{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := unmatched(tc.caps, tc.demands)
			if len(got) != len(tc.want) {
				t.Fatalf("unmatched(%v, %v) = %v, want %v", tc.caps, tc.demands, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("unmatched(%v, %v) = %v, want %v", tc.caps, tc.demands, got, tc.want)
				}
			}
		})
	}
}

func TestIsFeasibleExcludesPinnedTables(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	cust := env.store.addCustomer(false)
	small := env.store.addTable(2)
	env.store.addTable(4)

	// Pin the small table with a seated walk-in covering the window.
	join, err := env.svc.JoinWaitlist(ctx, cust, 2)
	if err != nil || !join.Seated {
		t.Fatalf("expected walk-in to be seated, got %+v err=%v", join, err)
	}
	if join.TableID == nil || *join.TableID != small {
		t.Fatalf("expected smallest table %d pinned, got %v", small, join.TableID)
	}

	// Only the 4-top remains for the same window: a second pair fits,
	// two pairs do not.
	ok, err := env.svc.IsFeasible(ctx, env.now, 2)
	if err != nil || !ok {
		t.Fatalf("expected window to stay feasible for one more pair, ok=%v err=%v", ok, err)
	}
	ok, err = env.svc.IsFeasible(ctx, env.now, 5)
	if err != nil || ok {
		t.Fatalf("expected party of 5 to be infeasible, ok=%v err=%v", ok, err)
	}
}

func TestIsFeasibleCountsActiveDemand(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	cust := env.store.addCustomer(false)
	env.store.addTable(4)

	start := env.slot(2)
	res, err := env.svc.Create(ctx, cust, start, 4)
	if err != nil || !res.OK {
		t.Fatalf("expected creation to succeed, got %+v err=%v", res, err)
	}

	// The lone table is spoken for during the overlapping window but
	// free again once the first seating ends.
	ok, _ := env.svc.IsFeasible(ctx, start.Add(30*time.Minute), 2)
	if ok {
		t.Fatalf("expected overlapping slot to be infeasible")
	}
	ok, _ = env.svc.IsFeasible(ctx, start.Add(2*time.Hour), 2)
	if !ok {
		t.Fatalf("expected back-to-back slot to be feasible")
	}
}

func TestSuggestAlternatives(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	cust := env.store.addCustomer(false)
	env.store.addTable(4)

	start := env.slot(2)
	if res, err := env.svc.Create(ctx, cust, start, 4); err != nil || !res.OK {
		t.Fatalf("seed reservation failed: %+v err=%v", res, err)
	}

	res, err := env.svc.Create(ctx, cust, start, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatalf("expected full slot to be rejected")
	}
	if len(res.Alternatives) == 0 || len(res.Alternatives) > maxSuggestions {
		t.Fatalf("expected 1..%d alternatives, got %d", maxSuggestions, len(res.Alternatives))
	}
	for i, alt := range res.Alternatives {
		if i > 0 && !res.Alternatives[i-1].Before(alt) {
			t.Fatalf("alternatives not sorted ascending: %v", res.Alternatives)
		}
		if reason, _ := env.svc.ValidateSlot(ctx, alt); reason != "" {
			t.Fatalf("suggested slot %v is not legal: %q", alt, reason)
		}
		ok, _ := env.svc.IsFeasible(ctx, alt, 4)
		if !ok {
			t.Fatalf("suggested slot %v is not feasible", alt)
		}
	}
}
