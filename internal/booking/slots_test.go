package booking

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

func TestValidateSlotGridAndTiming(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cases := []struct {
		name  string
		start time.Time
		want  string
	}{
		{"on the hour", env.slot(2), ""},
		{"on the half hour", env.slot(2).Add(30 * time.Minute), ""},
		{"quarter hour", env.slot(2).Add(15 * time.Minute), msgBadGrid},
		{"stray seconds", env.slot(2).Add(10 * time.Second), msgBadGrid},
		{"under one hour notice", env.now.Add(30 * time.Minute), msgTooSoon},
		{"exactly one hour notice", env.slot(1), ""},
		{"beyond one month", env.now.AddDate(0, 1, 1), msgTooFar},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.svc.ValidateSlot(ctx, tc.start)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValidateSlotDefaultWindow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// No weekly rows, no overrides: 10:00 until 02:00 next morning.
	day := env.now.Truncate(24 * time.Hour)
	cases := []struct {
		name  string
		start time.Time
		want  string
	}{
		{"mid afternoon", day.Add(14 * time.Hour), ""},
		{"last full seating", day.Add(24 * time.Hour), ""},
		{"seating runs past close", day.Add(24*time.Hour + 30*time.Minute), msgClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.svc.ValidateSlot(ctx, tc.start)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValidateSlotOvernightHours(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Every weekday opens 22:00 and closes 02:00 the next morning.
	for wd := 0; wd < 7; wd++ {
		env.hours.weekly[wd] = model.OpeningHours{Weekday: wd, OpensAt: "22:00", ClosesAt: "02:00"}
	}

	day := env.now.Truncate(24 * time.Hour)
	cases := []struct {
		name  string
		start time.Time
		want  string
	}{
		{"before opening", day.Add(20 * time.Hour), msgClosed},
		{"first seating of the night", day.Add(22 * time.Hour), ""},
		{"straddles midnight", day.Add(23*time.Hour + 30*time.Minute), ""},
		{"midnight via previous day window", day.Add(24 * time.Hour), ""},
		{"runs past the overnight close", day.Add(24*time.Hour + 30*time.Minute), msgClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.svc.ValidateSlot(ctx, tc.start)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValidateSlotOverridePrecedence(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	day := env.now.Truncate(24 * time.Hour)
	wd := int(env.now.Weekday())
	env.hours.weekly[wd] = model.OpeningHours{Weekday: wd, OpensAt: "10:00", ClosesAt: "22:00"}

	start := day.Add(14 * time.Hour)
	if got, _ := env.svc.ValidateSlot(ctx, start); got != "" {
		t.Fatalf("expected slot to be open under weekly hours, got %q", got)
	}

	// A closure override beats the weekly schedule outright.
	env.hours.overrides[day.Format("2006-01-02")] = model.DateOverride{
		Date: day.Format("2006-01-02"), Closed: true, Reason: "private event",
	}
	if got, _ := env.svc.ValidateSlot(ctx, start); got != msgClosed {
		t.Fatalf("expected %q, got %q", msgClosed, got)
	}

	// An extended-hours override opens a slot the weekly row refuses.
	late := day.Add(21*time.Hour + 30*time.Minute)
	env.hours.overrides[day.Format("2006-01-02")] = model.DateOverride{
		Date: day.Format("2006-01-02"), OpensAt: "10:00", ClosesAt: "23:59",
	}
	if got, _ := env.svc.ValidateSlot(ctx, late); got != "" {
		t.Fatalf("expected extended slot to be open, got %q", got)
	}
}
