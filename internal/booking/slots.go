package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Default window used when neither an override nor a weekly row exists
// for a date: 10:00 until 02:00 the next morning.
const (
	defaultOpensAt  = "10:00"
	defaultClosesAt = "02:00"
)

// User-facing rejection reasons produced by the slot validator.
const (
	msgBadGrid   = "Reservation time must fall on a full or half hour"
	msgTooSoon   = "Reservations require at least one hour notice"
	msgTooFar    = "Reservations can be made at most one month ahead"
	msgClosed    = "Restaurant is closed at that time"
	msgBadGuests = "Party size must be a positive number"
)

// dayWindow is one resolved opening window: minutes-of-day for open and
// close, with close <= open meaning the window runs past midnight.
type dayWindow struct {
	openMin  int
	closeMin int
	closed   bool
}

// ValidateSlot decides whether start is a legal reservation slot.  It
// returns an empty string when legal, otherwise a specific user-facing
// reason.  The error return is reserved for data-access failures; a
// rejected slot is a normal negative result, not an error.
//
// Rules, in order: the time must sit on the 30-minute grid, at least
// one hour from now and no more than one month out, and the whole
// two-hour seating must fit inside the opening window governing that
// instant (date override first, then weekly hours, then the default).
func (s *Service) ValidateSlot(ctx context.Context, start time.Time) (string, error) {
	if start.Second() != 0 || start.Nanosecond() != 0 || start.Minute()%30 != 0 {
		return msgBadGrid, nil
	}
	now := s.now()
	if start.Before(now.Add(minLeadTime)) {
		return msgTooSoon, nil
	}
	if start.After(now.AddDate(0, maxHorizon, 0)) {
		return msgTooFar, nil
	}
	fits, err := s.fitsWindow(ctx, start)
	if err != nil {
		return "", err
	}
	if !fits {
		return msgClosed, nil
	}
	return "", nil
}

// fitsWindow reports whether [start, start+SlotDuration) lies entirely
// inside an opening window.  Two windows can host the interval: the one
// anchored on start's own date, and — when the previous day stays open
// past midnight — the tail of the previous day's window.  Revalidation
// calls this directly because existing commitments must not be held to
// the lead-time and horizon rules meant for new requests.
func (s *Service) fitsWindow(ctx context.Context, start time.Time) (bool, error) {
	end := start.Add(model.SlotDuration)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	w, err := s.windowFor(ctx, day)
	if err != nil {
		return false, err
	}
	if !w.closed && insideWindow(day, w, start, end) {
		return true, nil
	}

	// Early-morning starts can belong to yesterday's overnight window.
	prev := day.AddDate(0, 0, -1)
	pw, err := s.windowFor(ctx, prev)
	if err != nil {
		return false, err
	}
	if !pw.closed && pw.closeMin <= pw.openMin && insideWindow(prev, pw, start, end) {
		return true, nil
	}
	return false, nil
}

// insideWindow anchors the window on the given date and checks that
// [start, end) fits.  A close at or before the open spills into the
// next calendar day.
func insideWindow(day time.Time, w dayWindow, start, end time.Time) bool {
	opens := day.Add(time.Duration(w.openMin) * time.Minute)
	closes := day.Add(time.Duration(w.closeMin) * time.Minute)
	if w.closeMin <= w.openMin {
		closes = closes.Add(24 * time.Hour)
	}
	return !start.Before(opens) && !end.After(closes)
}

// windowFor resolves the opening window for one calendar date: a date
// override wins outright, then the weekly schedule, then the default.
func (s *Service) windowFor(ctx context.Context, day time.Time) (dayWindow, error) {
	o, err := s.hours.GetOverride(ctx, day.Format("2006-01-02"))
	switch {
	case err == nil:
		if o.Closed {
			return dayWindow{closed: true}, nil
		}
		return parseWindow(o.OpensAt, o.ClosesAt)
	case !errors.Is(err, repository.ErrOverrideNotFound):
		return dayWindow{}, err
	}

	h, err := s.hours.GetWeekly(ctx, int(day.Weekday()))
	switch {
	case err == nil:
		if h.Closed {
			return dayWindow{closed: true}, nil
		}
		return parseWindow(h.OpensAt, h.ClosesAt)
	case !errors.Is(err, repository.ErrHoursNotFound):
		return dayWindow{}, err
	}

	return parseWindow(defaultOpensAt, defaultClosesAt)
}

func parseWindow(opensAt, closesAt string) (dayWindow, error) {
	open, err := minutesOfDay(opensAt)
	if err != nil {
		return dayWindow{}, err
	}
	closeM, err := minutesOfDay(closesAt)
	if err != nil {
		return dayWindow{}, err
	}
	return dayWindow{openMin: open, closeMin: closeM}, nil
}

// minutesOfDay parses an "HH:MM" clock string into minutes since midnight.
func minutesOfDay(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("bad clock value %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
