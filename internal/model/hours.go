package model

// OpeningHours holds the regular weekly schedule, one row per weekday.
// A ClosesAt earlier than OpensAt means the restaurant stays open past
// midnight into the following calendar day.  Times are "HH:MM" strings
// in the restaurant's local zone.
//
// Fields:
//
//	Weekday  – 0 (Sunday) through 6 (Saturday), matching time.Weekday.
//	OpensAt  – opening time of day.
//	ClosesAt – closing time of day.
//	Closed   – the restaurant does not open at all on this weekday.
type OpeningHours struct {
	Weekday  int    // opening_hours.weekday
	OpensAt  string // opening_hours.opens_at
	ClosesAt string // opening_hours.closes_at
	Closed   bool   // opening_hours.closed
}

// DateOverride replaces the weekly schedule for one specific calendar
// date, e.g. a holiday closure or an extended event night.  It has the
// same shape as OpeningHours plus a free-text reason, and always wins
// over the weekly row for its date.
//
// Fields:
//
//	Date     – calendar date in "YYYY-MM-DD" form (primary key).
//	OpensAt  – opening time of day.
//	ClosesAt – closing time of day.
//	Closed   – the restaurant is closed on this date.
//	Reason   – free text shown to staff ("Christmas", "private event").
type DateOverride struct {
	Date     string // date_overrides.date
	OpensAt  string // date_overrides.opens_at
	ClosesAt string // date_overrides.closes_at
	Closed   bool   // date_overrides.closed
	Reason   string // date_overrides.reason
}
