package model

import "time"

// MonthlyReport is the per-month rollup produced by the report sweep on
// the first day of the following month.  Month is the "YYYY-MM" key of
// the month the numbers describe.
type MonthlyReport struct {
	Month        string    // monthly_reports.month
	Reservations int       // monthly_reports.reservations: rows created in the month
	Completed    int       // monthly_reports.completed
	Canceled     int       // monthly_reports.canceled
	GuestsServed int       // monthly_reports.guests_served: guests across completed rows
	RevenueCents int64     // monthly_reports.revenue_cents: paid bill totals
	GeneratedAt  time.Time // monthly_reports.generated_at
}
