// Package booking implements the reservation engine: slot validation,
// table-assignment feasibility, the reservation lifecycle state
// machine, waitlist promotion, revalidation after structural changes,
// and the periodic sweeps driven by the scheduler.  It talks to the
// persistence layer through the narrow store interfaces below, which
// the concrete repositories in internal/repository satisfy; tests plug
// in in-memory fakes.
package booking

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Tunables of the lifecycle machine.  SlotDuration itself lives in
// package model because the repositories need it for overlap queries.
const (
	minLeadTime    = time.Hour        // earliest a slot may start, measured from "now"
	maxHorizon     = 1                // months ahead a slot may be booked
	noShowGrace    = 15 * time.Minute // lateness tolerated before the no-show sweep cancels
	reminderLead   = 2 * time.Hour    // reminders fire this far ahead of the start
	reminderHalf   = time.Minute      // half-width of the reminder window
	maxCodeRetries = 5                // attempts to generate a unique confirmation code
)

// ReservationStore is the slice of the persistence capability the
// engine needs for reservations.  Every Mark*/Demote* method applies a
// conditional single-row update and reports whether this caller won.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetByConfirmationCode(ctx context.Context, code string) (*model.Reservation, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]model.Reservation, error)
	ListOverlapping(ctx context.Context, start, end time.Time, statuses ...model.ReservationStatus) ([]model.Reservation, error)
	ListWaiting(ctx context.Context, maxGuests int) ([]model.Reservation, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Reservation, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]model.Reservation, error)
	ListNoShowCandidates(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)
	ListReminderCandidates(ctx context.Context, from, to time.Time) ([]model.Reservation, error)
	ListBillingCandidates(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)
	MarkNotified(ctx context.Context, id, tableID uint64, startsAt time.Time) (bool, error)
	MarkInProgress(ctx context.Context, id, tableID uint64, checkedIn time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id uint64, checkedOut time.Time) (bool, error)
	MarkCanceled(ctx context.Context, id uint64, from model.ReservationStatus) (bool, error)
	DemoteToWaiting(ctx context.Context, id uint64) (bool, error)
	MarkReminderSent(ctx context.Context, id uint64) (bool, error)
}

// TableStore provides the seating pool.
type TableStore interface {
	List(ctx context.Context) ([]model.Table, error)
	GetByID(ctx context.Context, id uint64) (*model.Table, error)
	UpdateCapacity(ctx context.Context, id uint64, capacity int) error
	Delete(ctx context.Context, id uint64) error
	FindFree(ctx context.Context, guests int, start, end time.Time) (*model.Table, error)
	HasPinned(ctx context.Context, id uint64) (bool, error)
}

// HoursStore resolves opening hours: overrides win over weekly rows.
type HoursStore interface {
	GetWeekly(ctx context.Context, weekday int) (*model.OpeningHours, error)
	GetOverride(ctx context.Context, date string) (*model.DateOverride, error)
}

// BillStore provides bill persistence.
type BillStore interface {
	Create(ctx context.Context, b *model.Bill) error
	GetByID(ctx context.Context, id uint64) (*model.Bill, error)
	GetByReservation(ctx context.Context, reservationID uint64) (*model.Bill, error)
	MarkPaid(ctx context.Context, id uint64, at time.Time) (bool, error)
}

// CustomerStore resolves the subscriber flag for billing.
type CustomerStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Customer, error)
}

// ReportStore persists the monthly rollups.
type ReportStore interface {
	Exists(ctx context.Context, month string) (bool, error)
	Insert(ctx context.Context, rep *model.MonthlyReport) error
	Aggregate(ctx context.Context, from, to time.Time) (*model.MonthlyReport, error)
}

// Service wires the stores and the notification gateway together.  One
// instance is shared by the HTTP handlers and the background scheduler;
// the promoteMu serializes waitlist promotion so a request-triggered
// call cannot race a scheduler-triggered one onto the same table.  No
// lock is ever held across store I/O except promoteMu, whose critical
// section is exactly the read-test-pin cycle it exists to serialize.
type Service struct {
	reservations ReservationStore
	tables       TableStore
	hours        HoursStore
	bills        BillStore
	customers    CustomerStore
	reports      ReportStore
	notifier     Notifier

	now       func() time.Time
	promoteMu sync.Mutex
}

// New constructs the booking service.  All stores must be non-nil; a
// nil notifier is replaced by NopNotifier.
func New(res ReservationStore, tables TableStore, hours HoursStore, bills BillStore, customers CustomerStore, reports ReportStore, n Notifier) *Service {
	if res == nil || tables == nil || hours == nil || bills == nil || customers == nil || reports == nil {
		panic("nil store passed to booking.New")
	}
	if n == nil {
		n = NopNotifier{}
	}
	return &Service{
		reservations: res,
		tables:       tables,
		hours:        hours,
		bills:        bills,
		customers:    customers,
		reports:      reports,
		notifier:     n,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Result is the common shape of every operation outcome.  Validation
// and business-rule rejections come back as OK=false with a message fit
// for direct display; data-access failures are returned as ordinary
// errors instead and never reach the customer verbatim.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func failure(msg string) Result { return Result{OK: false, Message: msg} }
func success(msg string) Result { return Result{OK: true, Message: msg} }

// CreateResult carries the payload of a successful creation, or up to
// three alternative times when the requested slot had no space.
type CreateResult struct {
	Result
	ReservationID    uint64      `json:"reservation_id,omitempty"`
	ConfirmationCode string      `json:"confirmation_code,omitempty"`
	Alternatives     []time.Time `json:"alternatives,omitempty"`
}

// JoinResult reports whether a walk-in was seated immediately or queued.
type JoinResult struct {
	Result
	ReservationID    uint64  `json:"reservation_id,omitempty"`
	ConfirmationCode string  `json:"confirmation_code,omitempty"`
	Seated           bool    `json:"seated"`
	TableID          *uint64 `json:"table_id,omitempty"`
}

// ReceiveResult carries the table the party was seated at.
type ReceiveResult struct {
	Result
	TableID uint64 `json:"table_id,omitempty"`
}

// BillResult carries the lazily created (or existing) bill.
type BillResult struct {
	Result
	Bill *model.Bill `json:"bill,omitempty"`
}

// PayResult reports the capacity freed by checkout so the caller knows
// the promoter ran with that hint.
type PayResult struct {
	Result
	FreedCapacity int `json:"freed_capacity,omitempty"`
}
