package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories.  It
// implements ReservationStore, TableStore, BillStore, CustomerStore and
// ReportStore with the same conditional-update and ordering semantics,
// so the engine under test cannot tell the difference.
type memStore struct {
	mu       sync.Mutex
	nextRes  uint64
	nextTab  uint64
	nextBill uint64
	seq      int

	// waitingErr, when set, is returned by ListWaiting to simulate a
	// store failure inside the promoter.
	waitingErr error

	reservations map[uint64]*model.Reservation
	tables       map[uint64]*model.Table
	bills        map[uint64]*model.Bill
	customers    map[uint64]*model.Customer
	reports      map[string]*model.MonthlyReport
}

func newMemStore() *memStore {
	return &memStore{
		reservations: map[uint64]*model.Reservation{},
		tables:       map[uint64]*model.Table{},
		bills:        map[uint64]*model.Bill{},
		customers:    map[uint64]*model.Customer{},
		reports:      map[string]*model.MonthlyReport{},
	}
}

func (m *memStore) addTable(capacity int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTab++
	m.tables[m.nextTab] = &model.Table{ID: m.nextTab, Capacity: capacity}
	return m.nextTab
}

func (m *memStore) addCustomer(subscriber bool) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uint64(len(m.customers) + 1)
	m.customers[id] = &model.Customer{ID: id, Role: model.RoleCustomer, Subscriber: subscriber}
	return id
}

func (m *memStore) get(id uint64) model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.reservations[id]
}

// ----- ReservationStore -----

func (m *memStore) Create(_ context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.reservations {
		if other.ConfirmationCode == r.ConfirmationCode {
			return repository.ErrDuplicateCode
		}
	}
	m.nextRes++
	m.seq++
	r.ID = m.nextRes
	r.CreatedAt = time.Unix(int64(m.seq), 0).UTC()
	cp := *r
	m.reservations[r.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) GetByConfirmationCode(_ context.Context, code string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.ConfirmationCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrReservationNotFound
}

func (m *memStore) ListByCustomer(_ context.Context, customerID uint64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(r *model.Reservation) bool { return r.CustomerID == customerID }), nil
}

func (m *memStore) ListOverlapping(_ context.Context, start, end time.Time, statuses ...model.ReservationStatus) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := map[model.ReservationStatus]bool{}
	for _, s := range statuses {
		set[s] = true
	}
	return m.filter(func(r *model.Reservation) bool {
		return set[r.Status] && r.Overlaps(start, end)
	}), nil
}

func (m *memStore) ListWaiting(_ context.Context, maxGuests int) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waitingErr != nil {
		return nil, m.waitingErr
	}
	out := m.filter(func(r *model.Reservation) bool {
		if r.Status != model.StatusWaiting {
			return false
		}
		return maxGuests <= 0 || r.Guests <= maxGuests
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) ListActiveBetween(_ context.Context, from, to time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(r *model.Reservation) bool {
		return r.Status == model.StatusActive && r.StartsAt != nil &&
			!r.StartsAt.Before(from) && r.StartsAt.Before(to)
	}), nil
}

func (m *memStore) ListUpcoming(_ context.Context, from time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(r *model.Reservation) bool {
		return (r.Status == model.StatusActive || r.Status == model.StatusNotified) &&
			r.StartsAt != nil && !r.StartsAt.Before(from)
	}), nil
}

func (m *memStore) ListNoShowCandidates(_ context.Context, cutoff time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(r *model.Reservation) bool {
		return (r.Status == model.StatusActive || r.Status == model.StatusNotified) &&
			r.StartsAt != nil && !r.StartsAt.After(cutoff)
	}), nil
}

func (m *memStore) ListReminderCandidates(_ context.Context, from, to time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(r *model.Reservation) bool {
		return r.Status == model.StatusActive && !r.ReminderSent && r.StartsAt != nil &&
			!r.StartsAt.Before(from) && r.StartsAt.Before(to)
	}), nil
}

func (m *memStore) ListBillingCandidates(_ context.Context, cutoff time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	billed := map[uint64]bool{}
	for _, b := range m.bills {
		billed[b.ReservationID] = true
	}
	return m.filter(func(r *model.Reservation) bool {
		return r.Status == model.StatusInProgress && !billed[r.ID] &&
			r.StartsAt != nil && !r.StartsAt.After(cutoff)
	}), nil
}

func (m *memStore) MarkNotified(_ context.Context, id, tableID uint64, startsAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != model.StatusWaiting {
		return false, nil
	}
	r.Status = model.StatusNotified
	r.TableID = &tableID
	r.StartsAt = &startsAt
	return true, nil
}

func (m *memStore) MarkInProgress(_ context.Context, id, tableID uint64, checkedIn time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || (r.Status != model.StatusActive && r.Status != model.StatusNotified) {
		return false, nil
	}
	r.Status = model.StatusInProgress
	r.TableID = &tableID
	r.CheckedInAt = &checkedIn
	return true, nil
}

func (m *memStore) MarkCompleted(_ context.Context, id uint64, checkedOut time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != model.StatusInProgress {
		return false, nil
	}
	r.Status = model.StatusCompleted
	r.CheckedOutAt = &checkedOut
	return true, nil
}

func (m *memStore) MarkCanceled(_ context.Context, id uint64, from model.ReservationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = model.StatusCanceled
	r.TableID = nil
	return true, nil
}

func (m *memStore) DemoteToWaiting(_ context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != model.StatusActive {
		return false, nil
	}
	r.Status = model.StatusWaiting
	r.TableID = nil
	r.StartsAt = nil
	return true, nil
}

func (m *memStore) MarkReminderSent(_ context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.ReminderSent {
		return false, nil
	}
	r.ReminderSent = true
	return true, nil
}

func (m *memStore) filter(keep func(*model.Reservation) bool) []model.Reservation {
	out := []model.Reservation{}
	ids := make([]uint64, 0, len(m.reservations))
	for id := range m.reservations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if r := m.reservations[id]; keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

// memTables exposes the table half of memStore as a TableStore.  The
// wrapper exists because the store interfaces share method names.
type memTables struct{ s *memStore }

func (m memTables) List(_ context.Context) ([]model.Table, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]model.Table, 0, len(m.s.tables))
	for _, t := range m.s.tables {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m memTables) GetByID(_ context.Context, id uint64) (*model.Table, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tables[id]
	if !ok {
		return nil, repository.ErrTableNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memTables) UpdateCapacity(_ context.Context, id uint64, capacity int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tables[id]
	if !ok {
		return repository.ErrTableNotFound
	}
	t.Capacity = capacity
	return nil
}

func (m memTables) Delete(_ context.Context, id uint64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.tables[id]; !ok {
		return repository.ErrTableNotFound
	}
	delete(m.s.tables, id)
	return nil
}

func (m memTables) FindFree(_ context.Context, guests int, start, end time.Time) (*model.Table, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	pinned := map[uint64]bool{}
	for _, r := range m.s.reservations {
		if (r.Status == model.StatusNotified || r.Status == model.StatusInProgress) &&
			r.TableID != nil && r.Overlaps(start, end) {
			pinned[*r.TableID] = true
		}
	}
	var best *model.Table
	for _, t := range m.s.tables {
		if t.Capacity < guests || pinned[t.ID] {
			continue
		}
		if best == nil || t.Capacity < best.Capacity ||
			(t.Capacity == best.Capacity && t.ID < best.ID) {
			best = t
		}
	}
	if best == nil {
		return nil, repository.ErrNoFreeTable
	}
	cp := *best
	return &cp, nil
}

func (m memTables) HasPinned(_ context.Context, id uint64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.reservations {
		if (r.Status == model.StatusNotified || r.Status == model.StatusInProgress) &&
			r.TableID != nil && *r.TableID == id {
			return true, nil
		}
	}
	return false, nil
}

// memBills exposes the bill half of memStore as a BillStore.
type memBills struct{ s *memStore }

func (m memBills) Create(_ context.Context, b *model.Bill) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.nextBill++
	b.ID = m.s.nextBill
	cp := *b
	m.s.bills[b.ID] = &cp
	return nil
}

func (m memBills) GetByID(_ context.Context, id uint64) (*model.Bill, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bills[id]
	if !ok {
		return nil, repository.ErrBillNotFound
	}
	cp := *b
	return &cp, nil
}

func (m memBills) GetByReservation(_ context.Context, reservationID uint64) (*model.Bill, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, b := range m.s.bills {
		if b.ReservationID == reservationID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrBillNotFound
}

func (m memBills) MarkPaid(_ context.Context, id uint64, at time.Time) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bills[id]
	if !ok || b.Paid {
		return false, nil
	}
	b.Paid = true
	b.PaidAt = &at
	return true, nil
}

// memCustomers exposes customer lookup as a CustomerStore.
type memCustomers struct{ s *memStore }

func (m memCustomers) GetByID(_ context.Context, id uint64) (*model.Customer, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

// memReports exposes the report half of memStore as a ReportStore.
type memReports struct{ s *memStore }

func (m memReports) Exists(_ context.Context, month string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.reports[month]
	return ok, nil
}

func (m memReports) Insert(_ context.Context, rep *model.MonthlyReport) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *rep
	m.s.reports[rep.Month] = &cp
	return nil
}

func (m memReports) Aggregate(_ context.Context, from, to time.Time) (*model.MonthlyReport, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rep := &model.MonthlyReport{}
	inWindow := map[uint64]bool{}
	for _, r := range m.s.reservations {
		if r.CreatedAt.Before(from) || !r.CreatedAt.Before(to) {
			continue
		}
		inWindow[r.ID] = true
		rep.Reservations++
		switch r.Status {
		case model.StatusCompleted:
			rep.Completed++
			rep.GuestsServed += r.Guests
		case model.StatusCanceled:
			rep.Canceled++
		}
	}
	for _, b := range m.s.bills {
		if b.Paid && inWindow[b.ReservationID] {
			rep.RevenueCents += b.FinalCents
		}
	}
	return rep, nil
}

// fakeHours satisfies HoursStore from two small maps.
type fakeHours struct {
	weekly    map[int]model.OpeningHours
	overrides map[string]model.DateOverride
}

func newFakeHours() *fakeHours {
	return &fakeHours{
		weekly:    map[int]model.OpeningHours{},
		overrides: map[string]model.DateOverride{},
	}
}

func (f *fakeHours) GetWeekly(_ context.Context, weekday int) (*model.OpeningHours, error) {
	h, ok := f.weekly[weekday]
	if !ok {
		return nil, repository.ErrHoursNotFound
	}
	return &h, nil
}

func (f *fakeHours) GetOverride(_ context.Context, date string) (*model.DateOverride, error) {
	o, ok := f.overrides[date]
	if !ok {
		return nil, repository.ErrOverrideNotFound
	}
	return &o, nil
}

// recordingNotifier remembers every event in order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(kind string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind)
	_ = id
}

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == kind {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) ReservationConfirmed(_ context.Context, r *model.Reservation) {
	n.record("confirmed", r.ID)
}
func (n *recordingNotifier) ReservationReminder(_ context.Context, r *model.Reservation) {
	n.record("reminder", r.ID)
}
func (n *recordingNotifier) TableAvailable(_ context.Context, r *model.Reservation) {
	n.record("table_available", r.ID)
}
func (n *recordingNotifier) TableReceived(_ context.Context, r *model.Reservation) {
	n.record("table_received", r.ID)
}
func (n *recordingNotifier) BillIssued(_ context.Context, r *model.Reservation, _ *model.Bill) {
	n.record("bill_issued", r.ID)
}
func (n *recordingNotifier) PaymentReceived(_ context.Context, r *model.Reservation, _ *model.Bill) {
	n.record("payment", r.ID)
}
func (n *recordingNotifier) ReservationCanceled(_ context.Context, r *model.Reservation, reason string) {
	n.record("canceled:"+reason, r.ID)
}
func (n *recordingNotifier) MovedToWaiting(_ context.Context, r *model.Reservation) {
	n.record("moved_to_waiting", r.ID)
}

// testEnv wires a Service against the in-memory fakes with a frozen
// clock.  baseNow is a Monday at noon UTC so the default opening window
// (10:00 until 02:00) is wide open around it.
type testEnv struct {
	store *memStore
	hours *fakeHours
	notes *recordingNotifier
	svc   *Service
	now   time.Time
}

var baseNow = time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC)

func newTestEnv() *testEnv {
	store := newMemStore()
	hours := newFakeHours()
	notes := &recordingNotifier{}
	svc := New(store, memTables{store}, hours, memBills{store}, memCustomers{store}, memReports{store}, notes)
	env := &testEnv{store: store, hours: hours, notes: notes, svc: svc, now: baseNow}
	svc.now = func() time.Time { return env.now }
	return env
}

// slot returns a grid-aligned start the given hours after the frozen now.
func (e *testEnv) slot(hoursAhead int) time.Time {
	return e.now.Add(time.Duration(hoursAhead) * time.Hour)
}
