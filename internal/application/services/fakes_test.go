package services_test

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// memDB is an in-memory stand-in for the database. Rows are stored by value
// so callers never share pointers with the store.
type memDB struct {
	mu            sync.Mutex
	appointments  map[string]entities.Appointment
	doctors       map[string]entities.Doctor
	payments      map[string]entities.Payment
	users         map[string]entities.User
	agents        map[string]entities.Agent
	tokens        map[string]entities.RefreshToken
	notifications map[string]entities.Notification
	reports       map[string]entities.Report
}

func newMemDB() *memDB {
	return &memDB{
		appointments:  map[string]entities.Appointment{},
		doctors:       map[string]entities.Doctor{},
		payments:      map[string]entities.Payment{},
		users:         map[string]entities.User{},
		agents:        map[string]entities.Agent{},
		tokens:        map[string]entities.RefreshToken{},
		notifications: map[string]entities.Notification{},
		reports:       map[string]entities.Report{},
	}
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

type memSnapshot struct {
	appointments map[string]entities.Appointment
	payments     map[string]entities.Payment
	users        map[string]entities.User
	agents       map[string]entities.Agent
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memSnapshot{
		appointments: copyMap(db.appointments),
		payments:     copyMap(db.payments),
		users:        copyMap(db.users),
		agents:       copyMap(db.agents),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.appointments = s.appointments
	db.payments = s.payments
	db.users = s.users
	db.agents = s.agents
}

// memTx rolls the store back when fn fails. Nested calls behave like savepoints.
type memTx struct {
	db *memDB
}

func (t memTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

func inRange(day string, period repositories.DateRange) bool {
	return (period.From == "" || day >= period.From) && (period.To == "" || day <= period.To)
}

// Appointments

type memAppointments struct{ db *memDB }

func (r memAppointments) Create(ctx context.Context, a *entities.Appointment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.appointments {
		if existing.Status.OccupiesSlot() && existing.SameSlot(a) {
			return apperrors.NewConflictError("time slot is already booked for this doctor")
		}
	}
	row := *a
	row.Doctor, row.Payment = nil, nil
	r.db.appointments[a.ID] = row
	return nil
}

func (r memAppointments) GetByID(ctx context.Context, id, agentID string) (*entities.Appointment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.appointments[id]
	if !ok || (agentID != "" && row.AgentID != agentID) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	return &row, nil
}

func (r memAppointments) GetForUpdate(ctx context.Context, id, agentID string) (*entities.Appointment, error) {
	return r.GetByID(ctx, id, agentID)
}

func (r memAppointments) Update(ctx context.Context, a *entities.Appointment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.appointments[a.ID]; !ok {
		return apperrors.NewNotFoundError("appointment not found")
	}
	for id, existing := range r.db.appointments {
		if id != a.ID && a.Status.OccupiesSlot() && existing.Status.OccupiesSlot() && existing.SameSlot(a) {
			return apperrors.NewConflictError("time slot is already booked for this doctor")
		}
	}
	row := *a
	row.Doctor, row.Payment = nil, nil
	r.db.appointments[a.ID] = row
	return nil
}

func (r memAppointments) ExistsConflict(ctx context.Context, doctorID, date, timeSlot, excludeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, a := range r.db.appointments {
		if id != excludeID && a.Status.OccupiesSlot() && a.DoctorID == doctorID && a.Date == date && a.TimeSlot == timeSlot {
			return true, nil
		}
	}
	return false, nil
}

func (r memAppointments) all(keep func(entities.Appointment) bool) []*entities.Appointment {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*entities.Appointment{}
	for _, a := range r.db.appointments {
		if keep(a) {
			row := a
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out
}

func (r memAppointments) List(ctx context.Context, f repositories.AppointmentFilter) ([]*entities.Appointment, int, error) {
	items := r.all(func(a entities.Appointment) bool {
		return (f.AgentID == "" || a.AgentID == f.AgentID) &&
			(f.DoctorID == "" || a.DoctorID == f.DoctorID) &&
			(f.Status == "" || a.Status == f.Status) &&
			inRange(a.Date, repositories.DateRange{From: f.DateFrom, To: f.DateTo}) &&
			(f.Search == "" || strings.Contains(strings.ToLower(a.PatientName), strings.ToLower(f.Search)))
	})
	return items, len(items), nil
}

func (r memAppointments) ListUnpaid(ctx context.Context, agentID string) ([]*entities.Appointment, error) {
	return r.all(func(a entities.Appointment) bool {
		return (agentID == "" || a.AgentID == agentID) && !a.HasPayment() && a.Status != entities.AppointmentStatusCancelled
	}), nil
}

func (r memAppointments) ListUpcoming(ctx context.Context, agentID, fromDate string, limit int) ([]*entities.Appointment, error) {
	items := r.all(func(a entities.Appointment) bool {
		return (agentID == "" || a.AgentID == agentID) && a.Status.OccupiesSlot() && a.Date >= fromDate
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r memAppointments) HeldSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	slots := []string{}
	for _, a := range r.all(func(a entities.Appointment) bool {
		return a.DoctorID == doctorID && a.Date == date && a.Status.OccupiesSlot()
	}) {
		slots = append(slots, a.TimeSlot)
	}
	return slots, nil
}

func (r memAppointments) CountByStatus(ctx context.Context, agentID string, period repositories.DateRange) ([]entities.StatusCount, error) {
	byStatus := map[entities.AppointmentStatus]*entities.StatusCount{}
	for _, a := range r.all(func(a entities.Appointment) bool {
		return (agentID == "" || a.AgentID == agentID) && inRange(a.CreatedAt.Format(entities.DateLayout), period)
	}) {
		row, ok := byStatus[a.Status]
		if !ok {
			row = &entities.StatusCount{Status: a.Status}
			byStatus[a.Status] = row
		}
		row.Count++
		row.Amount += a.Amount
	}
	out := []entities.StatusCount{}
	for _, row := range byStatus {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (r memAppointments) CountByDate(ctx context.Context, agentID string, period repositories.DateRange) ([]entities.DailyCount, error) {
	byDate := map[string]*entities.DailyCount{}
	for _, a := range r.all(func(a entities.Appointment) bool {
		return (agentID == "" || a.AgentID == agentID) && inRange(a.CreatedAt.Format(entities.DateLayout), period)
	}) {
		row, ok := byDate[a.Date]
		if !ok {
			row = &entities.DailyCount{Date: a.Date}
			byDate[a.Date] = row
		}
		row.Count++
		row.Amount += a.Amount
	}
	out := []entities.DailyCount{}
	for _, row := range byDate {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Doctors

type memDoctors struct{ db *memDB }

func (r memDoctors) Create(ctx context.Context, d *entities.Doctor) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.doctors[d.ID] = *d
	return nil
}

func (r memDoctors) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.doctors[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	return &row, nil
}

func (r memDoctors) Update(ctx context.Context, d *entities.Doctor) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.doctors[d.ID] = *d
	return nil
}

func (r memDoctors) List(ctx context.Context, f repositories.DoctorFilter) ([]*entities.Doctor, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*entities.Doctor{}
	for _, d := range r.db.doctors {
		if (d.IsActive || f.IncludeInactive) && (f.Specialization == "" || d.Specialization == f.Specialization) {
			row := d
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (r memDoctors) Specializations(ctx context.Context) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, d := range r.db.doctors {
		if d.IsActive && !seen[d.Specialization] {
			seen[d.Specialization] = true
			out = append(out, d.Specialization)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Payments

type memPayments struct{ db *memDB }

func (r memPayments) Create(ctx context.Context, p *entities.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.payments {
		if existing.AppointmentID == p.AppointmentID {
			return apperrors.NewConflictError("appointment already has a payment")
		}
	}
	r.db.payments[p.ID] = *p
	return nil
}

func (r memPayments) GetByID(ctx context.Context, id, agentID string) (*entities.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.payments[id]
	if !ok || (agentID != "" && row.AgentID != agentID) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment with id %s not found", id))
	}
	return &row, nil
}

func (r memPayments) GetByAppointmentID(ctx context.Context, appointmentID string) (*entities.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.payments {
		if p.AppointmentID == appointmentID {
			row := p
			return &row, nil
		}
	}
	return nil, apperrors.NewNotFoundError("payment not found")
}

func (r memPayments) forAgent(agentID string) []entities.Payment {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []entities.Payment{}
	for _, p := range r.db.payments {
		if agentID == "" || p.AgentID == agentID {
			out = append(out, p)
		}
	}
	return out
}

func (r memPayments) List(ctx context.Context, f repositories.PaymentFilter) ([]*entities.Payment, int, error) {
	out := []*entities.Payment{}
	for _, p := range r.forAgent(f.AgentID) {
		if f.Status == "" || p.Status == f.Status {
			row := p
			out = append(out, &row)
		}
	}
	return out, len(out), nil
}

func (r memPayments) Summary(ctx context.Context, agentID string, period repositories.DateRange) (*entities.PaymentSummary, error) {
	summary := &entities.PaymentSummary{ByMethod: map[entities.PaymentMethod]float64{}}
	for _, p := range r.forAgent(agentID) {
		if !inRange(p.CreatedAt.Format(entities.DateLayout), period) {
			continue
		}
		switch p.Status {
		case entities.PaymentStatusPaid:
			summary.PaidCount++
			summary.TotalPaid += p.Amount
			summary.ByMethod[p.Method] += p.Amount
		case entities.PaymentStatusFailed:
			summary.FailedCount++
		}
	}
	return summary, nil
}

func (r memPayments) SumPaid(ctx context.Context, agentID string, period repositories.DateRange) (float64, error) {
	var total float64
	for _, p := range r.forAgent(agentID) {
		if p.Status == entities.PaymentStatusPaid && p.PaidAt != nil && inRange(p.PaidAt.Format(entities.DateLayout), period) {
			total += p.Amount
		}
	}
	return total, nil
}

func (db *memDB) paymentCount(appointmentID string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, p := range db.payments {
		if p.AppointmentID == appointmentID {
			n++
		}
	}
	return n
}

// Users, agents and refresh tokens

type memUsers struct{ db *memDB }

func (r memUsers) Create(ctx context.Context, u *entities.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return apperrors.NewConflictError("email is already registered")
		}
	}
	r.db.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return &row, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			row := u
			return &row, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (r memUsers) Update(ctx context.Context, u *entities.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users[u.ID] = *u
	return nil
}

type memAgents struct{ db *memDB }

func (r memAgents) Create(ctx context.Context, a *entities.Agent) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row := *a
	row.Email = ""
	r.db.agents[a.ID] = row
	return nil
}

func (r memAgents) GetByID(ctx context.Context, id string) (*entities.Agent, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.agents[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("agent not found")
	}
	return &row, nil
}

func (r memAgents) GetByUserID(ctx context.Context, userID string) (*entities.Agent, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.agents {
		if a.UserID == userID {
			row := a
			return &row, nil
		}
	}
	return nil, apperrors.NewNotFoundError("agent not found")
}

func (r memAgents) Update(ctx context.Context, a *entities.Agent) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row := *a
	row.Email = ""
	r.db.agents[a.ID] = row
	return nil
}

func (r memAgents) List(ctx context.Context, f repositories.AgentFilter) ([]*entities.Agent, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*entities.Agent{}
	for _, a := range r.db.agents {
		if f.Verified != nil && a.IsVerified != *f.Verified {
			continue
		}
		row := a
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return out, len(out), nil
}

type memTokens struct{ db *memDB }

func (r memTokens) Create(ctx context.Context, t *entities.RefreshToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.tokens[t.ID] = *t
	return nil
}

func (r memTokens) GetByHash(ctx context.Context, hash string) (*entities.RefreshToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.tokens {
		if t.TokenHash == hash {
			row := t
			return &row, nil
		}
	}
	return nil, apperrors.NewNotFoundError("refresh token not found")
}

func (r memTokens) Revoke(ctx context.Context, id string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.tokens[id]
	if !ok {
		return apperrors.NewNotFoundError("refresh token not found")
	}
	row.RevokedAt = &at
	r.db.tokens[id] = row
	return nil
}

// Notifications and reports

type memNotifications struct{ db *memDB }

func (r memNotifications) Create(ctx context.Context, n *entities.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.notifications[n.ID] = *n
	return nil
}

func (r memNotifications) forUser(userID string, unreadOnly bool) []*entities.Notification {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*entities.Notification{}
	for _, n := range r.db.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			row := n
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func (r memNotifications) List(ctx context.Context, userID string, unreadOnly bool, page pagination.Params) ([]*entities.Notification, int, error) {
	items := r.forUser(userID, unreadOnly)
	return items, len(items), nil
}

func (r memNotifications) MarkRead(ctx context.Context, id, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.notifications[id]
	if !ok || row.UserID != userID {
		return apperrors.NewNotFoundError("notification not found")
	}
	row.IsRead = true
	r.db.notifications[id] = row
	return nil
}

func (r memNotifications) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, row := range r.db.notifications {
		if row.UserID == userID && !row.IsRead {
			row.IsRead = true
			r.db.notifications[id] = row
			n++
		}
	}
	return n, nil
}

func (r memNotifications) UnreadCount(ctx context.Context, userID string) (int, error) {
	return len(r.forUser(userID, true)), nil
}

type memReports struct{ db *memDB }

func (r memReports) Create(ctx context.Context, rep *entities.Report) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.reports[rep.ID] = *rep
	return nil
}

func (r memReports) GetByID(ctx context.Context, id, agentID string) (*entities.Report, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.reports[id]
	if !ok || (agentID != "" && (row.AgentID == nil || *row.AgentID != agentID)) {
		return nil, apperrors.NewNotFoundError("report not found")
	}
	return &row, nil
}

func (r memReports) List(ctx context.Context, agentID string, page pagination.Params) ([]*entities.Report, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*entities.Report{}
	for _, rep := range r.db.reports {
		if agentID == "" || (rep.AgentID != nil && *rep.AgentID == agentID) {
			row := rep
			out = append(out, &row)
		}
	}
	return out, len(out), nil
}

// memCache implements providers.CacheProvider with glob matching like Redis SCAN.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *memCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// recordingNotifier captures the events a service emits
type recordingNotifier struct {
	mu     sync.Mutex
	events []*entities.AppointmentEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, event *entities.AppointmentEvent, appointment *entities.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []entities.AppointmentEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entities.AppointmentEventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.EventType)
	}
	return out
}

// MockEmailSender is a testify mock of providers.EmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg *providers.EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockEventBus is a testify mock of providers.EventBus
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.AppointmentEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fixture wires every service against one memDB
type fixture struct {
	db       *memDB
	tx       memTx
	appts    memAppointments
	doctors  memDoctors
	payments memPayments
	notifier *recordingNotifier
}

func newFixture() *fixture {
	db := newMemDB()
	return &fixture{
		db:       db,
		tx:       memTx{db: db},
		appts:    memAppointments{db: db},
		doctors:  memDoctors{db: db},
		payments: memPayments{db: db},
		notifier: &recordingNotifier{},
	}
}

func (f *fixture) addDoctor(id string, fee float64, active bool, days ...entities.AvailabilityDay) *entities.Doctor {
	doctor := &entities.Doctor{
		ID:              id,
		Name:            "Dr. " + id,
		Email:           id + "@hospital.test",
		Specialization:  "Cardiology",
		Hospital:        "City Hospital",
		ConsultationFee: fee,
		Availability:    entities.AvailabilityCalendar(days),
		IsActive:        active,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	_ = f.doctors.Create(context.Background(), doctor)
	return doctor
}

func (f *fixture) appointmentCount() int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.appointments)
}

func paramsFor(page, limit int) pagination.Params {
	return pagination.Params{Page: page, Limit: limit, Offset: (page - 1) * limit, SortBy: "created_at", SortDir: pagination.SortDesc}
}
