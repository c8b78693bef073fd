package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"salon-client/internal/domain"
)

var errBackend = errors.New("backend error")

// fakeSalons is a SalonBackend whose behaviour is set per test through the
// function fields. Unset functions return empty results.
type fakeSalons struct {
	list     func(page, limit int) (domain.SalonPage, error)
	nearby   func(q domain.NearbyQuery) (domain.SalonPage, error)
	location func(f LocationField, v string) (domain.SalonPage, error)
	services func(names []string) ([]domain.Salon, error)
	get      func(id string) (domain.Salon, error)
	detail   func(id string) (domain.SalonDetail, error)
	update   func(id string, u domain.SalonUpdate) (domain.Salon, error)

	mu    sync.Mutex
	calls []string

	listCalls   atomic.Int32
	nearbyCalls atomic.Int32
	getCalls    atomic.Int32
}

func (f *fakeSalons) record(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeSalons) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSalons) ListSalons(_ context.Context, page, limit int) (domain.SalonPage, error) {
	f.listCalls.Add(1)
	f.record("list")
	if f.list == nil {
		return domain.SalonPage{}, nil
	}
	return f.list(page, limit)
}

func (f *fakeSalons) SearchNearby(_ context.Context, q domain.NearbyQuery) (domain.SalonPage, error) {
	f.nearbyCalls.Add(1)
	f.record("nearby")
	if f.nearby == nil {
		return domain.SalonPage{}, nil
	}
	return f.nearby(q)
}

func (f *fakeSalons) SearchByLocation(_ context.Context, field LocationField, v string) (domain.SalonPage, error) {
	f.record("location:" + string(field))
	if f.location == nil {
		return domain.SalonPage{}, nil
	}
	return f.location(field, v)
}

func (f *fakeSalons) SearchByServices(_ context.Context, names []string) ([]domain.Salon, error) {
	f.record("services")
	if f.services == nil {
		return nil, nil
	}
	return f.services(names)
}

func (f *fakeSalons) GetSalon(_ context.Context, id string) (domain.Salon, error) {
	f.getCalls.Add(1)
	f.record("get:" + id)
	if f.get == nil {
		return domain.Salon{}, domain.ErrNotFound
	}
	return f.get(id)
}

func (f *fakeSalons) GetSalonDetail(_ context.Context, id string) (domain.SalonDetail, error) {
	f.record("detail:" + id)
	if f.detail == nil {
		return domain.SalonDetail{}, domain.ErrNotFound
	}
	return f.detail(id)
}

func (f *fakeSalons) CreateSalon(_ context.Context, in domain.SalonInput) (domain.Salon, error) {
	f.record("create")
	return domain.Salon{ID: "new-1", Name: in.Name, Phone: in.Phone, Location: domain.Location{City: in.City}}, nil
}

func (f *fakeSalons) UpdateSalon(_ context.Context, id string, u domain.SalonUpdate) (domain.Salon, error) {
	f.record("update:" + id)
	if f.update == nil {
		return domain.Salon{ID: id}, nil
	}
	return f.update(id, u)
}

func (f *fakeSalons) DeleteSalon(_ context.Context, id string) error {
	f.record("delete:" + id)
	return nil
}

type fakeEmployees struct {
	mu    sync.Mutex
	byID  map[string]domain.Employee
	gets  []domain.Employee // queued GetEmployee answers, the last one repeats
	calls int
}

func (f *fakeEmployees) ListEmployees(_ context.Context, salonID string) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Employee{}
	for _, e := range f.byID {
		if e.SalonID == salonID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) GetEmployee(_ context.Context, id string) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.gets) == 0 {
		e, ok := f.byID[id]
		if !ok {
			return domain.Employee{}, domain.ErrNotFound
		}
		return e, nil
	}
	e := f.gets[0]
	if len(f.gets) > 1 {
		f.gets = f.gets[1:]
	}
	return e, nil
}

func (f *fakeEmployees) CreateEmployee(_ context.Context, salonID string, in domain.EmployeeInput) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := domain.Employee{ID: "emp-" + in.Name, SalonID: salonID, Name: in.Name, Role: in.Role}
	f.byID[e.ID] = e
	return e, nil
}

func (f *fakeEmployees) UpdateEmployee(_ context.Context, id string, u domain.EmployeeUpdate) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.byID[id]
	return e, nil
}

func (f *fakeEmployees) DeleteEmployee(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

type fakeEmployeeServices struct {
	mu    sync.Mutex
	lists [][]domain.EmployeeService // queued list answers, the last one repeats
	calls int
}

func (f *fakeEmployeeServices) ListEmployeeServices(context.Context, string) ([]domain.EmployeeService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.lists) == 0 {
		return nil, nil
	}
	l := f.lists[0]
	if len(f.lists) > 1 {
		f.lists = f.lists[1:]
	}
	return l, nil
}

func (f *fakeEmployeeServices) CreateEmployeeService(_ context.Context, employeeID string, in domain.EmployeeServiceInput) (domain.EmployeeService, error) {
	return domain.EmployeeService{ID: "svc-new", EmployeeID: employeeID, Name: in.Name, Price: in.Price, DurationMin: in.DurationMin}, nil
}

func (f *fakeEmployeeServices) UpdateEmployeeService(_ context.Context, id string, in domain.EmployeeServiceInput) (domain.EmployeeService, error) {
	return domain.EmployeeService{ID: id, Name: "stale"}, nil
}

func (f *fakeEmployeeServices) DeleteEmployeeService(context.Context, string) error { return nil }

type fakeAuth struct {
	login        func(domain.Credentials) (domain.Session, error)
	refresh      func(string) (domain.Session, error)
	refreshCalls atomic.Int32
}

func (f *fakeAuth) Login(_ context.Context, c domain.Credentials) (domain.Session, error) {
	return f.login(c)
}

func (f *fakeAuth) Refresh(_ context.Context, tok string) (domain.Session, error) {
	f.refreshCalls.Add(1)
	return f.refresh(tok)
}

// fakeClock is a settable clock for the governor.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// noSleep records requested reconcile delays without waiting.
type noSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (n *noSleep) Sleep(_ context.Context, d time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delays = append(n.delays, d)
	return nil
}

func salon(id, name, city string, services ...string) domain.Salon {
	return domain.Salon{ID: id, Name: name, Location: domain.Location{City: city}, Services: services}
}

func page(salons ...domain.Salon) domain.SalonPage {
	return domain.SalonPage{Salons: salons}
}

func strPtr(s string) *string { return &s }
