package httpserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"salon-client/internal/application"
	"salon-client/internal/domain"
)

// fakeBackend is an in-memory salon backend. nearbyErr and servicesErr let
// tests force failures on those searches.
type fakeBackend struct {
	mu        sync.Mutex
	salons    []domain.Salon
	employees map[string][]domain.Employee
	offerings map[string][]domain.EmployeeService
	nearbyErr error
}

var (
	_ application.SalonBackend           = (*fakeBackend)(nil)
	_ application.EmployeeBackend        = (*fakeBackend)(nil)
	_ application.EmployeeServiceBackend = (*fakeBackend)(nil)
	_ application.AuthBackend            = (*fakeBackend)(nil)
)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		salons: []domain.Salon{
			{ID: "s1", Name: "Glow Studio", Location: domain.Location{City: "Pune", State: "Maharashtra"}, Services: []string{"Haircut"}, Rating: 4.6},
			{ID: "s2", Name: "Zen Spa", Location: domain.Location{City: "Goa", State: "Goa"}, Services: []string{"Massage"}, Rating: 3.9},
		},
		employees: map[string][]domain.Employee{"s1": {{ID: "e1", SalonID: "s1", Name: "Asha", Role: "stylist"}}},
		offerings: map[string][]domain.EmployeeService{"e1": {{ID: "o1", EmployeeID: "e1", Name: "Fade", Price: 300, DurationMin: 30}}},
	}
}

func (f *fakeBackend) ListSalons(context.Context, int, int) (domain.SalonPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.SalonPage{Salons: append([]domain.Salon(nil), f.salons...)}, nil
}

func (f *fakeBackend) SearchNearby(context.Context, domain.NearbyQuery) (domain.SalonPage, error) {
	if f.nearbyErr != nil {
		return domain.SalonPage{}, f.nearbyErr
	}
	return domain.SalonPage{Salons: []domain.Salon{f.salons[0]}}, nil
}

func (f *fakeBackend) SearchByLocation(_ context.Context, field application.LocationField, v string) (domain.SalonPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Salon
	for _, s := range f.salons {
		if (field == application.LocationCity && s.Location.City == v) ||
			(field == application.LocationState && s.Location.State == v) {
			out = append(out, s)
		}
	}
	return domain.SalonPage{Salons: out}, nil
}

func (f *fakeBackend) SearchByServices(context.Context, []string) ([]domain.Salon, error) {
	return nil, nil
}

func (f *fakeBackend) GetSalon(_ context.Context, id string) (domain.Salon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.salons {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Salon{}, &domain.HTTPError{Status: 404, Message: "salon not found"}
}

func (f *fakeBackend) GetSalonDetail(ctx context.Context, id string) (domain.SalonDetail, error) {
	s, err := f.GetSalon(ctx, id)
	if err != nil {
		return domain.SalonDetail{}, err
	}
	return domain.SalonDetail{Salon: s, Employees: f.employees[id]}, nil
}

func (f *fakeBackend) CreateSalon(_ context.Context, in domain.SalonInput) (domain.Salon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := domain.Salon{ID: "s3", Name: in.Name, Phone: in.Phone, Location: domain.Location{City: in.City}}
	f.salons = append(f.salons, s)
	return s, nil
}

func (f *fakeBackend) UpdateSalon(_ context.Context, id string, u domain.SalonUpdate) (domain.Salon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.salons {
		if s.ID == id {
			if u.Name != nil {
				f.salons[i].Name = *u.Name
			}
			return f.salons[i], nil
		}
	}
	return domain.Salon{}, &domain.HTTPError{Status: 404}
}

func (f *fakeBackend) DeleteSalon(context.Context, string) error { return nil }

func (f *fakeBackend) ListEmployees(_ context.Context, salonID string) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Employee(nil), f.employees[salonID]...), nil
}

func (f *fakeBackend) GetEmployee(_ context.Context, id string) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.employees {
		for _, e := range list {
			if e.ID == id {
				return e, nil
			}
		}
	}
	return domain.Employee{}, domain.ErrNotFound
}

func (f *fakeBackend) CreateEmployee(_ context.Context, salonID string, in domain.EmployeeInput) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := domain.Employee{ID: "e2", SalonID: salonID, Name: in.Name, Role: in.Role}
	f.employees[salonID] = append(f.employees[salonID], e)
	return e, nil
}

func (f *fakeBackend) UpdateEmployee(_ context.Context, id string, u domain.EmployeeUpdate) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid, list := range f.employees {
		for i, e := range list {
			if e.ID == id {
				if u.Role != nil {
					f.employees[sid][i].Role = *u.Role
				}
				return f.employees[sid][i], nil
			}
		}
	}
	return domain.Employee{}, domain.ErrNotFound
}

func (f *fakeBackend) DeleteEmployee(context.Context, string) error { return nil }

func (f *fakeBackend) ListEmployeeServices(_ context.Context, employeeID string) ([]domain.EmployeeService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.EmployeeService(nil), f.offerings[employeeID]...), nil
}

func (f *fakeBackend) CreateEmployeeService(_ context.Context, employeeID string, in domain.EmployeeServiceInput) (domain.EmployeeService, error) {
	return domain.EmployeeService{ID: "o2", EmployeeID: employeeID, Name: in.Name, Price: in.Price, DurationMin: in.DurationMin}, nil
}

func (f *fakeBackend) UpdateEmployeeService(_ context.Context, id string, in domain.EmployeeServiceInput) (domain.EmployeeService, error) {
	return domain.EmployeeService{ID: id, Name: in.Name, Price: in.Price, DurationMin: in.DurationMin}, nil
}

func (f *fakeBackend) DeleteEmployeeService(context.Context, string) error { return nil }

func (f *fakeBackend) Login(_ context.Context, c domain.Credentials) (domain.Session, error) {
	if c.Password != "secret" {
		return domain.Session{}, &domain.HTTPError{Status: 401, Message: "invalid credentials"}
	}
	return domain.Session{AccessToken: "a1", RefreshToken: "r1", User: domain.UserProfile{ID: "u1", Email: c.Email}}, nil
}

func (f *fakeBackend) Refresh(context.Context, string) (domain.Session, error) {
	return domain.Session{}, errors.New("not used")
}

func noSleep(context.Context, time.Duration) error { return nil }

func newTestServer() (*Server, *fakeBackend) {
	b := newFakeBackend()
	dedupe := application.NewDeduplicator()
	gov := application.NewGovernor(5 * time.Second)
	rec := application.NewReconciler(application.WithReconcileSleep(noSleep))
	state := application.NewMemoryClientState()
	srv := NewServer(Deps{
		List:      application.NewSalonListStore(application.NewSearcher(b, gov, 10*time.Millisecond, nil), dedupe, nil),
		Details:   application.NewSalonDetailStore(b, dedupe, rec, nil),
		Employees: application.NewEmployeeStore(b, dedupe, rec, nil),
		Offerings: application.NewEmployeeServiceStore(b, dedupe, rec, nil),
		Auth:      application.NewAuthStore(b, state, "default", dedupe, nil),
		Favorites: application.NewFavorites(state, "default"),
	})
	return srv, b
}
