package application

import (
	"context"

	"salon-client/internal/domain"
)

// LocationField selects which location attribute a text search targets.
type LocationField string

const (
	LocationCity    LocationField = "city"
	LocationState   LocationField = "state"
	LocationPincode LocationField = "pincode"
)

type SalonBackend interface {
	ListSalons(ctx context.Context, page, limit int) (domain.SalonPage, error)
	SearchNearby(ctx context.Context, q domain.NearbyQuery) (domain.SalonPage, error)
	SearchByLocation(ctx context.Context, field LocationField, value string) (domain.SalonPage, error)
	SearchByServices(ctx context.Context, services []string) ([]domain.Salon, error)
	GetSalon(ctx context.Context, id string) (domain.Salon, error)
	GetSalonDetail(ctx context.Context, id string) (domain.SalonDetail, error)
	CreateSalon(ctx context.Context, in domain.SalonInput) (domain.Salon, error)
	UpdateSalon(ctx context.Context, id string, u domain.SalonUpdate) (domain.Salon, error)
	DeleteSalon(ctx context.Context, id string) error
}

type EmployeeBackend interface {
	ListEmployees(ctx context.Context, salonID string) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, id string) (domain.Employee, error)
	CreateEmployee(ctx context.Context, salonID string, in domain.EmployeeInput) (domain.Employee, error)
	UpdateEmployee(ctx context.Context, id string, u domain.EmployeeUpdate) (domain.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type EmployeeServiceBackend interface {
	ListEmployeeServices(ctx context.Context, employeeID string) ([]domain.EmployeeService, error)
	CreateEmployeeService(ctx context.Context, employeeID string, in domain.EmployeeServiceInput) (domain.EmployeeService, error)
	UpdateEmployeeService(ctx context.Context, id string, in domain.EmployeeServiceInput) (domain.EmployeeService, error)
	DeleteEmployeeService(ctx context.Context, id string) error
}

type AuthBackend interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (domain.Session, error)
}

// AuthProvider is the token collaborator the transport calls.
type AuthProvider interface {
	AccessToken(ctx context.Context) string
	RefreshAccessToken(ctx context.Context) (bool, error)
}

// ClientState persists favorites and the auth session per owner key.
// LoadSession returns domain.ErrNotFound when nothing is stored.
type ClientState interface {
	LoadFavorites(ctx context.Context, owner string) ([]string, error)
	SaveFavorites(ctx context.Context, owner string, ids []string) error
	LoadSession(ctx context.Context, owner string) (domain.Session, error)
	SaveSession(ctx context.Context, owner string, s domain.Session) error
	ClearSession(ctx context.Context, owner string) error
}
