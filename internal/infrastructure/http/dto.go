package httpserver

import (
	"time"

	"salon-client/internal/application"
	"salon-client/internal/domain"
)

type locationJSON struct {
	Address string  `json:"address,omitempty"`
	City    string  `json:"city,omitempty"`
	State   string  `json:"state,omitempty"`
	Pincode string  `json:"pincode,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

type salonJSON struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Email       string       `json:"email,omitempty"`
	Location    locationJSON `json:"location"`
	Services    []string     `json:"services"`
	Amenities   []string     `json:"amenities"`
	Images      []string     `json:"images,omitempty"`
	Rating      float64      `json:"rating"`
	OpeningTime string       `json:"opening_time,omitempty"`
	ClosingTime string       `json:"closing_time,omitempty"`
	WorkingDays []string     `json:"working_days,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

func toSalonJSON(s domain.Salon) salonJSON {
	out := salonJSON{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Phone:       s.Phone,
		Email:       s.Email,
		Location:    locationJSON(s.Location),
		Services:    nonNil(s.Services),
		Amenities:   nonNil(s.Amenities),
		Images:      s.Images,
		Rating:      s.Rating,
		OpeningTime: s.OpeningTime,
		ClosingTime: s.ClosingTime,
		WorkingDays: s.WorkingDays,
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

func toSalonsJSON(src []domain.Salon) []salonJSON {
	out := make([]salonJSON, 0, len(src))
	for _, s := range src {
		out = append(out, toSalonJSON(s))
	}
	return out
}

type employeeJSON struct {
	ID       string   `json:"id"`
	SalonID  string   `json:"salon_id,omitempty"`
	Name     string   `json:"name"`
	Phone    string   `json:"phone,omitempty"`
	Email    string   `json:"email,omitempty"`
	Role     string   `json:"role,omitempty"`
	Skills   []string `json:"skills"`
	Image    string   `json:"image,omitempty"`
	IsActive bool     `json:"is_active"`
}

func toEmployeeJSON(e domain.Employee) employeeJSON {
	return employeeJSON{
		ID: e.ID, SalonID: e.SalonID, Name: e.Name, Phone: e.Phone, Email: e.Email,
		Role: e.Role, Skills: nonNil(e.Skills), Image: e.Image, IsActive: e.IsActive,
	}
}

func toEmployeesJSON(src []domain.Employee) []employeeJSON {
	out := make([]employeeJSON, 0, len(src))
	for _, e := range src {
		out = append(out, toEmployeeJSON(e))
	}
	return out
}

type offeringJSON struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration_min"`
}

func toOfferingJSON(s domain.EmployeeService) offeringJSON {
	return offeringJSON(s)
}

func toOfferingsJSON(src []domain.EmployeeService) []offeringJSON {
	out := make([]offeringJSON, 0, len(src))
	for _, s := range src {
		out = append(out, toOfferingJSON(s))
	}
	return out
}

type detailJSON struct {
	salonJSON
	Employees []employeeJSON `json:"employees"`
	Offerings []offeringJSON `json:"employee_services"`
	Reviews   int            `json:"reviews_count"`
}

func toDetailJSON(d domain.SalonDetail) detailJSON {
	return detailJSON{
		salonJSON: toSalonJSON(d.Salon),
		Employees: toEmployeesJSON(d.Employees),
		Offerings: toOfferingsJSON(d.Offerings),
		Reviews:   d.Reviews,
	}
}

type paginationJSON struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type filterJSON struct {
	Services  []string   `json:"services,omitempty"`
	Amenities []string   `json:"amenities,omitempty"`
	City      string     `json:"city,omitempty"`
	State     string     `json:"state,omitempty"`
	MinRating float64    `json:"min_rating,omitempty"`
	OpenAt    *time.Time `json:"open_at,omitempty"`
}

func (f filterJSON) toDomain() domain.FilterState {
	out := domain.FilterState{
		Services:  f.Services,
		Amenities: f.Amenities,
		City:      f.City,
		State:     f.State,
		MinRating: f.MinRating,
	}
	if f.OpenAt != nil {
		out.OpenAt = *f.OpenAt
	}
	return out
}

func fromFilter(f domain.FilterState) filterJSON {
	out := filterJSON{Services: f.Services, Amenities: f.Amenities, City: f.City, State: f.State, MinRating: f.MinRating}
	if !f.OpenAt.IsZero() {
		t := f.OpenAt
		out.OpenAt = &t
	}
	return out
}

type snapshotJSON struct {
	Salons     []salonJSON     `json:"salons"`
	Total      int             `json:"total_results"`
	Filter     filterJSON      `json:"filter"`
	Pagination *paginationJSON `json:"pagination,omitempty"`
	Source     string          `json:"source,omitempty"`
	Loading    bool            `json:"loading"`
	Deferred   bool            `json:"deferred"`
	Error      string          `json:"error,omitempty"`
}

func toSnapshotJSON(s application.SalonListSnapshot) snapshotJSON {
	out := snapshotJSON{
		Salons:   toSalonsJSON(s.Salons),
		Total:    len(s.Results),
		Filter:   fromFilter(s.Filter),
		Source:   string(s.Source),
		Loading:  s.Loading,
		Deferred: s.Deferred,
	}
	if s.Pagination != nil {
		p := paginationJSON(*s.Pagination)
		out.Pagination = &p
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return out
}

type sessionJSON struct {
	Authenticated bool                `json:"authenticated"`
	User          *domain.UserProfile `json:"user,omitempty"`
}

func toSessionJSON(s domain.Session) sessionJSON {
	if !s.Valid() {
		return sessionJSON{}
	}
	u := s.User
	return sessionJSON{Authenticated: true, User: &u}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
