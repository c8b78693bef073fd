package domain

import "time"

// Location is the postal and geographic position of a salon.
type Location struct {
	Address string
	City    string
	State   string
	Pincode string
	Lat     float64
	Lng     float64
}

type Salon struct {
	ID          string
	Name        string
	Description string
	Phone       string
	Email       string
	Location    Location
	Services    []string
	Amenities   []string
	Images      []string
	Rating      float64
	OpeningTime string // HH:MM, local to the salon
	ClosingTime string
	WorkingDays []string // "mon".."sun"
	UpdatedAt   time.Time
}

// SalonDetail is the expanded view of a salon with its staff and priced services.
type SalonDetail struct {
	Salon
	Employees []Employee
	Offerings []EmployeeService
	Reviews   int
}

type Pagination struct {
	Page  int
	Limit int
	Total int
	Pages int
}

type SalonPage struct {
	Salons     []Salon
	Pagination *Pagination
}

// Upload is binary image data attached to a mutation.
type Upload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// SalonInput is the payload of a create mutation.
type SalonInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Phone       string   `json:"phone" validate:"required"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Address     string   `json:"address"`
	City        string   `json:"city" validate:"required"`
	State       string   `json:"state"`
	Pincode     string   `json:"pincode" validate:"omitempty,numeric"`
	Services    []string `json:"services"`
	Amenities   []string `json:"amenities"`
	OpeningTime string   `json:"opening_time"`
	ClosingTime string   `json:"closing_time"`
	Image       *Upload  `json:"image,omitempty"`
}

// SalonUpdate is a partial update; nil fields are left untouched by the backend
// and ignored when reconciling.
type SalonUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	OpeningTime *string `json:"opening_time,omitempty"`
	ClosingTime *string `json:"closing_time,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Pincode     *string `json:"pincode,omitempty" validate:"omitempty,numeric"`
	Image       *Upload `json:"image,omitempty"`
}
