package domain

type Employee struct {
	ID       string
	SalonID  string
	Name     string
	Phone    string
	Email    string
	Role     string
	Skills   []string
	Image    string
	IsActive bool
}

type EmployeeInput struct {
	Name   string   `json:"name" validate:"required"`
	Phone  string   `json:"phone"`
	Email  string   `json:"email" validate:"omitempty,email"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
	Image  *Upload  `json:"image,omitempty"`
}

type EmployeeUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Role  *string `json:"role,omitempty"`
	Image *Upload `json:"image,omitempty"`
}

// EmployeeService is a priced service offered by one employee.
type EmployeeService struct {
	ID          string
	EmployeeID  string
	Name        string
	Description string
	Price       float64
	DurationMin int
}

type EmployeeServiceInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	DurationMin int     `json:"duration_min" validate:"gte=0"`
}
