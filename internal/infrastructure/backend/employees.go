package backend

import (
	"context"
	"net/http"
	"net/url"

	"salon-client/internal/domain"
	infraconfig "salon-client/internal/infrastructure/config"
	"salon-client/internal/infrastructure/httpx"
)

type employeeListResp struct {
	Employees []employeeDTO `json:"employees"`
	Data      []employeeDTO `json:"data"`
}

type employeeServiceListResp struct {
	Services []employeeServiceDTO `json:"services"`
	Data     []employeeServiceDTO `json:"data"`
}

func (c *Client) ListEmployees(ctx context.Context, salonID string) ([]domain.Employee, error) {
	var body employeeListResp
	req := httpx.Request{Method: http.MethodGet, Path: "/salons/" + url.PathEscape(salonID) + "/employees", Retries: infraconfig.RetriesEmployees}
	if err := c.HTTP.DoJSON(ctx, req, &body); err != nil {
		return nil, err
	}
	src := body.Employees
	if src == nil {
		src = body.Data
	}
	out := make([]domain.Employee, 0, len(src))
	for _, e := range src {
		emp := e.toDomain()
		if emp.SalonID == "" {
			emp.SalonID = salonID
		}
		out = append(out, emp)
	}
	return out, nil
}

func (c *Client) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	var d employeeDTO
	if err := c.getEntity(ctx, "/employees/"+url.PathEscape(id), infraconfig.RetriesByID, &d, "employee", "data"); err != nil {
		return domain.Employee{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) CreateEmployee(ctx context.Context, salonID string, in domain.EmployeeInput) (domain.Employee, error) {
	var d employeeDTO
	path := "/salons/" + url.PathEscape(salonID) + "/employees"
	fields := employeeInputFields(in)
	var err error
	if in.Image != nil {
		m := &httpx.Multipart{Fields: fields}
		addImage(m, in.Image)
		err = c.mutate(ctx, http.MethodPost, path, nil, m, &d, "employee", "data")
	} else {
		body := map[string]any{"name": in.Name, "phone": in.Phone, "email": in.Email, "role": in.Role, "skills": in.Skills}
		err = c.mutate(ctx, http.MethodPost, path, body, nil, &d, "employee", "data")
	}
	if err != nil {
		return domain.Employee{}, err
	}
	emp := d.toDomain()
	if emp.SalonID == "" {
		emp.SalonID = salonID
	}
	return emp, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, u domain.EmployeeUpdate) (domain.Employee, error) {
	var d employeeDTO
	path := "/employees/" + url.PathEscape(id)
	fields := employeeUpdateFields(u)
	var err error
	if u.Image != nil {
		m := &httpx.Multipart{Fields: fields}
		addImage(m, u.Image)
		err = c.mutate(ctx, http.MethodPut, path, nil, m, &d, "employee", "data")
	} else {
		err = c.mutate(ctx, http.MethodPut, path, fields, nil, &d, "employee", "data")
	}
	if err != nil {
		return domain.Employee{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/employees/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListEmployeeServices(ctx context.Context, employeeID string) ([]domain.EmployeeService, error) {
	var body employeeServiceListResp
	req := httpx.Request{Method: http.MethodGet, Path: "/employees/" + url.PathEscape(employeeID) + "/services", Retries: infraconfig.RetriesEmployees}
	if err := c.HTTP.DoJSON(ctx, req, &body); err != nil {
		return nil, err
	}
	src := body.Services
	if src == nil {
		src = body.Data
	}
	out := make([]domain.EmployeeService, 0, len(src))
	for _, s := range src {
		svc := s.toDomain()
		if svc.EmployeeID == "" {
			svc.EmployeeID = employeeID
		}
		out = append(out, svc)
	}
	return out, nil
}

func (c *Client) CreateEmployeeService(ctx context.Context, employeeID string, in domain.EmployeeServiceInput) (domain.EmployeeService, error) {
	var d employeeServiceDTO
	path := "/employees/" + url.PathEscape(employeeID) + "/services"
	if err := c.mutate(ctx, http.MethodPost, path, employeeServiceJSON(in), nil, &d, "service", "data"); err != nil {
		return domain.EmployeeService{}, err
	}
	svc := d.toDomain()
	if svc.EmployeeID == "" {
		svc.EmployeeID = employeeID
	}
	return svc, nil
}

func (c *Client) UpdateEmployeeService(ctx context.Context, id string, in domain.EmployeeServiceInput) (domain.EmployeeService, error) {
	var d employeeServiceDTO
	if err := c.mutate(ctx, http.MethodPut, "/employee-services/"+url.PathEscape(id), employeeServiceJSON(in), nil, &d, "service", "data"); err != nil {
		return domain.EmployeeService{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) DeleteEmployeeService(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/employee-services/"+url.PathEscape(id), nil, nil, nil)
}
