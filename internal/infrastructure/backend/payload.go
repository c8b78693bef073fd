package backend

import (
	"strings"

	"salon-client/internal/domain"
	"salon-client/internal/infrastructure/httpx"
)

func salonInputJSON(in domain.SalonInput) map[string]any {
	return map[string]any{
		"name":        in.Name,
		"description": in.Description,
		"phone":       in.Phone,
		"email":       in.Email,
		"services":    in.Services,
		"amenities":   in.Amenities,
		"openingTime": in.OpeningTime,
		"closingTime": in.ClosingTime,
		"location": map[string]any{
			"address": in.Address,
			"city":    in.City,
			"state":   in.State,
			"pincode": in.Pincode,
		},
	}
}

func salonInputForm(in domain.SalonInput) *httpx.Multipart {
	m := &httpx.Multipart{Fields: map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"phone":       in.Phone,
		"email":       in.Email,
		"services":    strings.Join(in.Services, ","),
		"amenities":   strings.Join(in.Amenities, ","),
		"openingTime": in.OpeningTime,
		"closingTime": in.ClosingTime,
		"address":     in.Address,
		"city":        in.City,
		"state":       in.State,
		"pincode":     in.Pincode,
	}}
	addImage(m, in.Image)
	return m
}

func salonUpdateFields(u domain.SalonUpdate) (flat, loc map[string]string) {
	flat, loc = map[string]string{}, map[string]string{}
	set := func(dst map[string]string, k string, v *string) {
		if v != nil {
			dst[k] = *v
		}
	}
	set(flat, "name", u.Name)
	set(flat, "description", u.Description)
	set(flat, "phone", u.Phone)
	set(flat, "email", u.Email)
	set(flat, "openingTime", u.OpeningTime)
	set(flat, "closingTime", u.ClosingTime)
	set(loc, "address", u.Address)
	set(loc, "city", u.City)
	set(loc, "state", u.State)
	set(loc, "pincode", u.Pincode)
	return flat, loc
}

func salonUpdateJSON(u domain.SalonUpdate) map[string]any {
	flat, loc := salonUpdateFields(u)
	out := make(map[string]any, len(flat)+1)
	for k, v := range flat {
		out[k] = v
	}
	if len(loc) > 0 {
		out["location"] = loc
	}
	return out
}

func salonUpdateForm(u domain.SalonUpdate) *httpx.Multipart {
	flat, loc := salonUpdateFields(u)
	for k, v := range loc {
		flat[k] = v
	}
	m := &httpx.Multipart{Fields: flat}
	addImage(m, u.Image)
	return m
}

func employeeInputFields(in domain.EmployeeInput) map[string]string {
	return map[string]string{
		"name":   in.Name,
		"phone":  in.Phone,
		"email":  in.Email,
		"role":   in.Role,
		"skills": strings.Join(in.Skills, ","),
	}
}

func employeeUpdateFields(u domain.EmployeeUpdate) map[string]string {
	out := map[string]string{}
	for k, v := range map[string]*string{"name": u.Name, "phone": u.Phone, "email": u.Email, "role": u.Role} {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

func employeeServiceJSON(in domain.EmployeeServiceInput) map[string]any {
	return map[string]any{
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price,
		"duration":    in.DurationMin,
	}
}

func addImage(m *httpx.Multipart, up *domain.Upload) {
	if up == nil {
		return
	}
	m.Files = append(m.Files, httpx.FilePart{
		Field:       "image",
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Content:     up.Content,
	})
}
