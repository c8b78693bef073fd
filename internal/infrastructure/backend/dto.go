package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"salon-client/internal/domain"
)

// flexList accepts an array of strings, an array of {name} objects, or a
// comma separated string.
type flexList []string

func (l *flexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = splitComma(s)
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		var named struct {
			Name  string `json:"name"`
			Title string `json:"title"`
			URL   string `json:"url"`
		}
		if err := json.Unmarshal(it, &named); err != nil {
			continue
		}
		for _, v := range []string{named.Name, named.Title, named.URL} {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
				break
			}
		}
	}
	*l = out
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// coordinates accepts [lng, lat], {lat, lng}, {latitude, longitude} or a
// GeoJSON point.
type coordinates struct {
	Lat, Lng float64
}

func (c *coordinates) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(b, &pair); err != nil || len(pair) < 2 {
			return nil
		}
		c.Lng, c.Lat = pair[0], pair[1]
		return nil
	}
	var obj struct {
		Lat         *flexFloat      `json:"lat"`
		Lng         *flexFloat      `json:"lng"`
		Latitude    *flexFloat      `json:"latitude"`
		Longitude   *flexFloat      `json:"longitude"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	if len(obj.Coordinates) > 0 {
		return c.UnmarshalJSON(obj.Coordinates)
	}
	switch {
	case obj.Lat != nil && obj.Lng != nil:
		c.Lat, c.Lng = float64(*obj.Lat), float64(*obj.Lng)
	case obj.Latitude != nil && obj.Longitude != nil:
		c.Lat, c.Lng = float64(*obj.Latitude), float64(*obj.Longitude)
	}
	return nil
}

type locationDTO struct {
	Address     string      `json:"address"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	Pincode     flexString  `json:"pincode"`
	Coordinates coordinates `json:"coordinates"`
	Lat         *flexFloat  `json:"lat"`
	Lng         *flexFloat  `json:"lng"`
}

type salonDTO struct {
	ID          string       `json:"id"`
	OID         string       `json:"_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Phone       flexString   `json:"phone"`
	Email       string       `json:"email"`
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Pincode     flexString   `json:"pincode"`
	Location    *locationDTO `json:"location"`
	Services    flexList     `json:"services"`
	Amenities   flexList     `json:"amenities"`
	Images      flexList     `json:"images"`
	Image       string       `json:"image"`
	Rating      flexFloat    `json:"rating"`
	OpeningTime string       `json:"openingTime"`
	ClosingTime string       `json:"closingTime"`
	WorkingDays flexList     `json:"workingDays"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

func (d salonDTO) toDomain() domain.Salon {
	loc := domain.Location{Address: d.Address, City: d.City, State: d.State, Pincode: string(d.Pincode)}
	if d.Location != nil {
		loc.Address = firstNonEmpty(d.Location.Address, loc.Address)
		loc.City = firstNonEmpty(d.Location.City, loc.City)
		loc.State = firstNonEmpty(d.Location.State, loc.State)
		loc.Pincode = firstNonEmpty(string(d.Location.Pincode), loc.Pincode)
		loc.Lat, loc.Lng = d.Location.Coordinates.Lat, d.Location.Coordinates.Lng
		if d.Location.Lat != nil && d.Location.Lng != nil {
			loc.Lat, loc.Lng = float64(*d.Location.Lat), float64(*d.Location.Lng)
		}
	}
	images := []string(d.Images)
	if len(images) == 0 && d.Image != "" {
		images = []string{d.Image}
	}
	return domain.Salon{
		ID:          firstNonEmpty(d.ID, d.OID),
		Name:        d.Name,
		Description: d.Description,
		Phone:       string(d.Phone),
		Email:       d.Email,
		Location:    loc,
		Services:    []string(d.Services),
		Amenities:   []string(d.Amenities),
		Images:      images,
		Rating:      float64(d.Rating),
		OpeningTime: d.OpeningTime,
		ClosingTime: d.ClosingTime,
		WorkingDays: []string(d.WorkingDays),
		UpdatedAt:   d.UpdatedAt,
	}
}

type salonDetailDTO struct {
	salonDTO
	Employees    []employeeDTO        `json:"employees"`
	Offerings    []employeeServiceDTO `json:"employeeServices"`
	ReviewsCount int                  `json:"reviewsCount"`
}

func (d salonDetailDTO) toDomain() domain.SalonDetail {
	out := domain.SalonDetail{Salon: d.salonDTO.toDomain(), Reviews: d.ReviewsCount}
	for _, e := range d.Employees {
		out.Employees = append(out.Employees, e.toDomain())
	}
	for _, s := range d.Offerings {
		out.Offerings = append(out.Offerings, s.toDomain())
	}
	return out
}

type employeeDTO struct {
	ID       string     `json:"id"`
	OID      string     `json:"_id"`
	Salon    flexRef    `json:"salon"`
	SalonID  string     `json:"salonId"`
	Name     string     `json:"name"`
	Phone    flexString `json:"phone"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
	Skills   flexList   `json:"skills"`
	Image    string     `json:"image"`
	IsActive *bool      `json:"isActive"`
}

func (d employeeDTO) toDomain() domain.Employee {
	active := true
	if d.IsActive != nil {
		active = *d.IsActive
	}
	return domain.Employee{
		ID:       firstNonEmpty(d.ID, d.OID),
		SalonID:  firstNonEmpty(d.SalonID, string(d.Salon)),
		Name:     d.Name,
		Phone:    string(d.Phone),
		Email:    d.Email,
		Role:     d.Role,
		Skills:   []string(d.Skills),
		Image:    d.Image,
		IsActive: active,
	}
}

type employeeServiceDTO struct {
	ID          string    `json:"id"`
	OID         string    `json:"_id"`
	Employee    flexRef   `json:"employee"`
	EmployeeID  string    `json:"employeeId"`
	Name        string    `json:"name"`
	ServiceName string    `json:"serviceName"`
	Description string    `json:"description"`
	Price       flexFloat `json:"price"`
	Duration    flexFloat `json:"duration"`
}

func (d employeeServiceDTO) toDomain() domain.EmployeeService {
	return domain.EmployeeService{
		ID:          firstNonEmpty(d.ID, d.OID),
		EmployeeID:  firstNonEmpty(d.EmployeeID, string(d.Employee)),
		Name:        firstNonEmpty(d.Name, d.ServiceName),
		Description: d.Description,
		Price:       float64(d.Price),
		DurationMin: int(d.Duration),
	}
}

// flexRef accepts a bare id string or a populated object carrying _id/id.
type flexRef string

func (r *flexRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = flexRef(s)
		return nil
	}
	var obj struct {
		ID  string `json:"id"`
		OID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	*r = flexRef(firstNonEmpty(obj.ID, obj.OID))
	return nil
}

type paginationDTO struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type salonListResp struct {
	Status     string         `json:"status"`
	Salons     []salonDTO     `json:"salons"`
	Data       []salonDTO     `json:"data"`
	Pagination *paginationDTO `json:"pagination"`
}

func (r salonListResp) toDomain() domain.SalonPage {
	src := r.Salons
	if src == nil {
		src = r.Data
	}
	out := domain.SalonPage{Salons: make([]domain.Salon, 0, len(src))}
	for _, s := range src {
		out.Salons = append(out.Salons, s.toDomain())
	}
	if r.Pagination != nil {
		out.Pagination = &domain.Pagination{
			Page: r.Pagination.Page, Limit: r.Pagination.Limit,
			Total: r.Pagination.Total, Pages: r.Pagination.Pages,
		}
	}
	return out
}

// unwrap returns the first present envelope key, or the raw body when the
// entity was sent bare.
func unwrap(raw json.RawMessage, keys ...string) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	for _, k := range keys {
		if v, ok := obj[k]; ok && len(v) > 0 && !bytes.Equal(v, []byte("null")) {
			return v
		}
	}
	return raw
}

type sessionDTO struct {
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	Token        string             `json:"token"`
	User         domain.UserProfile `json:"user"`
}

func (d sessionDTO) toDomain() domain.Session {
	return domain.Session{
		AccessToken:  firstNonEmpty(d.AccessToken, d.Token),
		RefreshToken: d.RefreshToken,
		User:         d.User,
	}
}
