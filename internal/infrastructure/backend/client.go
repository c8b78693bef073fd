package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"salon-client/internal/application"
	"salon-client/internal/domain"
	infraconfig "salon-client/internal/infrastructure/config"
	"salon-client/internal/infrastructure/httpx"
)

// Client speaks the salon backend's HTTP contract and normalizes its
// responses into domain types.
type Client struct {
	HTTP *httpx.Client
}

var (
	_ application.SalonBackend           = (*Client)(nil)
	_ application.EmployeeBackend        = (*Client)(nil)
	_ application.EmployeeServiceBackend = (*Client)(nil)
	_ application.AuthBackend            = (*Client)(nil)
)

func New(h *httpx.Client) *Client { return &Client{HTTP: h} }

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) listSalons(ctx context.Context, path string, q url.Values, retries int) (domain.SalonPage, error) {
	var body salonListResp
	err := c.HTTP.DoJSON(ctx, httpx.Request{Method: http.MethodGet, Path: path, Query: q, Retries: retries}, &body)
	if err != nil {
		return domain.SalonPage{}, err
	}
	return body.toDomain(), nil
}

func (c *Client) ListSalons(ctx context.Context, page, limit int) (domain.SalonPage, error) {
	return c.listSalons(ctx, "/salons", pageQuery(page, limit), infraconfig.RetriesAllSalons)
}

func (c *Client) SearchNearby(ctx context.Context, nq domain.NearbyQuery) (domain.SalonPage, error) {
	q := pageQuery(nq.Page, nq.Limit)
	q.Set("lat", strconv.FormatFloat(nq.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(nq.Lng, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(nq.RadiusKm, 'f', -1, 64))
	return c.listSalons(ctx, "/salons/nearby", q, infraconfig.RetriesNearby)
}

func (c *Client) SearchByLocation(ctx context.Context, field application.LocationField, value string) (domain.SalonPage, error) {
	q := url.Values{}
	q.Set(string(field), value)
	return c.listSalons(ctx, "/salons/search", q, infraconfig.RetriesLocation)
}

func (c *Client) SearchByServices(ctx context.Context, services []string) ([]domain.Salon, error) {
	q := url.Values{}
	q.Set("services", strings.Join(services, ","))
	page, err := c.listSalons(ctx, "/salons/search/services", q, infraconfig.RetriesServices)
	if err != nil {
		return nil, err
	}
	return page.Salons, nil
}

func (c *Client) getEntity(ctx context.Context, path string, retries int, out any, keys ...string) error {
	var raw json.RawMessage
	if err := c.HTTP.DoJSON(ctx, httpx.Request{Method: http.MethodGet, Path: path, Retries: retries}, &raw); err != nil {
		return err
	}
	return decodeEntity(raw, out, keys...)
}

func decodeEntity(raw json.RawMessage, out any, keys ...string) error {
	if len(raw) == 0 {
		return &domain.APIError{Message: "empty response"}
	}
	if err := json.Unmarshal(unwrap(raw, keys...), out); err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	return nil
}

func (c *Client) GetSalon(ctx context.Context, id string) (domain.Salon, error) {
	var d salonDTO
	if err := c.getEntity(ctx, "/salons/"+url.PathEscape(id), infraconfig.RetriesByID, &d, "salon", "data"); err != nil {
		return domain.Salon{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) GetSalonDetail(ctx context.Context, id string) (domain.SalonDetail, error) {
	var d salonDetailDTO
	if err := c.getEntity(ctx, "/salons/"+url.PathEscape(id)+"/details", infraconfig.RetriesByID, &d, "salon", "data"); err != nil {
		return domain.SalonDetail{}, err
	}
	return d.toDomain(), nil
}

// mutate sends a write. Writes are never retried.
func (c *Client) mutate(ctx context.Context, method, path string, jsonBody any, form *httpx.Multipart, out any, keys ...string) error {
	var raw json.RawMessage
	req := httpx.Request{Method: method, Path: path, JSON: jsonBody, Form: form, Retries: infraconfig.RetriesMutation}
	if err := c.HTTP.DoJSON(ctx, req, &raw); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeEntity(raw, out, keys...)
}

func (c *Client) CreateSalon(ctx context.Context, in domain.SalonInput) (domain.Salon, error) {
	var d salonDTO
	var err error
	if in.Image != nil {
		err = c.mutate(ctx, http.MethodPost, "/salons", nil, salonInputForm(in), &d, "salon", "data")
	} else {
		err = c.mutate(ctx, http.MethodPost, "/salons", salonInputJSON(in), nil, &d, "salon", "data")
	}
	if err != nil {
		return domain.Salon{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) UpdateSalon(ctx context.Context, id string, u domain.SalonUpdate) (domain.Salon, error) {
	var d salonDTO
	path := "/salons/" + url.PathEscape(id)
	var err error
	if u.Image != nil {
		err = c.mutate(ctx, http.MethodPut, path, nil, salonUpdateForm(u), &d, "salon", "data")
	} else {
		err = c.mutate(ctx, http.MethodPut, path, salonUpdateJSON(u), nil, &d, "salon", "data")
	}
	if err != nil {
		return domain.Salon{}, err
	}
	return d.toDomain(), nil
}

func (c *Client) DeleteSalon(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/salons/"+url.PathEscape(id), nil, nil, nil)
}
