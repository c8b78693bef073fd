package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salon-client/internal/domain"

	"github.com/stretchr/testify/require"
)

func setup() http.Handler {
	srv, _ := newTestServer()
	return NewRouter(srv)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	h := setup()
	rec := do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestReadyz_FailingCheck(t *testing.T) {
	srv, _ := newTestServer()
	srv.SetReadyCheck(func(context.Context) error { return errors.New("redis down") })
	rec := do(t, NewRouter(srv), http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"code":503,"message":"state backend not ready"}`, rec.Body.String())
}

func TestListSalons(t *testing.T) {
	h := setup()
	rec := do(t, h, http.MethodGet, "/salons?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[snapshotJSON](t, rec)
	require.Len(t, snap.Salons, 2)
	require.Equal(t, "all", snap.Source)
	require.False(t, snap.Loading)
}

func TestListSalons_BadPage(t *testing.T) {
	rec := do(t, setup(), http.MethodGet, "/salons?page=abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterThenSnapshot(t *testing.T) {
	h := setup()
	do(t, h, http.MethodGet, "/salons", nil)

	rec := do(t, h, http.MethodPut, "/salons/filter", filterJSON{MinRating: 4})
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[snapshotJSON](t, rec)
	require.Len(t, snap.Salons, 1)
	require.Equal(t, 2, snap.Total)

	snap = decode[snapshotJSON](t, do(t, h, http.MethodGet, "/salons/snapshot", nil))
	require.Len(t, snap.Salons, 1)
	require.InDelta(t, 4, snap.Filter.MinRating, 1e-9)
}

func TestSearchNearby(t *testing.T) {
	h := setup()
	rec := do(t, h, http.MethodGet, "/salons/nearby?lat=18.52&lng=73.85&radius=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "nearby", decode[snapshotJSON](t, rec).Source)

	rec = do(t, h, http.MethodGet, "/salons/nearby?lat=18.52&lng=73.85", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/salons/nearby?lat=95&lng=73.85&radius=5", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	require.Contains(t, body.Fields, "lat")
}

func TestSearchNearby_RateLimitedIsDeferred(t *testing.T) {
	srv, b := newTestServer()
	b.nearbyErr = &domain.RateLimitError{RetryAfter: time.Second}
	h := NewRouter(srv)

	rec := do(t, h, http.MethodGet, "/salons/nearby?lat=18.52&lng=73.85&radius=5", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, decode[snapshotJSON](t, rec).Deferred)

	require.Eventually(t, func() bool {
		snap := decode[snapshotJSON](t, do(t, h, http.MethodGet, "/salons/snapshot", nil))
		return !snap.Deferred && snap.Source == "all"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSearchLocation_FallsThroughToState(t *testing.T) {
	rec := do(t, setup(), http.MethodGet, "/salons/search/location?q=Maharashtra", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[snapshotJSON](t, rec)
	require.Equal(t, "state", snap.Source)
	require.Len(t, snap.Salons, 1)
}

func TestSearchServices_LocalFallback(t *testing.T) {
	h := setup()
	do(t, h, http.MethodGet, "/salons", nil)
	rec := do(t, h, http.MethodGet, "/salons/search/services?services=cut,massage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[snapshotJSON](t, rec)
	require.Equal(t, "local", snap.Source)
	require.Len(t, snap.Salons, 2)
}

func TestGetSalon(t *testing.T) {
	h := setup()
	rec := do(t, h, http.MethodGet, "/salons/s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Glow Studio", decode[salonJSON](t, rec).Name)

	rec = do(t, h, http.MethodGet, "/salons/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/salons/s1/details", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[detailJSON](t, rec).Employees, 1)
}

func TestSalonMutations(t *testing.T) {
	h := setup()
	rec := do(t, h, http.MethodPost, "/salons", map[string]any{"name": "New Look"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/salons", map[string]any{"name": "New Look", "phone": "99", "city": "Pune"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "s3", decode[salonJSON](t, rec).ID)

	rec = do(t, h, http.MethodPatch, "/salons/s1", map[string]any{"name": "Glow Studio II"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Glow Studio II", decode[salonJSON](t, rec).Name)

	rec = do(t, h, http.MethodDelete, "/salons/s3", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEmployeeRoutes(t *testing.T) {
	h := setup()
	rec := do(t, h, http.MethodGet, "/salons/s1/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]employeeJSON](t, rec), 1)

	rec = do(t, h, http.MethodPost, "/salons/s1/employees", map[string]any{"name": "Ravi"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPatch, "/salons/s1/employees/e1", map[string]any{"role": "manager"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "manager", decode[employeeJSON](t, rec).Role)

	rec = do(t, h, http.MethodDelete, "/salons/s1/employees/e2", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOfferingRoutes(t *testing.T) {
	h := setup()
	rec := do(t, h, http.MethodGet, "/employees/e1/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]offeringJSON](t, rec), 1)

	rec = do(t, h, http.MethodPost, "/employees/e1/services", map[string]any{"name": "Beard", "price": 150, "duration_min": 15})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/employees/e1/services", map[string]any{"name": "Beard", "price": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/employees/e1/services/o1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestFavoritesRoutes(t *testing.T) {
	h := setup()
	do(t, h, http.MethodGet, "/salons/s1", nil)

	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodPut, "/favorites/s1", nil).Code)
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodPut, "/favorites/s2", nil).Code)

	rec := do(t, h, http.MethodGet, "/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		IDs    []string    `json:"ids"`
		Salons []salonJSON `json:"salons"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []string{"s1", "s2"}, body.IDs)
	require.Len(t, body.Salons, 1)

	rec = do(t, h, http.MethodPost, "/favorites/s1/toggle", nil)
	require.JSONEq(t, `{"favorite":false}`, rec.Body.String())
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/favorites/s2", nil).Code)
}

func TestAuthRoutes(t *testing.T) {
	h := setup()
	rec := do(t, h, http.MethodPost, "/auth/login", map[string]string{"email": "a@b.co", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", map[string]string{"email": "a@b.co", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[sessionJSON](t, rec).Authenticated)

	require.True(t, decode[sessionJSON](t, do(t, h, http.MethodGet, "/auth/session", nil)).Authenticated)
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/auth/logout", nil).Code)
	require.False(t, decode[sessionJSON](t, do(t, h, http.MethodGet, "/auth/session", nil)).Authenticated)
}

func TestWriteFailure(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&domain.ValidationError{Fields: []string{"name"}}, http.StatusBadRequest},
		{&domain.RateLimitError{RetryAfter: 1500 * time.Millisecond}, http.StatusTooManyRequests},
		{&domain.TimeoutError{Op: "GET /salons", Timeout: time.Second}, http.StatusGatewayTimeout},
		{&domain.HTTPError{Status: 409}, http.StatusConflict},
		{&domain.APIError{Message: "boom"}, http.StatusBadGateway},
		{domain.ErrNotFound, http.StatusNotFound},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeFailure(rec, c.err)
		require.Equal(t, c.status, rec.Code, c.err.Error())
	}
	rec := httptest.NewRecorder()
	writeFailure(rec, &domain.RateLimitError{RetryAfter: 1500 * time.Millisecond})
	require.Equal(t, "2", rec.Header().Get("Retry-After"))
}
