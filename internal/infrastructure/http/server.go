package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"salon-client/internal/application"
	"salon-client/internal/domain"
	"salon-client/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

type enqueuer interface {
	Enqueue(id string) bool
}

// Deps are the stores one BFF process serves.
type Deps struct {
	List      *application.SalonListStore
	Details   *application.SalonDetailStore
	Employees *application.EmployeeStore
	Offerings *application.EmployeeServiceStore
	Auth      *application.AuthStore
	Favorites *application.Favorites
	Prefetch  enqueuer
}

type Server struct {
	d    Deps
	ping func(ctx context.Context) error
}

func NewServer(d Deps) *Server { return &Server{d: d} }

// SetReadyCheck installs the probe behind /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

func bindQuery(r *http.Request, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, true, name, r.URL.Query(), dest)
}

// optionalInt binds an optional integer query parameter; absent means zero.
func optionalInt(r *http.Request, name string) (int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return *v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func writeSnapshot(w http.ResponseWriter, snap application.SalonListSnapshot) {
	var ve *domain.ValidationError
	if errors.As(snap.Err, &ve) {
		writeFailure(w, snap.Err)
		return
	}
	status := http.StatusOK
	if snap.Deferred {
		status = http.StatusAccepted
	}
	writeJSON(w, status, toSnapshotJSON(snap))
}

// ----- salon list -----

func (s *Server) ListSalons(w http.ResponseWriter, r *http.Request) {
	page, err := optionalInt(r, "page")
	if err != nil {
		badRequest(w, "invalid page")
		return
	}
	limit, err := optionalInt(r, "limit")
	if err != nil {
		badRequest(w, "invalid limit")
		return
	}
	writeSnapshot(w, s.d.List.LoadAll(r.Context(), page, limit))
}

func (s *Server) SalonSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeSnapshot(w, s.d.List.Snapshot())
}

func (s *Server) SearchNearby(w http.ResponseWriter, r *http.Request) {
	var q domain.NearbyQuery
	for name, dest := range map[string]*float64{"lat": &q.Lat, "lng": &q.Lng, "radius": &q.RadiusKm} {
		if err := bindQuery(r, name, dest); err != nil {
			badRequest(w, "invalid "+name)
			return
		}
	}
	var err error
	if q.Page, err = optionalInt(r, "page"); err != nil {
		badRequest(w, "invalid page")
		return
	}
	if q.Limit, err = optionalInt(r, "limit"); err != nil {
		badRequest(w, "invalid limit")
		return
	}
	writeSnapshot(w, s.d.List.SearchNearby(r.Context(), q))
}

func (s *Server) SearchLocation(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := bindQuery(r, "q", &q); err != nil {
		badRequest(w, "q is required")
		return
	}
	writeSnapshot(w, s.d.List.SearchLocation(r.Context(), q))
}

func (s *Server) SearchKeyword(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := bindQuery(r, "q", &q); err != nil {
		badRequest(w, "q is required")
		return
	}
	writeSnapshot(w, s.d.List.SearchKeyword(r.Context(), q))
}

func (s *Server) SearchServices(w http.ResponseWriter, r *http.Request) {
	var names []string
	if err := runtime.BindQueryParameter("form", false, true, "services", r.URL.Query(), &names); err != nil {
		badRequest(w, "services is required")
		return
	}
	writeSnapshot(w, s.d.List.SearchServices(r.Context(), names))
}

func (s *Server) SetFilter(w http.ResponseWriter, r *http.Request) {
	var body filterJSON
	if !decodeBody(w, r, &body) {
		return
	}
	writeSnapshot(w, s.d.List.SetFilter(body.toDomain()))
}

// ----- salon entities -----

func (s *Server) GetSalon(w http.ResponseWriter, r *http.Request) {
	slot := s.d.Details.Get(r.Context(), chi.URLParam(r, "salonID"))
	if slot.State == application.SlotFailed {
		writeFailure(w, slot.Err)
		return
	}
	writeJSON(w, http.StatusOK, toSalonJSON(slot.Value))
}

func (s *Server) GetSalonDetail(w http.ResponseWriter, r *http.Request) {
	slot := s.d.Details.GetDetail(r.Context(), chi.URLParam(r, "salonID"))
	if slot.State == application.SlotFailed {
		writeFailure(w, slot.Err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailJSON(slot.Value))
}

func (s *Server) CreateSalon(w http.ResponseWriter, r *http.Request) {
	var in domain.SalonInput
	if !decodeBody(w, r, &in) {
		return
	}
	created, err := s.d.Details.Create(r.Context(), in)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSalonJSON(created))
}

func (s *Server) UpdateSalon(w http.ResponseWriter, r *http.Request) {
	var u domain.SalonUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	updated, err := s.d.Details.Update(r.Context(), chi.URLParam(r, "salonID"), u)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalonJSON(updated))
}

func (s *Server) DeleteSalon(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Details.Delete(r.Context(), chi.URLParam(r, "salonID")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----- employees -----

func (s *Server) ListEmployees(w http.ResponseWriter, r *http.Request) {
	slot := s.d.Employees.Load(r.Context(), chi.URLParam(r, "salonID"))
	if slot.State == application.SlotFailed {
		writeFailure(w, slot.Err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeesJSON(slot.Value))
}

func (s *Server) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var in domain.EmployeeInput
	if !decodeBody(w, r, &in) {
		return
	}
	e, err := s.d.Employees.Create(r.Context(), chi.URLParam(r, "salonID"), in)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeJSON(e))
}

func (s *Server) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var u domain.EmployeeUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	e, err := s.d.Employees.Update(r.Context(), chi.URLParam(r, "salonID"), chi.URLParam(r, "employeeID"), u)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeJSON(e))
}

func (s *Server) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Employees.Delete(r.Context(), chi.URLParam(r, "salonID"), chi.URLParam(r, "employeeID")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----- employee services -----

func (s *Server) ListOfferings(w http.ResponseWriter, r *http.Request) {
	slot := s.d.Offerings.Load(r.Context(), chi.URLParam(r, "employeeID"))
	if slot.State == application.SlotFailed {
		writeFailure(w, slot.Err)
		return
	}
	writeJSON(w, http.StatusOK, toOfferingsJSON(slot.Value))
}

func (s *Server) CreateOffering(w http.ResponseWriter, r *http.Request) {
	var in domain.EmployeeServiceInput
	if !decodeBody(w, r, &in) {
		return
	}
	o, err := s.d.Offerings.Create(r.Context(), chi.URLParam(r, "employeeID"), in)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOfferingJSON(o))
}

func (s *Server) UpdateOffering(w http.ResponseWriter, r *http.Request) {
	var in domain.EmployeeServiceInput
	if !decodeBody(w, r, &in) {
		return
	}
	o, err := s.d.Offerings.Update(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "serviceID"), in)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOfferingJSON(o))
}

func (s *Server) DeleteOffering(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Offerings.Delete(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "serviceID")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----- favorites -----

func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := s.d.Favorites.List(r.Context())
	if err != nil {
		logx.WithFields(r.Context()).Warn("favorites.list_failed", zap.Error(err))
		writeFailure(w, err)
		return
	}
	salons := make([]salonJSON, 0, len(ids))
	for _, id := range ids {
		slot := s.d.Details.Salon(id)
		if slot.State == application.SlotReady {
			salons = append(salons, toSalonJSON(slot.Value))
			continue
		}
		if s.d.Prefetch != nil {
			s.d.Prefetch.Enqueue(id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids, "salons": salons})
}

func (s *Server) AddFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Favorites.Add(r.Context(), chi.URLParam(r, "salonID")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Favorites.Remove(r.Context(), chi.URLParam(r, "salonID")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	on, err := s.d.Favorites.Toggle(r.Context(), chi.URLParam(r, "salonID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": on})
}

// ----- auth -----

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	sess, err := s.d.Auth.Login(r.Context(), creds)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(sess))
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Auth.Logout(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Session(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSessionJSON(s.d.Auth.Session()))
}
