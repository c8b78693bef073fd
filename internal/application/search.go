package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"salon-client/internal/domain"
	infraconfig "salon-client/internal/infrastructure/config"

	"go.uber.org/zap"
)

// SearchSource records which stage of a cascade produced a result.
type SearchSource string

const (
	SourceAll      SearchSource = "all"
	SourceNearby   SearchSource = "nearby"
	SourceCity     SearchSource = "city"
	SourceState    SearchSource = "state"
	SourcePincode  SearchSource = "pincode"
	SourceServices SearchSource = "services"
	SourceLocal    SearchSource = "local"
)

type locationStage struct {
	field  LocationField
	source SearchSource
}

type SearchResult struct {
	Salons     []domain.Salon
	Pagination *domain.Pagination
	Source     SearchSource
	// Deferred means the backend is cooling down; the result will be
	// delivered later through the callback passed to the search.
	Deferred bool
}

// DeferredFunc receives the result of a scheduled fallback.
type DeferredFunc func(SearchResult, error)

// Searcher sequences the fallback cascades of the salon searches.
type Searcher struct {
	salons          SalonBackend
	governor        *Governor
	debounce        time.Duration
	fallbackTimeout time.Duration
	log             *zap.Logger
}

func NewSearcher(salons SalonBackend, governor *Governor, debounce time.Duration, log *zap.Logger) *Searcher {
	if debounce <= 0 {
		debounce = infraconfig.DefaultFallbackDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{
		salons:          salons,
		governor:        governor,
		debounce:        debounce,
		fallbackTimeout: 30 * time.Second,
		log:             log,
	}
}

func (s *Searcher) All(ctx context.Context, page, limit int) (SearchResult, error) {
	p, err := s.salons.ListSalons(ctx, page, limit)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Salons: p.Salons, Pagination: p.Pagination, Source: SourceAll}, nil
}

// Nearby searches around a coordinate. An empty result or a failure falls
// back to all salons; a rate limit defers that fallback behind the cooldown.
func (s *Searcher) Nearby(ctx context.Context, q domain.NearbyQuery, onDeferred DeferredFunc) (SearchResult, error) {
	if err := q.Validate(); err != nil {
		return SearchResult{}, err
	}
	if s.governor.Cooling(CapabilityNearby) {
		return s.deferToAll(CapabilityNearby, q.Page, q.Limit, onDeferred), nil
	}
	p, err := s.salons.SearchNearby(ctx, q)
	switch {
	case err == nil && len(p.Salons) > 0:
		return SearchResult{Salons: p.Salons, Pagination: p.Pagination, Source: SourceNearby}, nil
	case err == nil:
		s.log.Info("search.nearby_empty_fallback", zap.Float64("lat", q.Lat), zap.Float64("lng", q.Lng))
		return s.All(ctx, q.Page, q.Limit)
	case domain.IsRateLimited(err):
		s.trip(CapabilityNearby, err)
		return s.deferToAll(CapabilityNearby, q.Page, q.Limit, onDeferred), nil
	default:
		s.log.Warn("search.nearby_failed_fallback", zap.Error(err))
		return s.All(ctx, q.Page, q.Limit)
	}
}

// Location searches by pincode when text is numeric, otherwise by city and
// then by state with the same text. Stage results are never merged.
func (s *Searcher) Location(ctx context.Context, text string, onDeferred DeferredFunc) (SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SearchResult{}, &domain.ValidationError{Fields: []string{"location"}, Reason: "empty query"}
	}
	if s.governor.Cooling(CapabilityLocation) {
		return s.deferToAll(CapabilityLocation, 0, 0, onDeferred), nil
	}
	stages := []locationStage{{LocationCity, SourceCity}, {LocationState, SourceState}}
	if isNumeric(text) {
		stages = []locationStage{{LocationPincode, SourcePincode}}
	}

	var res SearchResult
	for _, st := range stages {
		p, err := s.salons.SearchByLocation(ctx, st.field, text)
		if err != nil {
			if domain.IsRateLimited(err) {
				s.trip(CapabilityLocation, err)
				return s.deferToAll(CapabilityLocation, 0, 0, onDeferred), nil
			}
			return SearchResult{}, err
		}
		res = SearchResult{Salons: p.Salons, Pagination: p.Pagination, Source: st.source}
		if len(p.Salons) > 0 {
			return res, nil
		}
		s.log.Debug("search.location_stage_empty", zap.String("field", string(st.field)))
	}
	return res, nil
}

// Services searches by canonical service names. When the backend has nothing
// (or fails) the local collection is filtered on salon and service names.
func (s *Searcher) Services(ctx context.Context, names []string, local []domain.Salon) (SearchResult, error) {
	canon := CanonicalServices(names)
	if len(canon) == 0 {
		return SearchResult{}, &domain.ValidationError{Fields: []string{"services"}, Reason: "no service given"}
	}
	salons, err := s.salons.SearchByServices(ctx, canon)
	if err == nil && len(salons) > 0 {
		return SearchResult{Salons: salons, Source: SourceServices}, nil
	}
	if err != nil {
		s.log.Warn("search.services_failed_local", zap.Strings("services", canon), zap.Error(err))
	}
	terms := append(append([]string{}, names...), canon...)
	return SearchResult{Salons: MatchLocal(local, terms), Source: SourceLocal}, nil
}

func (s *Searcher) Keyword(ctx context.Context, query string, local []domain.Salon) (SearchResult, error) {
	return s.Services(ctx, []string{query}, local)
}

func (s *Searcher) trip(c Capability, err error) {
	var retryAfter time.Duration
	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		retryAfter = rl.RetryAfter
	}
	s.governor.Trip(c, retryAfter)
}

// deferToAll schedules one fallback to all salons for capability c. When a
// fallback is already pending, onDeferred of the new caller is not registered.
func (s *Searcher) deferToAll(c Capability, page, limit int, onDeferred DeferredFunc) SearchResult {
	armed := s.governor.ScheduleFallback(c, s.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.fallbackTimeout)
		defer cancel()
		res, err := s.All(ctx, page, limit)
		if err != nil {
			s.log.Warn("search.deferred_fallback_failed", zap.String("capability", string(c)), zap.Error(err))
		}
		if onDeferred != nil {
			onDeferred(res, err)
		}
	})
	if !armed {
		s.log.Debug("search.fallback_already_pending", zap.String("capability", string(c)))
	}
	source := SourceNearby
	if c == CapabilityLocation {
		source = SourceCity
	}
	return SearchResult{Source: source, Deferred: true}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
