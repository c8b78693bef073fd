package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"salon-client/internal/domain"

	"go.uber.org/zap"
)

// SalonListSnapshot is the read model of the salon list. Salons is the
// filtered view of Results.
type SalonListSnapshot struct {
	Salons     []domain.Salon
	Results    []domain.Salon
	Filter     domain.FilterState
	Pagination *domain.Pagination
	Source     SearchSource
	Loading    bool
	Deferred   bool
	Err        error
}

type deferredResult struct {
	res SearchResult
	err error
}

// SalonListStore holds the last known good salon collection and the actions
// that refresh it. Every action replaces the collection wholesale.
type SalonListStore struct {
	searcher *Searcher
	dedupe   *Deduplicator
	log      *zap.Logger

	mu         sync.RWMutex
	seq        uint64
	all        []domain.Salon
	results    []domain.Salon
	filter     domain.FilterState
	pagination *domain.Pagination
	source     SearchSource
	loading    bool
	deferred   bool
	err        error
	early      *deferredResult

	subs notifier[SalonListSnapshot]
}

func NewSalonListStore(searcher *Searcher, dedupe *Deduplicator, log *zap.Logger) *SalonListStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SalonListStore{searcher: searcher, dedupe: dedupe, log: log}
}

func (s *SalonListStore) Subscribe(fn func(SalonListSnapshot)) (unsubscribe func()) {
	return s.subs.subscribe(fn)
}

func (s *SalonListStore) Snapshot() SalonListSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *SalonListStore) snapshotLocked() SalonListSnapshot {
	results := append([]domain.Salon(nil), s.results...)
	return SalonListSnapshot{
		Salons:     s.filter.Apply(results),
		Results:    results,
		Filter:     s.filter,
		Pagination: s.pagination,
		Source:     s.source,
		Loading:    s.loading,
		Deferred:   s.deferred,
		Err:        s.err,
	}
}

// AllSalons returns the last full collection fetched by LoadAll.
func (s *SalonListStore) AllSalons() []domain.Salon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Salon(nil), s.all...)
}

func (s *SalonListStore) begin() uint64 {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading, s.err = true, nil
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.publish(snap)
	return seq
}

// commit applies the result of the action numbered seq if no newer action
// was started since. A superseded action gets a settled snapshot of its own
// result that is not written to the store.
func (s *SalonListStore) commit(seq uint64, res SearchResult, err error) SalonListSnapshot {
	s.mu.Lock()
	if seq != s.seq {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.log.Debug("salon_store.stale_commit_dropped", zap.Uint64("seq", seq))
		return settledSnapshot(snap, res, err)
	}
	if err == nil && res.Deferred && s.early != nil {
		res, err = s.early.res, s.early.err
	}
	s.applyLocked(res, err)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.publish(snap)
	return snap
}

func (s *SalonListStore) applyLocked(res SearchResult, err error) {
	s.loading = false
	s.early = nil
	switch {
	case err != nil:
		s.err, s.deferred = err, false
	case res.Deferred:
		s.err, s.deferred = nil, true
	default:
		s.results = append([]domain.Salon(nil), res.Salons...)
		s.pagination, s.source = res.Pagination, res.Source
		s.err, s.deferred = nil, false
		if res.Source == SourceAll {
			s.all = append([]domain.Salon(nil), res.Salons...)
		}
	}
}

func settledSnapshot(snap SalonListSnapshot, res SearchResult, err error) SalonListSnapshot {
	snap.Loading, snap.Deferred, snap.Err = false, false, nil
	switch {
	case err != nil:
		snap.Err = err
	case res.Deferred:
		snap.Deferred = true
	default:
		results := append([]domain.Salon(nil), res.Salons...)
		snap.Results, snap.Salons = results, snap.Filter.Apply(results)
		snap.Pagination, snap.Source = res.Pagination, res.Source
	}
	return snap
}

// deferredCommit delivers a scheduled fallback. It applies while the store
// still shows a deferred result; if the deferring action has not committed
// yet, the result is kept for it.
func (s *SalonListStore) deferredCommit() DeferredFunc {
	return func(res SearchResult, err error) {
		s.mu.Lock()
		switch {
		case s.loading:
			s.early = &deferredResult{res: res, err: err}
			s.mu.Unlock()
			return
		case !s.deferred:
			s.mu.Unlock()
			s.log.Debug("salon_store.deferred_result_dropped")
			return
		}
		s.applyLocked(res, err)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.subs.publish(snap)
	}
}

func (s *SalonListStore) LoadAll(ctx context.Context, page, limit int) SalonListSnapshot {
	seq := s.begin()
	key := fmt.Sprintf("all:%d:%d", page, limit)
	res, err := Dedupe(ctx, s.dedupe, key, func(c context.Context) (SearchResult, error) {
		return s.searcher.All(c, page, limit)
	})
	return s.commit(seq, res, err)
}

// RefreshAll re-fetches the full collection in the background. It never
// starts an action: an in-flight search is not superseded, and the shown
// results change only when they are the full list and idle.
func (s *SalonListStore) RefreshAll(ctx context.Context, page, limit int) ([]domain.Salon, error) {
	s.mu.RLock()
	seq := s.seq
	s.mu.RUnlock()
	key := fmt.Sprintf("all:%d:%d", page, limit)
	res, err := Dedupe(ctx, s.dedupe, key, func(c context.Context) (SearchResult, error) {
		return s.searcher.All(c, page, limit)
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.all = append([]domain.Salon(nil), res.Salons...)
	showing := seq == s.seq && !s.loading && !s.deferred && s.source == SourceAll && s.err == nil
	if !showing {
		source := s.source
		s.mu.Unlock()
		s.log.Debug("salon_store.refresh_kept_view", zap.String("source", string(source)))
		return res.Salons, nil
	}
	s.results = append([]domain.Salon(nil), res.Salons...)
	s.pagination = res.Pagination
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.publish(snap)
	return res.Salons, nil
}

func (s *SalonListStore) SearchNearby(ctx context.Context, q domain.NearbyQuery) SalonListSnapshot {
	seq := s.begin()
	res, err := Dedupe(ctx, s.dedupe, NearbyKey(q), func(c context.Context) (SearchResult, error) {
		return s.searcher.Nearby(c, q, s.deferredCommit())
	})
	return s.commit(seq, res, err)
}

func (s *SalonListStore) SearchLocation(ctx context.Context, text string) SalonListSnapshot {
	seq := s.begin()
	key := "location:" + strings.TrimSpace(text)
	res, err := Dedupe(ctx, s.dedupe, key, func(c context.Context) (SearchResult, error) {
		return s.searcher.Location(c, text, s.deferredCommit())
	})
	return s.commit(seq, res, err)
}

func (s *SalonListStore) SearchServices(ctx context.Context, names []string) SalonListSnapshot {
	seq := s.begin()
	canon := CanonicalServices(names)
	sorted := append([]string(nil), canon...)
	sort.Strings(sorted)
	local := s.localSource()
	res, err := Dedupe(ctx, s.dedupe, "services:"+strings.Join(sorted, ","), func(c context.Context) (SearchResult, error) {
		return s.searcher.Services(c, names, local)
	})
	return s.commit(seq, res, err)
}

func (s *SalonListStore) SearchKeyword(ctx context.Context, query string) SalonListSnapshot {
	seq := s.begin()
	local := s.localSource()
	res, err := Dedupe(ctx, s.dedupe, "keyword:"+strings.TrimSpace(query), func(c context.Context) (SearchResult, error) {
		return s.searcher.Keyword(c, query, local)
	})
	return s.commit(seq, res, err)
}

// SetFilter re-derives the filtered view; it never calls the backend.
func (s *SalonListStore) SetFilter(f domain.FilterState) SalonListSnapshot {
	s.mu.Lock()
	s.filter = f
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.subs.publish(snap)
	return snap
}

func (s *SalonListStore) localSource() []domain.Salon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.all) > 0 {
		return append([]domain.Salon(nil), s.all...)
	}
	return append([]domain.Salon(nil), s.results...)
}

// NearbyKey rounds coordinates so that equivalent searches share a key.
func NearbyKey(q domain.NearbyQuery) string {
	return fmt.Sprintf("nearby:%.3f:%.3f:%g:%d:%d", q.Lat, q.Lng, q.RadiusKm, q.Page, q.Limit)
}
