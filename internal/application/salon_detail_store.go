package application

import (
	"context"

	"salon-client/internal/domain"

	"go.uber.org/zap"
)

// SalonDetailStore keeps per-id slots for salons and their detail views and
// runs the owner-side salon mutations.
type SalonDetailStore struct {
	salons     SalonBackend
	dedupe     *Deduplicator
	reconciler *Reconciler
	log        *zap.Logger

	bySalon *slotTable[domain.Salon]
	details *slotTable[domain.SalonDetail]
}

func NewSalonDetailStore(salons SalonBackend, dedupe *Deduplicator, reconciler *Reconciler, log *zap.Logger) *SalonDetailStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SalonDetailStore{
		salons:     salons,
		dedupe:     dedupe,
		reconciler: reconciler,
		log:        log,
		bySalon:    newSlotTable[domain.Salon](),
		details:    newSlotTable[domain.SalonDetail](),
	}
}

func (s *SalonDetailStore) Salon(id string) Slot[domain.Salon]        { return s.bySalon.get(id) }
func (s *SalonDetailStore) Detail(id string) Slot[domain.SalonDetail] { return s.details.get(id) }

// Get fetches a salon by id. Concurrent calls for the same id share one request.
func (s *SalonDetailStore) Get(ctx context.Context, id string) Slot[domain.Salon] {
	seq := s.bySalon.begin(id)
	v, err := Dedupe(ctx, s.dedupe, "salon:"+id, func(c context.Context) (domain.Salon, error) {
		return s.salons.GetSalon(c, id)
	})
	if err != nil {
		s.log.Warn("salon_detail_store.get_failed", zap.String("id", id), zap.Error(err))
	}
	return s.bySalon.commit(id, seq, v, err)
}

func (s *SalonDetailStore) GetDetail(ctx context.Context, id string) Slot[domain.SalonDetail] {
	seq := s.details.begin(id)
	v, err := Dedupe(ctx, s.dedupe, "detail:"+id, func(c context.Context) (domain.SalonDetail, error) {
		return s.salons.GetSalonDetail(c, id)
	})
	if err != nil {
		s.log.Warn("salon_detail_store.detail_failed", zap.String("id", id), zap.Error(err))
	}
	return s.details.commit(id, seq, v, err)
}

func (s *SalonDetailStore) Create(ctx context.Context, in domain.SalonInput) (domain.Salon, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Salon{}, err
	}
	created, err := s.salons.CreateSalon(ctx, in)
	if err != nil {
		return domain.Salon{}, err
	}
	if created.ID != "" {
		s.bySalon.set(created.ID, created)
	}
	s.log.Info("salon_detail_store.created", zap.String("id", created.ID))
	return created, nil
}

// Update writes u and then re-fetches the salon until it reflects u or the
// reconcile budget is spent. The slot holds what the backend last returned.
func (s *SalonDetailStore) Update(ctx context.Context, id string, u domain.SalonUpdate) (domain.Salon, error) {
	if err := domain.Validate(u); err != nil {
		return domain.Salon{}, err
	}
	written, err := s.salons.UpdateSalon(ctx, id, u)
	if err != nil {
		return domain.Salon{}, err
	}
	fresh, err := Reconcile(ctx, s.reconciler, func(c context.Context) (domain.Salon, error) {
		return s.salons.GetSalon(c, id)
	}, SalonMatches(u))
	if err != nil {
		s.log.Warn("salon_detail_store.reconcile_failed", zap.String("id", id), zap.Error(err))
		fresh = written
	}
	if fresh.ID == "" {
		fresh.ID = id
	}
	s.bySalon.set(id, fresh)
	s.details.remove(id)
	return fresh, nil
}

func (s *SalonDetailStore) Delete(ctx context.Context, id string) error {
	if err := s.salons.DeleteSalon(ctx, id); err != nil {
		return err
	}
	s.bySalon.remove(id)
	s.details.remove(id)
	return nil
}
