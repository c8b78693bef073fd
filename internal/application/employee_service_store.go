package application

import (
	"context"
	"fmt"

	"salon-client/internal/domain"

	"go.uber.org/zap"
)

// EmployeeServiceStore keeps the priced services of each employee.
type EmployeeServiceStore struct {
	services   EmployeeServiceBackend
	dedupe     *Deduplicator
	reconciler *Reconciler
	log        *zap.Logger
	lists      *slotTable[[]domain.EmployeeService]
}

func NewEmployeeServiceStore(services EmployeeServiceBackend, dedupe *Deduplicator, reconciler *Reconciler, log *zap.Logger) *EmployeeServiceStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmployeeServiceStore{
		services:   services,
		dedupe:     dedupe,
		reconciler: reconciler,
		log:        log,
		lists:      newSlotTable[[]domain.EmployeeService](),
	}
}

func (s *EmployeeServiceStore) List(employeeID string) Slot[[]domain.EmployeeService] {
	return s.lists.get(employeeID)
}

func (s *EmployeeServiceStore) Load(ctx context.Context, employeeID string) Slot[[]domain.EmployeeService] {
	seq := s.lists.begin(employeeID)
	v, err := s.fetch(ctx, employeeID)
	if err != nil {
		s.log.Warn("employee_service_store.load_failed", zap.String("employee_id", employeeID), zap.Error(err))
	}
	return s.lists.commit(employeeID, seq, v, err)
}

func (s *EmployeeServiceStore) fetch(ctx context.Context, employeeID string) ([]domain.EmployeeService, error) {
	return Dedupe(ctx, s.dedupe, "employee-services:"+employeeID, func(c context.Context) ([]domain.EmployeeService, error) {
		return s.services.ListEmployeeServices(c, employeeID)
	})
}

func (s *EmployeeServiceStore) Create(ctx context.Context, employeeID string, in domain.EmployeeServiceInput) (domain.EmployeeService, error) {
	if err := domain.Validate(in); err != nil {
		return domain.EmployeeService{}, err
	}
	svc, err := s.services.CreateEmployeeService(ctx, employeeID, in)
	if err != nil {
		return domain.EmployeeService{}, err
	}
	s.lists.update(employeeID, func(old []domain.EmployeeService) []domain.EmployeeService {
		return append(append([]domain.EmployeeService(nil), old...), svc)
	})
	return svc, nil
}

// Update writes in and reconciles by re-listing the employee's services, as
// the backend has no single-service read.
func (s *EmployeeServiceStore) Update(ctx context.Context, employeeID, id string, in domain.EmployeeServiceInput) (domain.EmployeeService, error) {
	if err := domain.Validate(in); err != nil {
		return domain.EmployeeService{}, err
	}
	written, err := s.services.UpdateEmployeeService(ctx, id, in)
	if err != nil {
		return domain.EmployeeService{}, err
	}
	fresh, err := Reconcile(ctx, s.reconciler, func(c context.Context) (domain.EmployeeService, error) {
		list, err := s.services.ListEmployeeServices(c, employeeID)
		if err != nil {
			return domain.EmployeeService{}, err
		}
		for _, x := range list {
			if x.ID == id {
				return x, nil
			}
		}
		return domain.EmployeeService{}, fmt.Errorf("employee service %s: %w", id, domain.ErrNotFound)
	}, EmployeeServiceMatches(in))
	if err != nil {
		s.log.Warn("employee_service_store.reconcile_failed", zap.String("id", id), zap.Error(err))
		fresh = written
	}
	if fresh.ID == "" {
		fresh.ID = id
	}
	s.lists.update(employeeID, func(old []domain.EmployeeService) []domain.EmployeeService {
		return replaceByID(old, fresh, func(x domain.EmployeeService) string { return x.ID })
	})
	return fresh, nil
}

func (s *EmployeeServiceStore) Delete(ctx context.Context, employeeID, id string) error {
	if err := s.services.DeleteEmployeeService(ctx, id); err != nil {
		return err
	}
	s.lists.update(employeeID, func(old []domain.EmployeeService) []domain.EmployeeService {
		return removeByID(old, id, func(x domain.EmployeeService) string { return x.ID })
	})
	return nil
}
