package application

import (
	"context"

	"salon-client/internal/domain"

	"go.uber.org/zap"
)

// EmployeeStore keeps the staff list of each salon.
type EmployeeStore struct {
	employees  EmployeeBackend
	dedupe     *Deduplicator
	reconciler *Reconciler
	log        *zap.Logger
	lists      *slotTable[[]domain.Employee]
}

func NewEmployeeStore(employees EmployeeBackend, dedupe *Deduplicator, reconciler *Reconciler, log *zap.Logger) *EmployeeStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmployeeStore{
		employees:  employees,
		dedupe:     dedupe,
		reconciler: reconciler,
		log:        log,
		lists:      newSlotTable[[]domain.Employee](),
	}
}

func (s *EmployeeStore) List(salonID string) Slot[[]domain.Employee] { return s.lists.get(salonID) }

func (s *EmployeeStore) Load(ctx context.Context, salonID string) Slot[[]domain.Employee] {
	seq := s.lists.begin(salonID)
	v, err := Dedupe(ctx, s.dedupe, "employees:"+salonID, func(c context.Context) ([]domain.Employee, error) {
		return s.employees.ListEmployees(c, salonID)
	})
	if err != nil {
		s.log.Warn("employee_store.load_failed", zap.String("salon_id", salonID), zap.Error(err))
	}
	return s.lists.commit(salonID, seq, v, err)
}

func (s *EmployeeStore) Create(ctx context.Context, salonID string, in domain.EmployeeInput) (domain.Employee, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Employee{}, err
	}
	e, err := s.employees.CreateEmployee(ctx, salonID, in)
	if err != nil {
		return domain.Employee{}, err
	}
	s.lists.update(salonID, func(old []domain.Employee) []domain.Employee {
		return append(append([]domain.Employee(nil), old...), e)
	})
	return e, nil
}

func (s *EmployeeStore) Update(ctx context.Context, salonID, id string, u domain.EmployeeUpdate) (domain.Employee, error) {
	if err := domain.Validate(u); err != nil {
		return domain.Employee{}, err
	}
	written, err := s.employees.UpdateEmployee(ctx, id, u)
	if err != nil {
		return domain.Employee{}, err
	}
	fresh, err := Reconcile(ctx, s.reconciler, func(c context.Context) (domain.Employee, error) {
		return s.employees.GetEmployee(c, id)
	}, EmployeeMatches(u))
	if err != nil {
		s.log.Warn("employee_store.reconcile_failed", zap.String("id", id), zap.Error(err))
		fresh = written
	}
	if fresh.ID == "" {
		fresh.ID = id
	}
	s.lists.update(salonID, func(old []domain.Employee) []domain.Employee {
		return replaceByID(old, fresh, func(e domain.Employee) string { return e.ID })
	})
	return fresh, nil
}

func (s *EmployeeStore) Delete(ctx context.Context, salonID, id string) error {
	if err := s.employees.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	s.lists.update(salonID, func(old []domain.Employee) []domain.Employee {
		return removeByID(old, id, func(e domain.Employee) string { return e.ID })
	})
	return nil
}

func replaceByID[T any](src []T, v T, id func(T) string) []T {
	out := make([]T, 0, len(src))
	for _, x := range src {
		if id(x) == id(v) {
			out = append(out, v)
			continue
		}
		out = append(out, x)
	}
	return out
}

func removeByID[T any](src []T, drop string, id func(T) string) []T {
	out := make([]T, 0, len(src))
	for _, x := range src {
		if id(x) != drop {
			out = append(out, x)
		}
	}
	return out
}
