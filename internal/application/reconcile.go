package application

import (
	"context"
	"strings"
	"time"

	"salon-client/internal/domain"
	infraconfig "salon-client/internal/infrastructure/config"

	"go.uber.org/zap"
)

// Reconciler re-fetches an entity after a write until the fetched copy shows
// the written fields or the attempt budget runs out.
type Reconciler struct {
	attempts int
	base     time.Duration
	step     time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	log      *zap.Logger
}

type ReconcilerOption func(*Reconciler)

func WithReconcileSleep(fn func(ctx context.Context, d time.Duration) error) ReconcilerOption {
	return func(r *Reconciler) { r.sleep = fn }
}

func WithReconcileLogger(l *zap.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.log = l }
}

func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		attempts: infraconfig.ReconcileAttempts,
		base:     infraconfig.ReconcileBaseDelay,
		step:     infraconfig.ReconcileStepDelay,
		sleep:    sleepCtx,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reconcile returns the last successfully fetched value whether or not it
// matched. An error is returned only when no fetch succeeded.
func Reconcile[T any](ctx context.Context, r *Reconciler, fetch func(context.Context) (T, error), matches func(T) bool) (T, error) {
	var (
		last    T
		have    bool
		lastErr error
	)
	for attempt := 0; attempt < r.attempts; attempt++ {
		v, err := fetch(ctx)
		if err == nil {
			last, have = v, true
			if matches(v) {
				return v, nil
			}
		} else {
			lastErr = err
			r.log.Warn("reconcile.fetch_failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		if attempt == r.attempts-1 {
			break
		}
		if err := r.sleep(ctx, r.base+time.Duration(attempt)*r.step); err != nil {
			break
		}
	}
	if have {
		r.log.Info("reconcile.stale_after_budget", zap.Int("attempts", r.attempts))
		return last, nil
	}
	return last, lastErr
}

func sameText(want *string, got string) bool {
	return want == nil || strings.TrimSpace(*want) == strings.TrimSpace(got)
}

// SalonMatches compares the fields present in u against a fetched salon.
func SalonMatches(u domain.SalonUpdate) func(domain.Salon) bool {
	return func(s domain.Salon) bool {
		return sameText(u.Name, s.Name) &&
			sameText(u.Description, s.Description) &&
			sameText(u.Phone, s.Phone) &&
			sameText(u.Email, s.Email) &&
			sameText(u.OpeningTime, s.OpeningTime) &&
			sameText(u.ClosingTime, s.ClosingTime) &&
			sameText(u.Address, s.Location.Address) &&
			sameText(u.City, s.Location.City) &&
			sameText(u.State, s.Location.State) &&
			sameText(u.Pincode, s.Location.Pincode)
	}
}

func EmployeeMatches(u domain.EmployeeUpdate) func(domain.Employee) bool {
	return func(e domain.Employee) bool {
		return sameText(u.Name, e.Name) &&
			sameText(u.Phone, e.Phone) &&
			sameText(u.Email, e.Email) &&
			sameText(u.Role, e.Role)
	}
}

func EmployeeServiceMatches(in domain.EmployeeServiceInput) func(domain.EmployeeService) bool {
	return func(s domain.EmployeeService) bool {
		return strings.TrimSpace(in.Name) == strings.TrimSpace(s.Name) &&
			strings.TrimSpace(in.Description) == strings.TrimSpace(s.Description) &&
			in.Price == s.Price &&
			in.DurationMin == s.DurationMin
	}
}
