package application

import (
	"sync"
	"time"

	infraconfig "salon-client/internal/infrastructure/config"

	"go.uber.org/zap"
)

// Capability names a backend feature that can be put into cooldown.
type Capability string

const (
	CapabilityNearby   Capability = "nearby"
	CapabilityLocation Capability = "location"
)

// Governor tracks a cooldown deadline per capability after the backend rate
// limited it, and owns at most one pending fallback timer per capability.
type Governor struct {
	mu        sync.Mutex
	deadlines map[Capability]time.Time
	timers    map[Capability]*time.Timer
	cooldown  time.Duration
	now       func() time.Time
	log       *zap.Logger
}

type GovernorOption func(*Governor)

func WithGovernorClock(now func() time.Time) GovernorOption {
	return func(g *Governor) { g.now = now }
}

func WithGovernorLogger(l *zap.Logger) GovernorOption {
	return func(g *Governor) { g.log = l }
}

func NewGovernor(cooldown time.Duration, opts ...GovernorOption) *Governor {
	if cooldown <= 0 {
		cooldown = infraconfig.DefaultCooldown
	}
	g := &Governor{
		deadlines: map[Capability]time.Time{},
		timers:    map[Capability]*time.Timer{},
		cooldown:  cooldown,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Trip arms the cooldown for c: retryAfter when the backend sent one, the
// default cooldown otherwise. An already later deadline is kept.
func (g *Governor) Trip(c Capability, retryAfter time.Duration) time.Time {
	wait := g.cooldown
	if retryAfter > 0 {
		wait = retryAfter
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	deadline := g.now().Add(wait)
	if cur, ok := g.deadlines[c]; ok && cur.After(deadline) {
		deadline = cur
	}
	g.deadlines[c] = deadline
	g.log.Warn("governor.tripped", zap.String("capability", string(c)), zap.Time("deadline", deadline))
	return deadline
}

// Deadline returns the cooldown deadline of c and whether it is still in the future.
func (g *Governor) Deadline(c Capability) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.deadlines[c]
	if !ok {
		return time.Time{}, false
	}
	if !g.now().Before(d) {
		delete(g.deadlines, c)
		return time.Time{}, false
	}
	return d, true
}

func (g *Governor) Cooling(c Capability) bool {
	_, cooling := g.Deadline(c)
	return cooling
}

// ScheduleFallback arms fn to run after delay unless a fallback for c is
// already pending. It reports whether a new timer was armed.
func (g *Governor) ScheduleFallback(c Capability, delay time.Duration, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, pending := g.timers[c]; pending {
		return false
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		g.mu.Lock()
		if g.timers[c] == t {
			delete(g.timers, c)
		}
		g.mu.Unlock()
		fn()
	})
	g.timers[c] = t
	g.log.Info("governor.fallback_scheduled", zap.String("capability", string(c)), zap.Duration("delay", delay))
	return true
}

// Stop cancels every pending fallback.
func (g *Governor) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for c, t := range g.timers {
		t.Stop()
		delete(g.timers, c)
	}
}
