package worker

import (
	"context"
	"time"

	"salon-client/internal/application"
	"salon-client/internal/domain"
	"salon-client/internal/infrastructure/logx"

	"go.uber.org/zap"
)

var _ application.Worker = (*Prefetcher)(nil)

type salonGetter interface {
	Get(ctx context.Context, id string) application.Slot[domain.Salon]
}

// Prefetcher warms salon slots for ids pushed through Enqueue, so that views
// listing favorites can render without waiting on the backend.
type Prefetcher struct {
	salons salonGetter
	ids    chan string
}

func NewPrefetcher(salons salonGetter, buffer int) *Prefetcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Prefetcher{salons: salons, ids: make(chan string, buffer)}
}

// Enqueue schedules id without blocking; it reports false when the queue is full.
func (p *Prefetcher) Enqueue(id string) bool {
	select {
	case p.ids <- id:
		return true
	default:
		return false
	}
}

func (p *Prefetcher) Start(ctx context.Context) {
	log := logx.L().With(zap.String("worker", "prefetch"))
	for {
		select {
		case <-ctx.Done():
			log.Info("prefetch_worker.stop")
			return
		case id := <-p.ids:
			p.processOne(ctx, log, id)
		}
	}
}

func (p *Prefetcher) processOne(ctx context.Context, log *zap.Logger, id string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("prefetch_worker.panic", zap.String("id", id), zap.Any("r", r))
		}
	}()
	c, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	if slot := p.salons.Get(c, id); slot.Err != nil {
		log.Debug("prefetch_worker.failed", zap.String("id", id), zap.Error(slot.Err))
	}
}
