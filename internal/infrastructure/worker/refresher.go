package worker

import (
	"context"
	"time"

	"salon-client/internal/application"
	"salon-client/internal/domain"

	"go.uber.org/zap"
)

var _ application.Worker = (*Refresher)(nil)

type listRefresher interface {
	RefreshAll(ctx context.Context, page, limit int) ([]domain.Salon, error)
}

// Refresher reloads the full salon collection on a fixed period. The salons a
// user is currently searching are left alone.
type Refresher struct {
	Store   listRefresher
	Every   time.Duration
	Limit   int
	Timeout time.Duration
	Log     *zap.Logger
}

func (w *Refresher) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.Every <= 0 {
		log.Info("refresher.disabled")
		return
	}
	if w.Timeout <= 0 {
		w.Timeout = 30 * time.Second
	}

	t := time.NewTicker(w.Every)
	defer t.Stop()

	log.Info("refresher.started", zap.Duration("every", w.Every))
	for {
		select {
		case <-ctx.Done():
			log.Info("refresher.stop")
			return
		case <-t.C:
			w.refreshOnce(ctx, log)
		}
	}
}

func (w *Refresher) refreshOnce(ctx context.Context, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("refresher.panic", zap.Any("r", r))
		}
	}()
	c, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()
	salons, err := w.Store.RefreshAll(c, 1, w.Limit)
	if err != nil {
		log.Warn("refresher.load_failed", zap.Error(err))
		return
	}
	log.Debug("refresher.loaded", zap.Int("salons", len(salons)))
}
