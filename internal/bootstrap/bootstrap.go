package bootstrap

import (
	"context"
	"net/http"

	"salon-client/internal/application"
	"salon-client/internal/config"
	httpserver "salon-client/internal/infrastructure/http"
	"salon-client/internal/infrastructure/worker"

	"go.uber.org/zap"
)

// App is one BFF process: the stores it owns, the router over them and the
// background workers to start.
type App struct {
	Handler  http.Handler
	Auth     *application.AuthStore
	Governor *application.Governor
	Workers  []application.Worker
}

// Build wires the process from cfg. The returned cleanup releases the state
// backend and stops pending fallback timers.
func Build(ctx context.Context, log *zap.Logger, cfg config.Config) (*App, func(), error) {
	state, closeState, err := ProvideClientState(ctx, log, cfg)
	if err != nil {
		return nil, func() {}, err
	}

	dedupe := application.NewDeduplicator()
	governor := application.NewGovernor(cfg.CooldownDefault, application.WithGovernorLogger(log))
	reconciler := application.NewReconciler(application.WithReconcileLogger(log))

	authAPI := ProvideBackend(ProvideTransport(cfg, log, nil))
	auth := application.NewAuthStore(authAPI, state.State, cfg.ClientID, dedupe, log)
	if err := auth.Restore(ctx); err != nil {
		log.Warn("bootstrap.session_restore_failed", zap.Error(err))
	}

	api := ProvideBackend(ProvideTransport(cfg, log, auth))
	searcher := application.NewSearcher(api, governor, cfg.FallbackDebounce, log)
	list := application.NewSalonListStore(searcher, dedupe, log)
	details := application.NewSalonDetailStore(api, dedupe, reconciler, log)
	prefetch := worker.NewPrefetcher(details, 0)

	srv := httpserver.NewServer(httpserver.Deps{
		List:      list,
		Details:   details,
		Employees: application.NewEmployeeStore(api, dedupe, reconciler, log),
		Offerings: application.NewEmployeeServiceStore(api, dedupe, reconciler, log),
		Auth:      auth,
		Favorites: application.NewFavorites(state.State, cfg.ClientID),
		Prefetch:  prefetch,
	})
	if state.Ping != nil {
		srv.SetReadyCheck(state.Ping)
	}

	app := &App{
		Handler:  httpserver.NewRouter(srv),
		Auth:     auth,
		Governor: governor,
		Workers: []application.Worker{
			&worker.Refresher{Store: list, Every: cfg.RefreshEvery, Log: log},
			prefetch,
		},
	}
	cleanup := func() {
		governor.Stop()
		closeState()
	}
	return app, cleanup, nil
}
