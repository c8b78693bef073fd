package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"salon-client/internal/application"
	"salon-client/internal/config"
	"salon-client/internal/infrastructure/backend"
	"salon-client/internal/infrastructure/httpx"
	"salon-client/internal/infrastructure/logx"
	"salon-client/internal/infrastructure/pg"
	redisstore "salon-client/internal/infrastructure/redis"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STATE_BACKEND=pg")

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, dbURL)
	if err != nil {
		return nil, func() {}, err
	}
	if _, err := pg.RunMigrations(ctx, db, log); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		if log != nil {
			log.Info("closing pg")
		}
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideRedisClient(cfg config.Config) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

// StateBackend is the selected ClientState plus its readiness probe.
type StateBackend struct {
	State application.ClientState
	Ping  func(ctx context.Context) error
}

// ProvideClientState selects the client state backend from STATE_BACKEND.
func ProvideClientState(ctx context.Context, log *zap.Logger, cfg config.Config) (StateBackend, func(), error) {
	switch cfg.StateBackend {
	case "", "memory":
		return StateBackend{State: application.NewMemoryClientState()}, func() {}, nil
	case "redis":
		client, cleanup, err := ProvideRedisClient(cfg)
		if err != nil {
			return StateBackend{}, func() {}, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return StateBackend{State: redisstore.New(client, cfg.RedisTTL), Ping: ping}, cleanup, nil
	case "pg":
		db, cleanup, err := ProvideDB(ctx, log, cfg)
		if err != nil {
			return StateBackend{}, func() {}, err
		}
		return StateBackend{State: pg.NewStateRepo(db), Ping: db.Ping}, cleanup, nil
	default:
		return StateBackend{}, func() {}, fmt.Errorf("unknown STATE_BACKEND %q", cfg.StateBackend)
	}
}

// ProvideTransport builds a backend transport. auth may be nil; the auth
// backend itself is always given a transport without one so a refresh never
// triggers another refresh.
func ProvideTransport(cfg config.Config, log *zap.Logger, auth httpx.TokenSource) *httpx.Client {
	return &httpx.Client{
		HTTP:      &http.Client{},
		BaseURL:   cfg.BackendBaseURL,
		Auth:      auth,
		Timeout:   cfg.RequestTimeout,
		BaseDelay: cfg.BackoffBase,
		MaxDelay:  cfg.BackoffCap,
		Log:       log,
	}
}

func ProvideBackend(t *httpx.Client) *backend.Client { return backend.New(t) }
