package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"salon-client/internal/bootstrap"
	"salon-client/internal/infrastructure/config"
	"salon-client/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	cfg := bootstrap.ProvideConfig()
	addr := ":" + cfg.Port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, cleanup, err := bootstrap.Build(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer cleanup()

	for _, w := range app.Workers {
		go w.Start(ctx)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: app.Handler,
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr), zap.String("backend", cfg.BackendBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
