package logx

import (
	"context"
	"strings"

	"salon-client/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
)

func init() {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	appCfg := config.Load()
	if appCfg.LogLevel != "" {
		_ = zapCfg.Level.UnmarshalText([]byte(strings.ToLower(appCfg.LogLevel)))
	}

	var err error
	logger, err = zapCfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}

type ctxKey struct{}

// WithRequestID stores a request id so that WithFields can attach it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// WithFields enriches logs with the request id carried by ctx, if any.
func WithFields(ctx context.Context) *zap.Logger {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return logger.With(zap.String("request_id", id))
	}
	return logger
}
