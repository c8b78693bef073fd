package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_MS", "")
	t.Setenv("STATE_BACKEND", "")
	cfg := Load()
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Equal(t, "memory", cfg.StateBackend)
	require.Equal(t, 5*time.Second, cfg.CooldownDefault)
	require.Equal(t, 3*time.Second, cfg.FallbackDebounce)
	require.Zero(t, cfg.RefreshEvery)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_MS", "2500")
	t.Setenv("STATE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "not-a-number")
	cfg := Load()
	require.Equal(t, 2500*time.Millisecond, cfg.RequestTimeout)
	require.Equal(t, "redis", cfg.StateBackend)
	require.Equal(t, 0, cfg.RedisDB)
}
