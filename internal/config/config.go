package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// BFF
	Port string
	// Backend
	BackendBaseURL string
	RequestTimeout time.Duration
	// Client state
	StateBackend string // memory | redis | pg
	ClientID     string
	DatabaseURL  string
	// Redis (client state)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
	// Resilience
	CooldownDefault  time.Duration
	FallbackDebounce time.Duration
	BackoffBase      time.Duration
	BackoffCap       time.Duration
	// Refresher
	RefreshEvery time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:              getEnv("ENV", "local"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", "8080"),
		BackendBaseURL:   getEnv("BACKEND_BASE_URL", "http://localhost:5000/api"),
		RequestTimeout:   durMS("REQUEST_TIMEOUT_MS", 15000),
		StateBackend:     getEnv("STATE_BACKEND", "memory"),
		ClientID:         getEnv("CLIENT_ID", "default"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:         durMS("CLIENT_STATE_TTL_MS", 30*24*60*60*1000),
		CooldownDefault:  durMS("COOLDOWN_MS", 5000),
		FallbackDebounce: durMS("FALLBACK_DEBOUNCE_MS", 3000),
		BackoffBase:      durMS("BACKOFF_BASE_MS", 500),
		BackoffCap:       durMS("BACKOFF_CAP_MS", 5000),
		RefreshEvery:     durMS("REFRESH_EVERY_MS", 0),
	}
}
