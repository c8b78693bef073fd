package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 15 * time.Second
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1

	DefaultCooldown         = 5 * time.Second
	DefaultFallbackDebounce = 3 * time.Second
	DefaultBackoffBase      = 500 * time.Millisecond
	DefaultBackoffCap       = 5 * time.Second

	ReconcileAttempts  = 3
	ReconcileBaseDelay = 700 * time.Millisecond
	ReconcileStepDelay = 300 * time.Millisecond
)

// Retry budgets per call site.
const (
	RetriesAllSalons = 3
	RetriesByID      = 2
	RetriesNearby    = 1
	RetriesLocation  = 1
	RetriesServices  = 1
	RetriesEmployees = 2
	RetriesMutation  = 0
)
