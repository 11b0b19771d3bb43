// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load(ctx) to layer
//   file and environment on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/okian/grindstone/internal/domain/stats"
)

// Ledger backend selectors.
const (
	LedgerMemory = "memory"
	LedgerSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the ops listen address for /metrics and
	// /healthz, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// LedgerBackend selects the unlock ledger implementation: memory or
	// sqlite.
	LedgerBackend string `koanf:"ledger_backend"`

	// LedgerPath is the SQLite database path when LedgerBackend is sqlite.
	LedgerPath string `koanf:"ledger_path"`

	// Timezone names the location used for daily/weekly quest reset
	// boundaries, e.g. "America/New_York". Empty means the host local zone.
	Timezone string `koanf:"timezone"`

	// DefaultBodyweightKG is used for lift-ratio tier criteria when the
	// profile subsystem supplies no bodyweight.
	DefaultBodyweightKG float64 `koanf:"default_bodyweight_kg"`

	// EventShardCount configures the in-memory event store sharding.
	EventShardCount int `koanf:"event_shard_count"`

	// Stats carries the scoring weights and caps. Only overridable via the
	// config file; the env layer covers the flat keys above.
	Stats stats.Config `koanf:"stats"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		MetricsAddr:         ":9090",
		LedgerBackend:       LedgerMemory,
		LedgerPath:          "grindstone.db",
		DefaultBodyweightKG: 80,
		EventShardCount:     8,
		Stats:               stats.DefaultConfig(),
	}
}
