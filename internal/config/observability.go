package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	logLevels    = []string{"debug", "info", "warn", "error"}
	logFormats   = []string{"json", "console"}
	healthChecks = []string{"database", "redis"}
)

// ObservabilityConfig covers logging, New Relic and the /status checks.
// Omitted blocks are filled from DefaultObservabilityConfig.
type ObservabilityConfig struct {
	// ServiceName and Environment are set by LoadConfig, not read from env.
	ServiceName string `koanf:"service_name" validate:"required"`
	Environment string `koanf:"environment" validate:"required"`

	Logging      LoggingConfig      `koanf:"logging" validate:"required"`
	NewRelic     NewRelicConfig     `koanf:"new_relic"`
	HealthChecks HealthChecksConfig `koanf:"health_checks"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required"`
	Format string `koanf:"format" validate:"required"`

	// SlowQueryThreshold logs SQL statements that run longer at warn level.
	// Zero disables it. Env values are durations like "250ms".
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`

	// FilePath adds a rotating JSON log file next to stdout.
	FilePath   string `koanf:"file_path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// NewRelicConfig is disabled while LicenseKey is empty.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// HealthChecksConfig selects the dependencies /status pings. With Enabled
// false /status only reports that the process is up.
type HealthChecksConfig struct {
	Enabled bool          `koanf:"enabled"`
	Timeout time.Duration `koanf:"timeout"`
	Checks  []string      `koanf:"checks"`
}

// Runs reports whether the named dependency check is turned on.
func (h HealthChecksConfig) Runs(name string) bool {
	return h.Enabled && slices.Contains(h.Checks, name)
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: "storefront",
		Environment: "development",
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 250 * time.Millisecond,
			MaxSizeMB:          100,
			MaxBackups:         5,
			MaxAgeDays:         14,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
		},
		HealthChecks: HealthChecksConfig{
			Enabled: true,
			Timeout: 5 * time.Second,
			Checks:  []string{"database", "redis"},
		},
	}
}

func orDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

// fillDefaults completes a partially configured block.
func (c *ObservabilityConfig) fillDefaults() {
	d := DefaultObservabilityConfig()

	orDefault(&c.Logging.Level, d.Logging.Level)
	orDefault(&c.Logging.Format, d.Logging.Format)
	orDefault(&c.Logging.SlowQueryThreshold, d.Logging.SlowQueryThreshold)
	orDefault(&c.Logging.MaxSizeMB, d.Logging.MaxSizeMB)
	orDefault(&c.Logging.MaxBackups, d.Logging.MaxBackups)
	orDefault(&c.Logging.MaxAgeDays, d.Logging.MaxAgeDays)
	orDefault(&c.HealthChecks.Timeout, d.HealthChecks.Timeout)
	if len(c.HealthChecks.Checks) == 0 {
		c.HealthChecks.Checks = d.HealthChecks.Checks
	}
}

// Validate applies the rules struct tags cannot express.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s (must be one of: %s)", c.Logging.Level, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		return fmt.Errorf("invalid logging format: %s (must be json or console)", c.Logging.Format)
	}
	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}
	for _, check := range c.HealthChecks.Checks {
		if !slices.Contains(healthChecks, check) {
			return fmt.Errorf("unknown health check: %s (must be one of: %s)", check, strings.Join(healthChecks, ", "))
		}
	}
	return nil
}

// GetLogLevel defaults to debug outside production when no level is set.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
