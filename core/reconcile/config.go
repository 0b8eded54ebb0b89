package reconcile

import "time"

// Config holds the settings of the sync section.
type Config struct {
	// Enabled turns the scheduled run on.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Schedule is a cron expression or descriptor for scheduled runs.
	Schedule string `mapstructure:"schedule" default:"@every 1h"`
	// RegionTimeoutSeconds bounds each store call made during a run.
	RegionTimeoutSeconds int `mapstructure:"region_timeout_seconds" default:"30"`
	// Coalesce makes overlapping triggers share the run in flight.
	Coalesce bool `mapstructure:"coalesce" default:"true"`
	// CacheTTLSeconds is how long the merged sales listing is cached.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"30"`
}

// RegionTimeout returns the per-call bound, zero when disabled.
func (c Config) RegionTimeout() time.Duration {
	if c.RegionTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RegionTimeoutSeconds) * time.Second
}

// CacheTTL returns the listing cache lifetime, zero when disabled.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Options converts the configuration into engine options.
func (c Config) Options() []Option {
	return []Option{
		WithRegionTimeout(c.RegionTimeout()),
		WithCoalescing(c.Coalesce),
	}
}
