package stats

// MetricsConfig holds configuration for the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes the endpoint.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Path is the route the endpoint is served on.
	Path string `mapstructure:"path" default:"/metrics"`
}
