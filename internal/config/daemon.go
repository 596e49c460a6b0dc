package config

import "time"

// DaemonConfig controls watch mode. The whole section is optional; a nil
// DaemonConfig means the daemon command refuses to start.
type DaemonConfig struct {
	Watch         *bool         `yaml:"watch,omitempty"`
	Debounce      string        `yaml:"debounce,omitempty"`
	SweepInterval string        `yaml:"sweep_interval,omitempty"`
	HTTP          HTTPConfig    `yaml:"http,omitempty"`
	Metrics       MetricsConfig `yaml:"metrics,omitempty"`
}

// HTTPConfig controls the preview and status endpoint.
type HTTPConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// MetricsConfig controls Prometheus metric exposure.
type MetricsConfig struct {
	Enabled   *bool  `yaml:"enabled,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

// WatchEnabled reports whether filesystem watching is on.
func (d *DaemonConfig) WatchEnabled() bool {
	return d != nil && enabled(d.Watch)
}

// MetricsEnabled reports whether the daemon exports Prometheus metrics.
func (d *DaemonConfig) MetricsEnabled() bool {
	return d != nil && enabled(d.Metrics.Enabled)
}

// DebounceDuration returns the parsed debounce quiet window.
func (d *DaemonConfig) DebounceDuration() time.Duration {
	return parseDurationOr(d.Debounce, 500*time.Millisecond)
}

// SweepDuration returns the parsed full-sweep interval.
func (d *DaemonConfig) SweepDuration() time.Duration {
	return parseDurationOr(d.SweepInterval, time.Hour)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
