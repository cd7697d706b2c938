// Package config defines service configuration structures and loading hooks.
//
// Values are layered by Load: defaults from New, then an optional YAML file,
// then TORUS_ environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/okian/torus/internal/domain/torus"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds each shard's in-memory event queue.
	EventQueueSize int `koanf:"queue_size"`

	// ShardCount sets the number of independent tracker shards.
	ShardCount int `koanf:"shard_count"`

	// WindowCapacity is the sliding window length of every shard.
	WindowCapacity int `koanf:"window_capacity"`

	// CoordinateWidth selects 32 or 64 bit coordinates.
	CoordinateWidth int `koanf:"coordinate_width"`

	// StoreSizeHint preallocates the identifier stores.
	StoreSizeHint int `koanf:"store_size_hint"`

	// MetricsEnabled toggles Prometheus collection.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// Metric naming: <namespace>_<subsystem>_<prefix><name>.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	MetricsPrefix    string `koanf:"metrics_prefix"`

	// MetricsLabels are constant labels attached to every series.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsHistogramBuckets replaces the latency buckets, in milliseconds.
	MetricsHistogramBuckets []float64 `koanf:"metrics_histogram_buckets"`

	// MetricsRefreshIntervalMS paces the gauge refresh loops.
	MetricsRefreshIntervalMS int `koanf:"metrics_refresh_interval_ms"`

	// ShutdownTimeoutMS bounds the drain on SIGINT/SIGTERM.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		EventQueueSize:    10_000,
		ShardCount:        4,
		WindowCapacity:    64,
		CoordinateWidth:   64,
		MetricsEnabled:    true,
		ShutdownTimeoutMS: 10_000,

		MetricsNamespace:         "torus",
		MetricsSubsystem:         "tracker",
		MetricsRefreshIntervalMS: 10_000,
	}
}

// Width returns the parsed coordinate width.
func (c *Config) Width() torus.Width {
	w, err := torus.ParseWidth(c.CoordinateWidth)
	if err != nil {
		return torus.Width64
	}
	return w
}

// MetricsRefreshInterval returns the gauge refresh period.
func (c *Config) MetricsRefreshInterval() time.Duration {
	return time.Duration(c.MetricsRefreshIntervalMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.EventQueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.EventQueueSize)
	case c.ShardCount < 1:
		return fmt.Errorf("%w: shard_count must be positive, got %d", ErrInvalidConfig, c.ShardCount)
	case c.WindowCapacity < 0:
		return fmt.Errorf("%w: window_capacity must not be negative, got %d", ErrInvalidConfig, c.WindowCapacity)
	case c.StoreSizeHint < 0:
		return fmt.Errorf("%w: store_size_hint must not be negative", ErrInvalidConfig)
	case c.ShutdownTimeoutMS < 0:
		return fmt.Errorf("%w: shutdown_timeout_ms must not be negative", ErrInvalidConfig)
	case c.MetricsRefreshIntervalMS < 0:
		return fmt.Errorf("%w: metrics_refresh_interval_ms must not be negative", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsHistogramBuckets); i++ {
		if c.MetricsHistogramBuckets[i] <= c.MetricsHistogramBuckets[i-1] {
			return fmt.Errorf("%w: metrics_histogram_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	if _, err := torus.ParseWidth(c.CoordinateWidth); err != nil {
		return fmt.Errorf("%w: coordinate_width: %w", ErrInvalidConfig, err)
	}
	return nil
}
