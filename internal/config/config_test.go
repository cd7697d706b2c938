package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/torus/internal/config"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 4)
			convey.So(cfg.WindowCapacity, convey.ShouldEqual, 64)
			convey.So(cfg.CoordinateWidth, convey.ShouldEqual, 64)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "torus")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "tracker")
			convey.So(cfg.MetricsRefreshInterval(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Width(), convey.ShouldEqual, torus.Width64)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with one bad field", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":        func(c *config.Config) { c.Addr = "" },
			"queue_size must be positive":   func(c *config.Config) { c.EventQueueSize = 0 },
			"shard_count must be positive":  func(c *config.Config) { c.ShardCount = 0 },
			"window_capacity must not be":   func(c *config.Config) { c.WindowCapacity = -1 },
			"store_size_hint must not be":   func(c *config.Config) { c.StoreSizeHint = -1 },
			"coordinate_width":              func(c *config.Config) { c.CoordinateWidth = 16 },
			"shutdown_timeout_ms must not ": func(c *config.Config) { c.ShutdownTimeoutMS = -5 },
			"metrics_refresh_interval_ms":   func(c *config.Config) { c.MetricsRefreshIntervalMS = -1 },
			"metrics_histogram_buckets":     func(c *config.Config) { c.MetricsHistogramBuckets = []float64{1, 5, 5} },
		}

		for msg, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, msg)
		}
	})

	convey.Convey("A zero window capacity is allowed", t, func() {
		cfg := config.New()
		cfg.WindowCapacity = 0
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})

	convey.Convey("A 32 bit width parses", t, func() {
		cfg := config.New()
		cfg.CoordinateWidth = 32
		convey.So(cfg.Width(), convey.ShouldEqual, torus.Width32)
	})
}
