package service

import (
	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/pkg/logger"
	"go.opentelemetry.io/otel/trace"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithShardCount sets the number of independent tracker shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithQueueSize sets the capacity of each shard queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWindowCapacity sets the sliding window capacity of each shard.
// Zero is allowed and keeps every window empty.
func WithWindowCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity >= 0 {
			s.windowCapacity = capacity
		}
	}
}

// WithCoordinateWidth selects 32 or 64 bit coordinates.
func WithCoordinateWidth(w torus.Width) Option {
	return func(s *Service) {
		s.width = w
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracerProvider sets where ingestion spans go. Defaults to the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracerProvider = tp
		}
	}
}

// WithStoreSizeHint preallocates the shard stores for about n identifiers
// in total.
func WithStoreSizeHint(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.storeSizeHint = n
		}
	}
}
