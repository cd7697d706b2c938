// Package service runs the tracker behind the HTTP API: events are routed to
// shards by identifier, and each shard applies its events in order on its
// own worker.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	eventqueue "github.com/okian/torus/internal/adapters/mq/queue"
	workerpool "github.com/okian/torus/internal/adapters/mq/worker"
	"github.com/okian/torus/internal/adapters/repository"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/internal/domain/types"
	"github.com/okian/torus/pkg/logger"
	"github.com/okian/torus/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Default service configuration constants.
const (
	defaultShardCount     = 4
	defaultQueueSize      = 10000
	defaultWindowCapacity = 64
	instrumentationName   = "github.com/okian/torus/internal/app"
)

// Service implements the API dependencies for the tracker.
type Service struct {
	mu sync.RWMutex

	// Core components
	shards []engine
	queues []*eventqueue.InMemoryQueue
	pool   *workerpool.Pool

	// Configuration
	shardCount     int
	queueSize      int
	windowCapacity int
	width          torus.Width
	storeSizeHint  int

	// State
	started bool
	cancel  context.CancelFunc
	stopCh  chan struct{}
	wg      sync.WaitGroup

	tracerProvider trace.TracerProvider
	logger         logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		shardCount:     defaultShardCount,
		queueSize:      defaultQueueSize,
		windowCapacity: defaultWindowCapacity,
		width:          torus.Width64,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the shards and starts one worker per shard.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.tracerProvider == nil {
		s.tracerProvider = otel.GetTracerProvider()
	}
	tracer := s.tracerProvider.Tracer(instrumentationName)

	s.logger.Info(ctx, "starting tracker service...")

	shards := make([]engine, s.shardCount)
	queues := make([]*eventqueue.InMemoryQueue, s.shardCount)
	bindings := make([]workerpool.Binding, s.shardCount)
	for i := range shards {
		e, err := newEngine(s.width, shardConfig{
			id:       i,
			capacity: s.windowCapacity,
			log:      s.logger,
			tracer:   tracer,
			sizeHint: s.storeSizeHint / s.shardCount,
		})
		if err != nil {
			return fmt.Errorf("start shard %d: %w", i, err)
		}
		shards[i] = e
		queues[i] = eventqueue.NewInMemoryQueue(
			eventqueue.WithCapacity(s.queueSize),
			eventqueue.WithName("shard-"+strconv.Itoa(i)),
		)
		bindings[i] = workerpool.Binding{Queue: queues[i], Ingester: e}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.shards, s.queues, s.cancel = shards, queues, cancel
	s.pool = workerpool.NewPool(bindings,
		workerpool.WithPoolLogger(s.logger),
		workerpool.WithRateInterval(metrics.Global().RefreshInterval()),
	)
	s.pool.Start(runCtx)

	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.refreshLoop(runCtx, metrics.Global().RefreshInterval())

	metrics.UpdateShardCount(s.shardCount)
	s.started = true
	s.logger.Info(ctx, "tracker service started",
		logger.Int("shards", s.shardCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("windowCapacity", s.windowCapacity),
		logger.Stringer("coordinates", s.width),
	)

	return nil
}

// Stop closes the shard queues, waits for queued events to be applied and
// stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping tracker service...")

	err := s.pool.Shutdown(ctx)
	close(s.stopCh)
	s.cancel()
	s.wg.Wait()

	s.started = false
	if err != nil {
		s.logger.Warn(ctx, "tracker service stopped with pending events", logger.Error(err))
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "tracker service stopped")
	return nil
}

// refreshLoop publishes the drift gauges, which need a full window walk.
func (s *Service) refreshLoop(ctx context.Context, every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			for _, sa := range s.snapshot() {
				label := strconv.Itoa(sa.Shard)
				metrics.UpdateAverageDrift(label, "x", float64(sa.Drift.X))
				metrics.UpdateAverageDrift(label, "y", float64(sa.Drift.Y))
			}
		}
	}
}

// shardFor picks the shard that owns id.
func (s *Service) shardFor(id uuid.UUID) int {
	return int(xxhash.Sum64(id[:]) % uint64(len(s.shards)))
}

// Submit queues e on its shard. It fails with ErrNotStarted, or with an error
// wrapping ErrRejected and the queue's reason.
func (s *Service) Submit(ctx context.Context, e model.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}

	i := s.shardFor(e.ID)
	if err := s.queues[i].Push(ctx, e); err != nil {
		s.logger.Debug(ctx, "event rejected",
			logger.Stringer("event_id", e.ID),
			logger.Int("shard", i),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return nil
}

// Lookup returns the stored points for id.
func (s *Service) Lookup(_ context.Context, id uuid.UUID) (types.EventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.EventView{}, ErrNotStarted
	}
	view, ok := s.shards[s.shardFor(id)].Lookup(id)
	if !ok {
		return types.EventView{}, fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	return view, nil
}

// Forget removes id from its shard's store. The window is left alone; an
// identifier still in the window no longer contributes to the average.
func (s *Service) Forget(_ context.Context, id uuid.UUID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if !s.shards[s.shardFor(id)].Forget(id) {
		return fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// Averages reports the rolling average of every shard.
func (s *Service) Averages(_ context.Context) []types.ShardAverage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Service) snapshot() []types.ShardAverage {
	out := make([]types.ShardAverage, len(s.shards))
	for i, sh := range s.shards {
		out[i] = sh.Snapshot()
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":         s.started,
		"shardCount":      s.shardCount,
		"queueSize":       s.queueSize,
		"windowCapacity":  s.windowCapacity,
		"coordinateWidth": int(s.width),
	}

	if s.started {
		var queued, windowed, stored int
		for i, sh := range s.shards {
			queued += s.queues[i].Len(ctx)
			w, st := sh.Sizes()
			windowed += w
			stored += st
		}
		stats["queueLength"] = queued
		stats["windowedEvents"] = windowed
		stats["storedEvents"] = stored
		stats["processedEvents"] = s.pool.Processed()
		stats["workers"] = s.pool.Size()
	}

	return stats
}
