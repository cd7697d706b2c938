// Package worker drains shard queues into the tracker.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/pkg/logger"
	"github.com/okian/torus/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultRateInterval = 5 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.Event

// Ingester applies one event to tracker state.
type Ingester interface {
	Ingest(ctx context.Context, e Event) error
}

// IngesterFunc adapts a function to Ingester.
type IngesterFunc func(ctx context.Context, e Event) error

// Ingest calls f.
func (f IngesterFunc) Ingest(ctx context.Context, e Event) error { return f(ctx, e) }

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker consumes a queue until it is closed or stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the event in flight.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is the single consumer of one queue.
type InMemoryWorker struct {
	queue    Queue
	ingester Ingester
	name     string

	processed atomic.Int64

	// Shutdown control
	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, ingester Ingester, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		ingester: ingester,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}

	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)

	return w
}

// Run starts the worker loop. It returns when ctx ends, Shutdown is called
// or the queue closes after being drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event", logger.Error(err))
			}
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Processed returns the number of events handed to the ingester.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) error {
	w.processed.Add(1)
	if err := w.ingester.Ingest(ctx, event); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("ingest %s: %w", event.ID, err)
	}
	return nil
}

// Binding pairs a queue with the ingester that owns its events.
type Binding struct {
	Queue    Queue
	Ingester Ingester
}

// Pool runs one worker per binding.
type Pool struct {
	workers  []*InMemoryWorker
	bindings []Binding

	shutdown chan struct{}
	stopOnce sync.Once

	rateInterval  time.Duration
	lastProcessed int64
	lastTick      time.Time

	logger logger.Logger
}

// NewPool creates a worker for every binding.
func NewPool(bindings []Binding, opts ...PoolOption) *Pool {
	p := &Pool{
		bindings:     bindings,
		workers:      make([]*InMemoryWorker, len(bindings)),
		shutdown:     make(chan struct{}),
		rateInterval: defaultRateInterval,
		lastTick:     time.Now(),
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("worker-pool")

	for i, b := range bindings {
		p.workers[i] = NewInMemoryWorker(
			b.Queue,
			b.Ingester,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
	}

	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0)

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))

	go p.startMetricsUpdater(ctx)
}

// Processed returns the number of events handed to ingesters by all workers.
func (p *Pool) Processed() int64 {
	var total int64
	for _, w := range p.workers {
		total += w.Processed()
	}
	return total
}

// startMetricsUpdater periodically publishes the processing rate.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(p.rateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case now := <-ticker.C:
			p.updateMetrics(now)
		}
	}
}

func (p *Pool) updateMetrics(now time.Time) {
	total := p.Processed()
	if elapsed := now.Sub(p.lastTick).Seconds(); elapsed > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(total-p.lastProcessed) / elapsed)
	}
	p.lastProcessed = total
	p.lastTick = now
}

// Shutdown closes every queue that can be closed, lets the workers drain
// them and waits until they return or ctx ends.
func (p *Pool) Shutdown(ctx context.Context) error {
	for _, b := range p.bindings {
		if closer, ok := b.Queue.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(err))
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	p.stopOnce.Do(func() { close(p.shutdown) })
	metrics.UpdateWorkerActiveCount(0)

	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
