// Package queue defines the contract for enqueuing and consuming events.
//
// Each tracker shard owns one queue with a single consumer, so events of a
// shard are applied in arrival order.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
)

// Event represents the payload type flowing through the queue.
type Event = model.Event

// Queue provides non-blocking push and channel-based dequeue semantics.
type Queue interface {
	// Push adds an event or reports why it could not.
	Push(ctx context.Context, e Event) error

	// Dequeue returns the channel events are read from.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close stops accepting events. Buffered events stay readable.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int
	name     string

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		name:     "queue",
	}

	for _, opt := range opts {
		opt(q)
	}

	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.name, q.capacity)
	metrics.UpdateQueueSize(q.name, 0, q.capacity)

	return q
}

// Push adds an event to the queue without blocking.
func (q *InMemoryQueue) Push(ctx context.Context, e Event) error {
	start := time.Now()
	defer func() {
		metrics.RecordQueueLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return fmt.Errorf("%s: %w", q.name, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejected("context_cancelled")
		return fmt.Errorf("%s: %w", q.name, err)
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(q.name, len(q.events), q.capacity)
		return nil
	default:
		metrics.RecordQueueRejected("full")
		return fmt.Errorf("%s: %w", q.name, ErrFull)
	}
}

// Dequeue returns a channel that will receive events as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	// Wrap the channel to track dequeue metrics
	out := make(chan Event)
	go func() {
		defer close(out)
		for event := range q.events {
			select {
			case out <- event:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(q.name, len(q.events), q.capacity)
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.events)
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	// Consumers drain what is buffered, then see the channel close.
	close(q.events)
	q.closed = true

	return nil
}
