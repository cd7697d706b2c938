// Package processor applies one incoming event to the tracker state.
package processor

import (
	"context"

	"github.com/google/uuid"
	"github.com/okian/torus/internal/adapters/repository"
	"github.com/okian/torus/internal/domain/average"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/internal/domain/window"
	"github.com/okian/torus/pkg/logger"
)

// Result describes what one call to Process did.
type Result[C torus.Coordinate] struct {
	// Average is the rolling average computed before the push. Pass it back
	// as the previous average on the next call.
	Average average.Average[C]
	State   average.State

	// Info is the stored entry for the event, new or pre-existing.
	Info     model.EventInfo[C]
	Inserted bool

	// Evicted is the identifier pushed out of the window, if any.
	Evicted  uuid.UUID
	DidEvict bool
}

// Processor ingests events. It holds no tracker state of its own; the window,
// store and previous average are passed on every call.
type Processor[C torus.Coordinate] struct {
	log logger.Logger
}

// New creates a Processor.
func New[C torus.Coordinate](opts ...Option) *Processor[C] {
	cfg := config{log: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Processor[C]{log: cfg.log}
}

// Process ingests ev.
//
// The average is taken over the window as it was before ev. A new identifier
// is stored with its follow point at the antipode of that average (the
// origin's antipode when the average is absent) and its flee point at the
// origin. A known identifier is left untouched. Either way the identifier is
// pushed onto the window.
//
// The returned error is always nil.
func (p *Processor[C]) Process(
	ctx context.Context,
	ev model.Event,
	buf *window.Buffer[uuid.UUID],
	store repository.Store[C],
	prev average.Average[C],
) (Result[C], error) {
	current, state := average.Track(store, buf, prev)

	info, inserted := store.InsertOrLookup(ev.ID, func() model.EventInfo[C] {
		return model.NewEventInfo(current.Point.Antipode())
	})
	if !inserted {
		// Known identifiers keep their points.
		p.log.Debug(ctx, "event already tracked",
			logger.Stringer("event_id", ev.ID),
			logger.Stringer("average", current),
		)
	}

	evicted, didEvict := buf.PushFront(ev.ID)

	return Result[C]{
		Average:  current,
		State:    state,
		Info:     info,
		Inserted: inserted,
		Evicted:  evicted,
		DidEvict: didEvict,
	}, nil
}
