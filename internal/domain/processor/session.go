package processor

import (
	"context"

	"github.com/google/uuid"
	"github.com/okian/torus/internal/adapters/repository"
	"github.com/okian/torus/internal/domain/average"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/internal/domain/window"
)

// Session bundles the state one stream of events is tracked with: the
// window, the store and the previous average. It is not safe for concurrent
// use.
type Session[C torus.Coordinate] struct {
	proc  *Processor[C]
	buf   *window.Buffer[uuid.UUID]
	store repository.Store[C]
	prev  average.Average[C]
}

// NewSession creates a session with an empty window of the given capacity
// over store. A nil store gets a fresh MapStore.
func NewSession[C torus.Coordinate](capacity int, store repository.Store[C], opts ...Option) *Session[C] {
	if store == nil {
		store = repository.NewMapStore[C]()
	}
	return &Session[C]{
		proc:  New[C](opts...),
		buf:   window.New[uuid.UUID](capacity),
		store: store,
	}
}

// Ingest processes ev and keeps the returned average for the next call.
func (s *Session[C]) Ingest(ctx context.Context, ev model.Event) (Result[C], error) {
	res, err := s.proc.Process(ctx, ev, s.buf, s.store, s.prev)
	if err != nil {
		return res, err
	}
	s.prev = res.Average
	return res, nil
}

// Current returns the average the next Ingest would compute, without
// changing any state.
func (s *Session[C]) Current() (average.Average[C], average.State) {
	return average.Track(s.store, s.buf, s.prev)
}

// Window returns the session window.
func (s *Session[C]) Window() *window.Buffer[uuid.UUID] { return s.buf }

// Store returns the session store.
func (s *Session[C]) Store() repository.Store[C] { return s.store }

// Previous returns the average the next Ingest starts from.
func (s *Session[C]) Previous() average.Average[C] { return s.prev }
