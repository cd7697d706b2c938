// Package average maintains the rolling mean of flee points over the sliding
// window of recent event identifiers.
//
// The mean is updated from the previous value in constant time instead of
// being recomputed from the window. Callers own the previous value and pass
// it back on every call.
package average

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
)

// Lookup resolves identifiers to their recorded points.
type Lookup[C torus.Coordinate] interface {
	Get(id uuid.UUID) (model.EventInfo[C], bool)
}

// Window is the read side of the sliding window the average is taken over.
// Front is the most recent identifier and Back the oldest.
type Window interface {
	Len() int
	Cap() int
	Front() (uuid.UUID, bool)
	Back() (uuid.UUID, bool)
}

// Average is a rolling mean that may be absent.
type Average[C torus.Coordinate] struct {
	torus.Point[C]
	Valid bool
}

// Some wraps p as a present average.
func Some[C torus.Coordinate](p torus.Point[C]) Average[C] {
	return Average[C]{Point: p, Valid: true}
}

// None returns the absent average.
func None[C torus.Coordinate]() Average[C] {
	return Average[C]{}
}

// Get returns the point and whether it is present.
func (a Average[C]) Get() (torus.Point[C], bool) {
	return a.Point, a.Valid
}

func (a Average[C]) String() string {
	if !a.Valid {
		return "none"
	}
	return fmt.Sprintf("(%d, %d)", a.X, a.Y)
}

// Track computes the rolling average for the current window contents.
//
// It is called before the newest identifier is pushed, so latest is the
// window front and oldest is the window back. A latest or oldest identifier
// missing from store yields the absent average instead of an error.
func Track[C torus.Coordinate](store Lookup[C], win Window, prev Average[C]) (Average[C], State) {
	n := win.Len()
	state := Classify(n, win.Cap(), prev.Valid)
	if state == Empty {
		return None[C](), state
	}

	latest, ok := lookup(store, win.Front)
	if !ok {
		return None[C](), state
	}

	switch state {
	case FirstElement:
		return Some(Seed(latest.Flee())), state
	case Growing:
		return Some(Grow(prev.Point, latest.Flee(), n)), state
	default:
		oldest, ok := lookup(store, win.Back)
		if !ok {
			return None[C](), state
		}
		return Some(Slide(prev.Point, oldest.Flee(), latest.Flee(), n)), state
	}
}

func lookup[C torus.Coordinate](store Lookup[C], end func() (uuid.UUID, bool)) (model.EventInfo[C], bool) {
	id, ok := end()
	if !ok {
		return model.EventInfo[C]{}, false
	}
	return store.Get(id)
}
