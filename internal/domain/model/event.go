// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/torus/internal/domain/torus"
)

// Event is one occurrence of an identified event entering the tracker.
type Event struct {
	ID         uuid.UUID // caller supplied identifier, repeats are allowed
	ReceivedAt time.Time // set by the transport, informational only
}

// NewEvent stamps id with the current time.
func NewEvent(id uuid.UUID) Event {
	return Event{ID: id, ReceivedAt: time.Now()}
}

// EventInfo holds the two attractor points recorded for an identifier.
// Flee defaults to the origin; nothing in the tracker moves it afterwards.
type EventInfo[C torus.Coordinate] struct {
	FollowX C
	FollowY C
	FleeX   C
	FleeY   C
}

// NewEventInfo records follow with the flee point at the origin.
func NewEventInfo[C torus.Coordinate](follow torus.Point[C]) EventInfo[C] {
	return EventInfo[C]{FollowX: follow.X, FollowY: follow.Y}
}

// Follow returns the follow point.
func (e EventInfo[C]) Follow() torus.Point[C] {
	return torus.Point[C]{X: e.FollowX, Y: e.FollowY}
}

// Flee returns the flee point.
func (e EventInfo[C]) Flee() torus.Point[C] {
	return torus.Point[C]{X: e.FleeX, Y: e.FleeY}
}
