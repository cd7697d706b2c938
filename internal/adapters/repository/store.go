// Package repository defines the event store interface and its in-memory
// implementation.
package repository

import (
	"github.com/google/uuid"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
)

// Store maps event identifiers to their recorded attractor points.
//
// Implementations are not required to be safe for concurrent use; the owner
// of a store serializes access to it.
type Store[C torus.Coordinate] interface {
	// InsertOrLookup returns the entry for id. When id is absent produce is
	// called exactly once and its result inserted; inserted reports which
	// branch ran. An existing entry is never modified.
	InsertOrLookup(id uuid.UUID, produce func() model.EventInfo[C]) (info model.EventInfo[C], inserted bool)

	// Get returns the entry for id.
	Get(id uuid.UUID) (model.EventInfo[C], bool)

	// Delete removes id. Entries leave the window without leaving the
	// store, so pruning is up to the caller.
	Delete(id uuid.UUID) bool

	// Len returns the number of stored identifiers.
	Len() int

	// Range calls fn for every entry until fn returns false. Order is
	// unspecified.
	Range(fn func(id uuid.UUID, info model.EventInfo[C]) bool)
}
