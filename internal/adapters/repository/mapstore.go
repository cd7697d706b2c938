package repository

import (
	"github.com/google/uuid"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
)

// MapStore is a Store backed by a Go map.
type MapStore[C torus.Coordinate] struct {
	entries map[uuid.UUID]model.EventInfo[C]
}

// NewMapStore creates an empty store.
func NewMapStore[C torus.Coordinate](opts ...Option) *MapStore[C] {
	var cfg storeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MapStore[C]{entries: make(map[uuid.UUID]model.EventInfo[C], cfg.sizeHint)}
}

var _ Store[uint32] = (*MapStore[uint32])(nil)

// InsertOrLookup implements Store.
func (s *MapStore[C]) InsertOrLookup(id uuid.UUID, produce func() model.EventInfo[C]) (model.EventInfo[C], bool) {
	if info, ok := s.entries[id]; ok {
		return info, false
	}
	info := produce()
	s.entries[id] = info
	return info, true
}

// Get implements Store.
func (s *MapStore[C]) Get(id uuid.UUID) (model.EventInfo[C], bool) {
	info, ok := s.entries[id]
	return info, ok
}

// Delete implements Store.
func (s *MapStore[C]) Delete(id uuid.UUID) bool {
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// Len implements Store.
func (s *MapStore[C]) Len() int { return len(s.entries) }

// Range implements Store.
func (s *MapStore[C]) Range(fn func(id uuid.UUID, info model.EventInfo[C]) bool) {
	for id, info := range s.entries {
		if !fn(id, info) {
			return
		}
	}
}
