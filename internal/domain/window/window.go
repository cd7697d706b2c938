// Package window provides a fixed-capacity sliding window of recent items.
package window

import "iter"

// Buffer is a bounded double-ended list. The front holds the most recent item
// and the back holds the oldest one, which is the next to be evicted.
//
// Buffer is not safe for concurrent use; the owner serializes access.
type Buffer[T comparable] struct {
	items []T // ring storage, len(items) == capacity
	head  int // index of the front item
	size  int
}

// New creates an empty buffer holding at most capacity items.
// A negative capacity is treated as zero.
func New[T comparable](capacity int) *Buffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// PushFront inserts v at the front. When the buffer is full the back item is
// evicted first and returned with ok set. A zero-capacity buffer ignores v.
// Duplicates are kept.
func (b *Buffer[T]) PushFront(v T) (evicted T, ok bool) {
	capacity := len(b.items)
	if capacity == 0 {
		return evicted, false
	}

	if b.size == capacity {
		back := b.index(b.size - 1)
		evicted, ok = b.items[back], true
		var zero T
		b.items[back] = zero
		b.size--
	}

	b.head = (b.head - 1 + capacity) % capacity
	b.items[b.head] = v
	b.size++
	return evicted, ok
}

// Front returns the most recently pushed item.
func (b *Buffer[T]) Front() (T, bool) {
	if b.size == 0 {
		var zero T
		return zero, false
	}
	return b.items[b.head], true
}

// Back returns the oldest item.
func (b *Buffer[T]) Back() (T, bool) {
	if b.size == 0 {
		var zero T
		return zero, false
	}
	return b.items[b.index(b.size-1)], true
}

// Len returns the number of items held.
func (b *Buffer[T]) Len() int { return b.size }

// Cap returns the maximum number of items.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// Full reports whether the next push evicts.
func (b *Buffer[T]) Full() bool { return b.size > 0 && b.size == len(b.items) }

// All yields items from front to back. The sequence can be ranged over any
// number of times; mutating the buffer while ranging is not supported.
func (b *Buffer[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(b.items[b.index(i)]) {
				return
			}
		}
	}
}

// index maps a logical position (0 = front) to a slot in items.
func (b *Buffer[T]) index(i int) int {
	return (b.head + i) % len(b.items)
}
