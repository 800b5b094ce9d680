package utils

import (
	"context"
	"sync"
)

// -----------------------------------------------------------------------------
// FIFO is an unbounded, order-preserving queue. Push never blocks; Pop blocks
// until an item arrives or the context is cancelled. Arrival order is the
// only ordering guarantee.
// -----------------------------------------------------------------------------

type FIFO[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

// -----------------------------------------------------------------------------

func NewFIFO[T any]() *FIFO[T] {
	return &FIFO[T]{
		notify: make(chan struct{}, 1),
	}
}

// -----------------------------------------------------------------------------

// Push appends an item without ever blocking the producer.
func (f *FIFO[T]) Push(item T) {
	f.mu.Lock()
	f.items = append(f.items, item)
	f.mu.Unlock()

	// Coalesced wakeup: a pending signal already covers this item.
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// -----------------------------------------------------------------------------

// Pop removes and returns the oldest item, blocking until one is available.
// Returns the zero value and false when the context is cancelled first.
func (f *FIFO[T]) Pop(ctx context.Context) (T, bool) {
	for {
		f.mu.Lock()
		if len(f.items) > 0 {
			item := f.items[0]
			f.items = f.items[1:]
			remaining := len(f.items)
			f.mu.Unlock()

			// Re-raise so a queued batch drains without further pushes.
			if remaining > 0 {
				select {
				case f.notify <- struct{}{}:
				default:
				}
			}
			return item, true
		}
		f.mu.Unlock()

		select {
		case <-f.notify:
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// -----------------------------------------------------------------------------

// Len returns the current queue depth.
func (f *FIFO[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// -----------------------------------------------------------------------------

// Clear discards all queued items.
func (f *FIFO[T]) Clear() {
	f.mu.Lock()
	f.items = nil
	f.mu.Unlock()
}
