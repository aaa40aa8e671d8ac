// Package events provides a small typed publish/subscribe primitive used to
// push engine transitions and cue activity to observers.
package events

import "sync"

// Event delivers values of type T to registered listeners. Listeners run
// synchronously on the notifying goroutine, outside the internal lock, in
// registration order.
type Event[T any] struct {
	mu        sync.RWMutex
	listeners []listener[T]
	nextID    uint64
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// New creates an event with no listeners.
func New[T any]() *Event[T] {
	return &Event[T]{}
}

// Listen registers fn and returns a function that removes it.
func (e *Event[T]) Listen(fn func(T)) func() {
	if fn == nil {
		panic("events: listener cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every listener with value.
func (e *Event[T]) Notify(value T) {
	e.mu.RLock()
	snapshot := make([]listener[T], len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.RUnlock()

	// Call outside the lock so listeners may register or notify again.
	for _, l := range snapshot {
		l.fn(value)
	}
}

// ListenerCount returns the number of registered listeners.
func (e *Event[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
