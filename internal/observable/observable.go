// Package observable provides a minimal push-based value holder.
//
// A Live value delivers every published value to every observer, in publish
// order, on the publishing goroutine. Derived views created with Map hold no
// state: the transform runs again for each delivered value.
package observable

import (
	"context"
	"sync"
)

// Observer receives values from an Observable.
type Observer[T any] func(T)

// Observable is a value that notifies observers whenever it changes.
type Observable[T any] interface {
	// Value returns the current value.
	Value() T
	// Observe registers o, delivers the current value to it and then every
	// later change. The returned func unregisters o.
	Observe(o Observer[T]) (cancel func())
}

type registration[T any] struct {
	id uint64
	fn Observer[T]
}

// Live is a mutable Observable. The zero value is not usable; use NewLive.
type Live[T any] struct {
	// dispatchMu serializes publishes and registrations so observers never
	// see values out of order.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	value     T
	observers []registration[T]
	nextID    uint64
}

// NewLive creates a Live holding initial.
func NewLive[T any](initial T) *Live[T] {
	return &Live[T]{value: initial}
}

// Value returns the latest published value.
func (l *Live[T]) Value() T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value
}

// Publish stores v and delivers it to all observers before returning.
// Observers must not call Publish on the same Live.
func (l *Live[T]) Publish(v T) {
	l.dispatchMu.Lock()
	defer l.dispatchMu.Unlock()

	l.mu.Lock()
	l.value = v
	observers := make([]registration[T], len(l.observers))
	copy(observers, l.observers)
	l.mu.Unlock()

	for _, o := range observers {
		o.fn(v)
	}
}

// Observe implements Observable.
func (l *Live[T]) Observe(o Observer[T]) func() {
	l.dispatchMu.Lock()
	defer l.dispatchMu.Unlock()

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.observers = append(l.observers, registration[T]{id: id, fn: o})
	current := l.value
	l.mu.Unlock()

	o(current)

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

// ObserverCount reports how many observers are registered.
func (l *Live[T]) ObserverCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.observers)
}

func (l *Live[T]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, o := range l.observers {
		if o.id == id {
			l.observers = append(l.observers[:i:i], l.observers[i+1:]...)
			return
		}
	}
}

type mapped[S, T any] struct {
	src Observable[S]
	fn  func(S) T
}

// Map returns a view of src transformed by fn. fn must be pure.
func Map[S, T any](src Observable[S], fn func(S) T) Observable[T] {
	return &mapped[S, T]{src: src, fn: fn}
}

func (m *mapped[S, T]) Value() T {
	return m.fn(m.src.Value())
}

func (m *mapped[S, T]) Observe(o Observer[T]) func() {
	return m.src.Observe(func(s S) {
		o(m.fn(s))
	})
}

// Channel adapts src to a channel for consumers that cannot keep up with the
// publisher. Values are conflated: a reader always gets the latest value, but
// intermediate ones may be skipped. The channel is closed once ctx is done.
func Channel[T any](ctx context.Context, src Observable[T]) <-chan T {
	out := make(chan T)
	signal := make(chan struct{}, 1)

	var mu sync.Mutex
	var latest T

	cancel := src.Observe(func(v T) {
		mu.Lock()
		latest = v
		mu.Unlock()
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
			mu.Lock()
			v := latest
			mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case out <- v:
			}
		}
	}()

	return out
}
