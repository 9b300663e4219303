package internal

import (
	"context"
	"sync"
)

// Future is a single-resolution value: the first Resolve wins and every later one is ignored.
// Both device discovery conventions (promise and callback) complete through one of these.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

// NewFuture creates an unresolved Future
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve sets the value, returning false if it was already resolved.
func (f *Future[T]) Resolve(v T) bool {
	resolved := false
	f.once.Do(func() {
		f.value = v
		resolved = true
		close(f.done)
	})
	return resolved
}

// Done is closed once the value is available
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Value returns the value without blocking (ok is false while unresolved).
func (f *Future[T]) Value() (v T, ok bool) {
	select {
	case <-f.done:
		return f.value, true
	default:
		return v, false
	}
}

// Wait blocks until the value is available or the context is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
