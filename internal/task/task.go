// Package task models one-shot background work whose result is read later.
package task

import (
	"context"
	"time"
)

// Task is the pending result of a function started with Go.
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts fn in a goroutine. Cancelling ctx is how the work is told to stop;
// fn decides how quickly it honours that.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.val, t.err = fn(ctx)
	}()
	return t
}

// Done is closed once the result is available.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks for the result. If ctx ends first the caller stops waiting and gets
// ctx.Err(); the task itself keeps its own context.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Poll returns the result without blocking. ok is false while the task runs.
func (t *Task[T]) Poll() (val T, ok bool, err error) {
	select {
	case <-t.done:
		return t.val, true, t.err
	default:
		return val, false, nil
	}
}

// Sleep pauses for d, returning early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
