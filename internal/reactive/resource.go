package reactive

import (
	"context"
	"fmt"
)

// ResourceState is the lifecycle of a Resource.
type ResourceState int

const (
	ResourcePending ResourceState = iota
	ResourceReady
	ResourceFailed
)

// String returns the state name.
func (s ResourceState) String() string {
	switch s {
	case ResourcePending:
		return "pending"
	case ResourceReady:
		return "ready"
	case ResourceFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resource is a signal filled by a single asynchronous load. Until the load
// succeeds the value is T's zero value; a failed load leaves it there and
// records the error. There is no retry.
type Resource[T any] struct {
	value *Signal[T]
	state *Signal[ResourceState]
	err   error
}

// NewResource starts loader on its own goroutine. The result is applied on
// rt's goroutine by the next Tick after it arrives.
func NewResource[T any](ctx context.Context, rt *Runtime, loader func(context.Context) (T, error)) *Resource[T] {
	var zero T
	r := &Resource[T]{
		value: NewSignal(rt, zero),
		state: NewSignal(rt, ResourcePending),
	}

	go func() {
		v, err := load(ctx, loader)
		rt.Dispatch(func() {
			if err != nil {
				r.err = err
				r.state.Set(ResourceFailed)
				return
			}
			r.value.Set(v)
			r.state.Set(ResourceReady)
		})
	}()
	return r
}

func load[T any](ctx context.Context, loader func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("resource loader panicked: %v", rec)
		}
	}()
	if err := ctx.Err(); err != nil {
		return v, err
	}
	return loader(ctx)
}

// Get returns the loaded value, tracking the read.
func (r *Resource[T]) Get() T { return r.value.Get() }

// Peek returns the loaded value without tracking.
func (r *Resource[T]) Peek() T { return r.value.Peek() }

// GetAny implements AnyReader.
func (r *Resource[T]) GetAny() any { return r.Get() }

// IsReactive implements AnyReader.
func (r *Resource[T]) IsReactive() bool { return true }

// Subscribe registers fn to run when the value changes.
func (r *Resource[T]) Subscribe(fn func()) (unsubscribe func()) {
	return r.value.Subscribe(fn)
}

// State returns the load state, tracking the read.
func (r *Resource[T]) State() ResourceState { return r.state.Get() }

// Loading reports whether the load is still in flight, tracking the read.
func (r *Resource[T]) Loading() bool { return r.State() == ResourcePending }

// Error returns the load failure, if any.
func (r *Resource[T]) Error() error { return r.err }
