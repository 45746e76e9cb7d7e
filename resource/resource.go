// Package resource models a piece of remote data held by a page: what it
// last loaded, whether a load is in flight, and what went wrong.
//
// The state machine is Idle → Loading → Ready | Failed. A load always
// leaves Loading whether the fetch succeeds or not, and a failed load keeps
// the previous value so the page can keep rendering it.
package resource

import (
	"context"
	"sync"
	"time"
)

// State is the lifecycle position of a Resource
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resource holds one remotely fetched value of type T. The zero value is an
// Idle resource ready to use.
type Resource[T any] struct {
	mu       sync.RWMutex
	state    State
	value    T
	err      error
	loadedAt time.Time
}

// Of returns a Ready resource holding v
func Of[T any](v T) *Resource[T] {
	return &Resource[T]{state: Ready, value: v, loadedAt: time.Now()}
}

// Load runs fetch and records its outcome. On failure the previous value is
// kept and the error is returned.
func (r *Resource[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) error {
	r.mu.Lock()
	r.state = Loading
	r.mu.Unlock()

	v, err := fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = Failed
		r.err = err
		return err
	}
	r.state = Ready
	r.value = v
	r.err = nil
	r.loadedAt = time.Now()
	return nil
}

// Mutate performs a server call and, only once it is acknowledged, patches
// the local value with apply. When call fails the value, state and error
// are left exactly as they were.
//
// apply must not modify its argument in place; return a new value instead
// (see Patch and Remove for slices).
func (r *Resource[T]) Mutate(ctx context.Context, call func(context.Context) error, apply func(T) T) error {
	if err := call(ctx); err != nil {
		return err
	}
	if apply == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = apply(r.value)
	return nil
}

// Set replaces the value and marks the resource Ready
func (r *Resource[T]) Set(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = v
	r.state = Ready
	r.err = nil
	r.loadedAt = time.Now()
}

// Value returns the current value, which is the zero value until the first
// successful load
func (r *Resource[T]) Value() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

func (r *Resource[T]) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Err returns the error of the last failed load, or nil
func (r *Resource[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// LoadedAt is when the value was last replaced
func (r *Resource[T]) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

func (r *Resource[T]) Loading() bool { return r.State() == Loading }
func (r *Resource[T]) Ready() bool   { return r.State() == Ready }
func (r *Resource[T]) Failed() bool  { return r.State() == Failed }
