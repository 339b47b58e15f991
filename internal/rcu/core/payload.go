// Package core implements the versioned, thread-local, snapshot-isolated
// RCU value store. The public rcu package is a thin generic facade over
// this package, mirroring how the detector's public race package forwards
// to its internal/race/api implementation.
package core

import "sync/atomic"

// Payload is a manually refcounted, immutable handle around a value of
// type T.
//
// Go's garbage collector reclaims memory but gives no deterministic
// "last reference dropped" hook, so the Reclaimer cannot rely on finalizers
// to know when a retired value is safe to dispose of. Payload tracks its
// own reference count instead, the same role std::shared_ptr plays in the
// original C++ design: a Source swaps the pointer atomically, callers
// Acquire a reference while they hold a Guard, and whoever drops the last
// reference runs the disposal callback exactly once.
type Payload[T any] struct {
	value     T
	present   bool
	onRelease func(T)
	refs      atomic.Int64
}

// NewPayload wraps value in a Payload with an initial reference count of
// one. onRelease, if non-nil, runs exactly once, when the last reference
// is dropped.
func NewPayload[T any](value T, onRelease func(T)) *Payload[T] {
	p := &Payload[T]{value: value, present: true, onRelease: onRelease}
	p.refs.Store(1)
	return p
}

// NewAbsentPayload wraps no value at all, representing an "absent"
// payload state that is a legitimate, expected state and not an error:
// a reader's Guard.Get reports present=false rather than handing back a
// zero-valued T. Has an initial reference count of one, same as
// NewPayload. onRelease, if non-nil, runs exactly once when the last
// reference is dropped; it is invoked with T's zero value, since there is
// no wrapped value to pass it.
func NewAbsentPayload[T any](onRelease func(T)) *Payload[T] {
	p := &Payload[T]{onRelease: onRelease}
	p.refs.Store(1)
	return p
}

// Value returns the wrapped value and whether a value is present.
//
// Value may be called any number of times across the lifetime of a
// reference; it does not itself affect the reference count.
func (p *Payload[T]) Value() (T, bool) {
	return p.value, p.present
}

// Acquire takes a new reference, returning the resulting count.
//
// Callers must hold a reference (directly or via a Guard) before calling
// Acquire; acquiring a reference to a payload that has already reached
// zero is a programmer error.
func (p *Payload[T]) Acquire() int64 {
	return p.refs.Add(1)
}

// Release drops a reference. When the count reaches zero, onRelease runs
// exactly once with the wrapped value.
func (p *Payload[T]) Release() {
	if p.refs.Add(-1) == 0 && p.onRelease != nil {
		p.onRelease(p.value)
	}
}

// RefCount returns the current reference count.
func (p *Payload[T]) RefCount() int64 {
	return p.refs.Load()
}

// IsUnique reports whether the caller holds the only outstanding
// reference. The Reclaimer uses this to decide which retired payloads are
// safe to drop, mirroring reclaimer_thread's use of shared_ptr::unique().
func (p *Payload[T]) IsUnique() bool {
	return p.refs.Load() == 1
}
