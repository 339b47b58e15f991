package core

import (
	"sync/atomic"

	"github.com/ty7swkr/gorcu/internal/rcu/spinlock"
)

// Retirer accepts payloads a Source has just replaced, so their disposal
// can happen off the writer's critical path. The reclaimer package
// implements this for Source to depend on without importing it directly.
type Retirer[T any] interface {
	Push(*Payload[T])
}

// Source is the globally visible, atomically replaceable slot at the root
// of an RCU value store. Readers observe it through a per-goroutine cache
// (see Reader); writers replace its contents under a short spin-locked
// critical section.
//
// Each Reader over a Source owns its own cache table, rather than
// sharing one process-wide "(thread, source) -> slot" table keyed by
// some Source identity: nothing here needs such a key to avoid
// cross-Source collisions, since a table only ever holds slots for the
// one Source its Reader reads.
type Source[T any] struct {
	current atomic.Pointer[Payload[T]]
	version atomic.Uint64
	lock    spinlock.SpinLock
	retirer Retirer[T]
}

// NewSource creates a Source holding an absent payload, at version 0.
func NewSource[T any](retirer Retirer[T]) *Source[T] {
	s := &Source[T]{retirer: retirer}
	s.current.Store(NewAbsentPayload[T](nil))
	return s
}

// LoadCurrent returns the current version and payload unconditionally.
// The returned payload carries its own reference, acquired on the
// caller's behalf, independent of the Source's own reference on it and
// of whatever any other caller has acquired; the caller must Release it.
func (s *Source[T]) LoadCurrent() (uint64, *Payload[T]) {
	version := s.version.Load()
	payload := s.current.Load()
	payload.Acquire()
	return version, payload
}

// LoadIfNewer returns the current version and payload only if the source
// has advanced past known; otherwise it returns the unchanged version and
// a nil payload, letting the caller skip the atomic payload load entirely.
// As with LoadCurrent, a non-nil returned payload carries its own
// acquired reference that the caller must Release.
func (s *Source[T]) LoadIfNewer(known uint64) (uint64, *Payload[T]) {
	version := s.version.Load()
	if version == known {
		return version, nil
	}
	payload := s.current.Load()
	payload.Acquire()
	return version, payload
}

// Update installs value as the new payload, incrementing the version.
// The payload previously installed is hand delivered to the attached
// Reclaimer, or released directly when no Reclaimer is attached.
func (s *Source[T]) Update(value T, onRelease func(T)) {
	s.UpdatePayload(NewPayload(value, onRelease))
}

// UpdateAbsent installs an absent payload as the new payload, incrementing
// the version. A reader that observes the new version sees Guard.Get
// report present=false until the next Update.
func (s *Source[T]) UpdateAbsent(onRelease func(T)) {
	s.UpdatePayload(NewAbsentPayload[T](onRelease))
}

// UpdatePayload installs p as the new payload directly, incrementing the
// version. Update and UpdateAbsent are convenience wrappers over this.
func (s *Source[T]) UpdatePayload(p *Payload[T]) {
	s.lock.Lock()
	old := s.current.Load()
	s.current.Store(p)
	s.version.Add(1)
	s.lock.Unlock()

	s.retire(old)
}

// Close releases the currently installed payload. Call once, when the
// Source itself is being torn down.
func (s *Source[T]) Close() {
	s.lock.Lock()
	old := s.current.Load()
	s.current.Store(NewAbsentPayload[T](nil))
	s.lock.Unlock()

	s.retire(old)
}

func (s *Source[T]) retire(p *Payload[T]) {
	if p == nil {
		return
	}
	if s.retirer != nil {
		s.retirer.Push(p)
		return
	}
	p.Release()
}
