package rcu

import (
	"time"

	"github.com/ty7swkr/gorcu/internal/rcu/core"
	"github.com/ty7swkr/gorcu/internal/rcu/reclaimer"
)

// Guard is a scoped token pinning one snapshot of a Store's value for the
// calling goroutine. Release it (typically via defer) when the scope is
// done with the value.
type Guard[T any] = core.Guard[T]

// Reclaimer is a background worker that disposes of values a Store has
// replaced, off the writer's critical path. See [NewReclaimer].
type Reclaimer = reclaimer.Reclaimer

// ReclaimPolicy selects how a [Reclaimer] decides a retired value is safe
// to drop.
type ReclaimPolicy = reclaimer.Policy

const (
	// ReclaimRefcountOnly drops a value only once nothing else holds a
	// reference to it. This is the default.
	ReclaimRefcountOnly = reclaimer.PolicyRefcountOnly

	// ReclaimUnconditional drops every retired value on every sweep
	// regardless of outstanding references.
	ReclaimUnconditional = reclaimer.PolicyUnconditional
)

// ReclaimerOption configures a [Reclaimer]; see [NewReclaimer].
type ReclaimerOption = reclaimer.Option

// NewReclaimer starts a background Reclaimer usable by any number of
// Stores created with [WithReclaimer].
func NewReclaimer(opts ...ReclaimerOption) *Reclaimer {
	return reclaimer.New(opts...)
}

// WithScanInterval sets how often a Reclaimer sweeps retired values.
func WithScanInterval(d time.Duration) ReclaimerOption {
	return reclaimer.WithScanInterval(d)
}

// WithWaitUntilStarted makes NewReclaimer block until the worker
// goroutine has captured its own identity and is about to start
// sweeping.
func WithWaitUntilStarted() ReclaimerOption {
	return reclaimer.WithWaitUntilStarted()
}

// WithPolicy selects a Reclaimer's disposal policy.
func WithPolicy(p ReclaimPolicy) ReclaimerOption {
	return reclaimer.WithPolicy(p)
}

// WithLogger overrides a Reclaimer's default stderr logger.
func WithLogger(l reclaimer.Logger) ReclaimerOption {
	return reclaimer.WithLogger(l)
}

// Option configures a Store at construction time.
type Option[T any] func(*storeConfig[T])

type storeConfig[T any] struct {
	reclaimer *Reclaimer
}

// WithReclaimer attaches r to the Store being constructed, so values the
// Store replaces are disposed of by r's background worker instead of
// in-line on the caller's goroutine.
func WithReclaimer[T any](r *Reclaimer) Option[T] {
	return func(c *storeConfig[T]) { c.reclaimer = r }
}

// retirerAdapter lets a *Reclaimer, which disposes of values without
// knowing their type, satisfy core.Retirer[T] for a specific T.
type retirerAdapter[T any] struct {
	r *Reclaimer
}

func (a retirerAdapter[T]) Push(p *core.Payload[T]) {
	a.r.Push(p)
}

// Store is the public facade over one RCU value of type T: a source
// paired with the thread-local cache that makes repeated reads by the
// same goroutine cheap.
type Store[T any] struct {
	source *core.Source[T]
	reader *core.Reader[T]
}

// New creates a Store holding initial.
func New[T any](initial T, opts ...Option[T]) *Store[T] {
	source, reader := newSourceAndReader[T](opts...)
	source.Update(initial, nil)
	return &Store[T]{source: source, reader: reader}
}

// NewAbsent creates a Store whose initial value is absent. A Guard's Get
// reports present=false until the first Update.
func NewAbsent[T any](opts ...Option[T]) *Store[T] {
	source, reader := newSourceAndReader[T](opts...)
	source.UpdateAbsent(nil)
	return &Store[T]{source: source, reader: reader}
}

func newSourceAndReader[T any](opts ...Option[T]) (*core.Source[T], *core.Reader[T]) {
	cfg := storeConfig[T]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var retirer core.Retirer[T]
	if cfg.reclaimer != nil {
		retirer = retirerAdapter[T]{r: cfg.reclaimer}
	}

	source := core.NewSource[T](retirer)
	return source, core.NewReader(source)
}

// Load returns a Guard pinning the calling goroutine's current snapshot
// of the Store's value.
func (s *Store[T]) Load() *Guard[T] {
	return s.reader.Load()
}

// LoadWithRelease is like Load, but additionally forces the next Load by
// this goroutine (after the current nesting fully closes) to re-check the
// Store instead of reusing the cached snapshot.
func (s *Store[T]) LoadWithRelease() *Guard[T] {
	return s.reader.LoadWithRelease()
}

// Update atomically installs value as the Store's new current value.
// onRelease, if non-nil, belongs to value itself: it runs exactly once,
// with value, when value's last reference is dropped after a later
// Update or Close has replaced it (immediately if no one else holds it,
// later if a Reclaimer or an open Guard still does).
func (s *Store[T]) Update(value T, onRelease func(T)) {
	s.source.Update(value, onRelease)
}

// UpdateAbsent atomically installs an absent value as the Store's new
// current value. onRelease, if non-nil, belongs to the installed absent
// value: it runs exactly once, with T's zero value, when that absent
// value's last reference is dropped after a later Update or Close.
func (s *Store[T]) UpdateAbsent(onRelease func(T)) {
	s.source.UpdateAbsent(onRelease)
}

// Close releases every goroutine's cached reference and the Store's own
// current value. Call once, when the Store is no longer needed.
func (s *Store[T]) Close() {
	s.reader.Close()
	s.source.Close()
}
