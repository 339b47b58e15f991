package core

import "github.com/ty7swkr/gorcu/internal/rcu/goid"

// Reader is the thread-local read side of a Source: it owns the
// goroutine-keyed cache table and builds Guards against it.
//
// One Reader is normally paired with exactly one Source for its whole
// lifetime, which is why the public Store facade constructs them
// together.
type Reader[T any] struct {
	source *Source[T]
	table  table[T]
}

// NewReader creates a Reader over source.
func NewReader[T any](source *Source[T]) *Reader[T] {
	return &Reader[T]{source: source}
}

// Load returns a Guard pinning the calling goroutine's current snapshot.
//
// Nested calls within the same goroutine (while an outer Guard from this
// Reader is still held) reuse that outer snapshot verbatim, even if the
// Source has advanced in the meantime: once a goroutine observes a
// version inside a scope, it keeps seeing that version for the rest of
// the scope.
func (r *Reader[T]) Load() *Guard[T] {
	return r.load(false)
}

// LoadWithRelease is like Load, but additionally marks the cached slot
// for release once the outermost Guard in the current nesting closes,
// forcing the next Load in this goroutine to refresh from the Source
// instead of reusing the cached snapshot.
func (r *Reader[T]) LoadWithRelease() *Guard[T] {
	return r.load(true)
}

func (r *Reader[T]) load(scheduleRelease bool) *Guard[T] {
	gid := goid.Current()
	sl := r.table.slotFor(gid)

	switch {
	case !sl.initialized:
		version, payload := r.source.LoadCurrent()
		sl.initialized = true
		sl.version = version
		sl.attach(payload)
		sl.refCount = 1

	case sl.refCount == 0:
		if version, payload := r.source.LoadIfNewer(sl.version); payload != nil {
			sl.version = version
			old := sl.handle
			sl.attach(payload)
			if old != nil {
				old.Release()
			}
		}
		sl.refCount = 1

	default:
		sl.refCount++
	}

	if scheduleRelease {
		sl.releaseScheduled = true
	}

	r.table.maybeSweep()
	return &Guard[T]{slot: sl}
}

// Close releases every cached reference this Reader's table is holding.
// Call once, when the owning Source is being torn down.
func (r *Reader[T]) Close() {
	r.table.close()
}
