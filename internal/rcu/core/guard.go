package core

// Guard is a scoped token pinning one snapshot of a Source for the
// calling goroutine. Go has no destructors, so where the original design
// relies on RAII to release a snapshot at scope exit, callers here must
// defer Release explicitly — the same substitution the standard library
// makes for every other RAII resource (os.File, context.CancelFunc, ...).
//
// A Guard must only be used by the goroutine that created it, and must
// not be retained past the call to Release.
type Guard[T any] struct {
	slot     *slot[T]
	released bool
}

// Get returns a pointer to the pinned snapshot's value and whether a
// value is present. The pointer is only valid until Release.
func (g *Guard[T]) Get() (*T, bool) {
	return &g.slot.value, g.slot.present
}

// MustGet returns a pointer to the pinned snapshot's value, panicking if
// no value is present.
func (g *Guard[T]) MustGet() *T {
	v, ok := g.Get()
	if !ok {
		panic("rcu: Guard.MustGet called with no value present")
	}
	return v
}

// RefCount returns the current nesting depth of Guards sharing this
// goroutine's cached snapshot, including this one.
func (g *Guard[T]) RefCount() uint64 {
	return g.slot.refCount
}

// ScheduleRelease marks the cached snapshot for release once the
// outermost Guard in the current nesting closes.
func (g *Guard[T]) ScheduleRelease() {
	g.slot.releaseScheduled = true
}

// Retain cancels a previously scheduled release.
func (g *Guard[T]) Retain() {
	g.slot.releaseScheduled = false
}

// ReleaseScheduled reports whether the cached snapshot is marked for
// release once the outermost Guard closes.
func (g *Guard[T]) ReleaseScheduled() bool {
	return g.slot.releaseScheduled
}

// Release ends this Guard's hold on the pinned snapshot. It is safe to
// call more than once; only the first call has an effect.
//
// When this is the outermost Guard for the goroutine (refCount drops to
// zero) and the slot was marked for release, the cached snapshot is
// actually dropped here: the slot's version is stepped back by one so
// the next Load is forced to re-check the Source instead of trusting a
// now-discarded cached version.
func (g *Guard[T]) Release() {
	if g.released {
		return
	}
	g.released = true

	sl := g.slot
	sl.refCount--
	if sl.refCount > 0 {
		return
	}
	if !sl.releaseScheduled {
		return
	}

	sl.version--
	old := sl.handle
	sl.handle = nil
	sl.present = false
	sl.releaseScheduled = false
	if old != nil {
		old.Release()
	}
}
