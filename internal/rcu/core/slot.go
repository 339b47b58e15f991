package core

// slot is one goroutine's cached view of a Source: a version stamp, a
// direct pointer to the cached value (the "fast path" the whole design
// exists to support), and the bookkeeping needed to keep nested Load
// calls within the same goroutine seeing one coherent snapshot.
//
// A slot is owned by exactly one goroutine for as long as that goroutine
// is alive; the only other code that ever touches it is the table's
// background sweep, only after it has confirmed the owning goroutine has
// exited, and the table's close when the Store is torn down. That invariant is what lets every field below go without
// its own lock.
type slot[T any] struct {
	initialized      bool
	version          uint64
	handle           *Payload[T]
	value            T
	present          bool
	refCount         uint64
	releaseScheduled bool
}

// attach installs p as the slot's cached snapshot, copying its value out
// so Guard.Get has a stable address to hand back for the life of the
// cached snapshot.
func (s *slot[T]) attach(p *Payload[T]) {
	s.handle = p
	s.value, s.present = p.Value()
}

// evict drops the slot's cached reference, if any, and resets it to the
// uninitialized state. Used by the table's dead-goroutine sweep.
func (s *slot[T]) evict() {
	if s.handle != nil {
		s.handle.Release()
	}
	*s = slot[T]{}
}
