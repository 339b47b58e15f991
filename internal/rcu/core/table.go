package core

import (
	"sync"
	"sync/atomic"

	"github.com/ty7swkr/gorcu/internal/rcu/goid"
)

// sweepInterval is how many slot lookups occur, per table, between
// dead-goroutine sweeps. Sweeping is relatively expensive (a full
// runtime.Stack(all=true) dump), so it is amortized the same way the
// detector amortizes its own TID-pool cleanup.
const sweepInterval = 1000

// table is the Go realization of "thread-local storage" for one Source:
// Go has no native TLS, so each reader goroutine is identified by its
// extracted goroutine id and keyed into a sync.Map instead.
//
// sweepMu serializes sweep and close against each other: both evict
// slots via Range+Delete+evict, and two evictions racing on the same
// *slot[T] would both see the slot as still live and both call
// handle.Release() on it, over-releasing a payload that is logically
// held once. sweeping is a separate flag, not sweepMu itself, so
// maybeSweep can cheaply skip launching a second background sweep while
// one is already running instead of piling up goroutines waiting on the
// mutex.
type table[T any] struct {
	slots    sync.Map // int64 -> *slot[T]
	lookups  atomic.Uint64
	sweepMu  sync.Mutex
	sweeping atomic.Bool
}

// slotFor returns the calling goroutine's slot, creating it on first use.
func (t *table[T]) slotFor(gid int64) *slot[T] {
	if v, ok := t.slots.Load(gid); ok {
		return v.(*slot[T])
	}
	actual, _ := t.slots.LoadOrStore(gid, &slot[T]{})
	return actual.(*slot[T])
}

// maybeSweep triggers a sweep roughly every sweepInterval lookups, unless
// one is already in flight.
func (t *table[T]) maybeSweep() {
	if t.lookups.Add(1)%sweepInterval != 0 {
		return
	}
	if !t.sweeping.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer t.sweeping.Store(false)
		t.sweepMu.Lock()
		defer t.sweepMu.Unlock()
		t.sweep()
	}()
}

// sweep evicts slots belonging to goroutines that are no longer running,
// releasing whatever payload reference they were still holding. Callers
// must hold sweepMu.
func (t *table[T]) sweep() {
	live := goid.LiveIDs()
	liveSet := make(map[int64]bool, len(live))
	for _, id := range live {
		liveSet[id] = true
	}

	t.slots.Range(func(key, value any) bool {
		gid := key.(int64)
		if liveSet[gid] {
			return true
		}
		t.slots.Delete(gid)
		value.(*slot[T]).evict()
		return true
	})
}

// close releases every slot's cached reference. Called when the owning
// Source is torn down. Waits for any sweep already in flight rather than
// racing it, so the same slot is never evicted by both.
func (t *table[T]) close() {
	t.sweepMu.Lock()
	defer t.sweepMu.Unlock()

	t.slots.Range(func(key, value any) bool {
		t.slots.Delete(key)
		value.(*slot[T]).evict()
		return true
	})
}
