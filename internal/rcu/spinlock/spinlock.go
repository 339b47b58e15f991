// Package spinlock provides a minimal spin-based mutual exclusion lock.
//
// It backs the writer-side critical section of a Source: updates are rare
// and short (swap a pointer, bump a counter), so parking a goroutine on a
// sync.Mutex costs more than spinning briefly with a scheduler yield.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a non-reentrant mutual exclusion lock implemented with a
// single atomic flag and a scheduler yield on contention.
//
// The zero value is an unlocked SpinLock, ready to use.
type SpinLock struct {
	held atomic.Bool
}

// Lock acquires the lock, spinning until it succeeds.
//
// Holders must keep the critical section short: there is no fairness
// guarantee and a long-held lock starves every other Lock caller on the
// same Source.
func (s *SpinLock) Lock() {
	for !s.held.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Unlock releases the lock.
//
// Unlock on a lock not held by the calling goroutine is a programmer
// error and, like sync.Mutex, is not detected.
func (s *SpinLock) Unlock() {
	s.held.Store(false)
}

// TryLock attempts to acquire the lock without spinning, reporting
// whether it succeeded.
func (s *SpinLock) TryLock() bool {
	return s.held.CompareAndSwap(false, true)
}
