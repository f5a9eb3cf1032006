package parkinglot

import (
	"sync/atomic"
	"time"
	"unsafe"
)

// Mutex is a mutual exclusion lock whose entire state is one word.
//
// Waiters do not live in the Mutex: a contended Lock parks the goroutine in
// the process-wide parking lot keyed by the Mutex's address, so the zero
// value is ready to use and the struct stays 4 bytes.
//
// State bits:
//   - bit 0: locked
//   - bit 1: hasParked, at least one goroutine is or will shortly be parked
//
// Unlock hands the lock directly to the oldest waiter once that waiter has
// been waiting longer than 1ms, so a goroutine that releases and
// re-acquires in a tight loop cannot starve parked waiters indefinitely.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	_     noCopy
	state atomic.Uint32
}

const (
	mutexLocked    = 1
	mutexHasParked = 2

	// mutexFairAfter is how long a waiter may lose the race for the lock
	// before Unlock hands ownership to it directly.
	mutexFairAfter = int64(time.Millisecond)
)

// Lock locks m. If the lock is already in use, the calling goroutine
// blocks until the mutex is available.
func (m *Mutex) Lock() {
	if m.state.CompareAndSwap(0, mutexLocked) {
		return
	}
	m.lockSlow()
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	for {
		s := m.state.Load()
		if s&mutexLocked != 0 {
			return false
		}
		if m.state.CompareAndSwap(s, s|mutexLocked) {
			return true
		}
	}
}

func (m *Mutex) lockSlow() {
	fairAt := nanotime() + mutexFairAfter
	var spins int
	s := m.state.Load()
	for {
		if s&mutexLocked == 0 {
			if m.state.CompareAndSwap(s, s|mutexLocked) {
				return
			}
			s = m.state.Load()
			continue
		}
		// Spin only while nobody is parked.
		if s&mutexHasParked == 0 && trySpin(&spins) {
			s = m.state.Load()
			continue
		}
		if s&mutexHasParked == 0 {
			if !m.state.CompareAndSwap(s, s|mutexHasParked) {
				s = m.state.Load()
				continue
			}
			s |= mutexHasParked
		}

		expect := s
		reason := Park(unsafe.Pointer(&m.state), func() bool {
			return m.state.Load() == expect
		}, fairAt)
		if reason == WakeHandoff {
			return
		}
		s = m.state.Load()
	}
}

// Unlock unlocks m. It is a run-time error if m is not locked on entry.
//
// A locked Mutex is not associated with a particular goroutine.
func (m *Mutex) Unlock() {
	if m.state.CompareAndSwap(mutexLocked, 0) {
		return
	}
	m.unlockSlow()
}

func (m *Mutex) unlockSlow() {
	for {
		s := m.state.Load()
		switch {
		case s&mutexLocked == 0:
			panic("parkinglot: unlock of unlocked Mutex")
		case s&mutexHasParked != 0:
			UnparkOne(unsafe.Pointer(&m.state), func(u Unparked) bool {
				return m.unparked(u)
			})
			return
		case m.state.CompareAndSwap(s, 0):
			return
		}
	}
}

// unparked publishes the post-unlock state while the bucket is locked.
// hasParked is cleared only when no waiter remains for this address; a
// bucket collision can leave the queue empty even though hasParked was set.
func (m *Mutex) unparked(u Unparked) bool {
	var s uint32
	handoff := false
	if u.Found {
		handoff = nanotime() > u.Arg
		if handoff {
			s |= mutexLocked
		}
		if u.HasMore {
			s |= mutexHasParked
		}
	}
	m.state.Store(s)
	return handoff
}

// IsLocked reports whether m is currently held. The answer may be stale by
// the time it is returned; use it only for assertions and tests.
func (m *Mutex) IsLocked() bool {
	return m.state.Load()&mutexLocked != 0
}
