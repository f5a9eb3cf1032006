package parkinglot

import (
	"errors"
	"sync/atomic"

	"github.com/llxisdsh/parkinglot/internal/goid"
)

// ErrNotOwner is returned by RecursiveMutex.TryUnlock when the calling
// goroutine does not hold the lock.
var ErrNotOwner = errors.New("parkinglot: recursive mutex not held by current goroutine")

// RecursiveMutex is a Mutex that its owning goroutine may lock again
// without deadlocking. Each Lock must be paired with an Unlock; the lock is
// released when the outermost Unlock returns.
//
// Unlike Mutex, a RecursiveMutex is owned by the goroutine that locked it.
type RecursiveMutex struct {
	mu Mutex
	// owner is the id of the holding goroutine, 0 when unlocked.
	owner atomic.Int64
	// level counts re-entries beyond the first Lock. Only the owner
	// touches it.
	level int
}

// Lock locks m, or increments the recursion level if the calling goroutine
// already holds it.
func (m *RecursiveMutex) Lock() {
	id := goid.Current()
	if m.owner.Load() == id {
		m.level++
		return
	}
	m.mu.Lock()
	m.owner.Store(id)
}

// Unlock undoes one Lock. It panics if the calling goroutine does not hold m.
func (m *RecursiveMutex) Unlock() {
	if err := m.TryUnlock(); err != nil {
		panic(err)
	}
}

// TryUnlock is like Unlock but returns ErrNotOwner instead of panicking.
func (m *RecursiveMutex) TryUnlock() error {
	if m.owner.Load() != goid.Current() {
		return ErrNotOwner
	}
	if m.level > 0 {
		m.level--
		return nil
	}
	m.owner.Store(0)
	m.mu.Unlock()
	return nil
}

// IsLockedByCurrentGoroutine reports whether the calling goroutine holds m.
func (m *RecursiveMutex) IsLockedByCurrentGoroutine() bool {
	return m.owner.Load() == goid.Current()
}
