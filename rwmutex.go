package parkinglot

import (
	"sync/atomic"
	"unsafe"
)

// RWMutex is a writer-preferring reader/writer lock packed into one word.
//
// Bit layout:
//   - bit 0: writeLocked
//   - bit 1: hasParked, a writer is waiting (or readers are parked behind one)
//   - bits 2..: number of readers holding the lock
//
// While hasParked is set, new readers park instead of joining the readers
// already inside, so a steady stream of readers cannot starve a writer. The
// last reader out wakes the parked goroutines; the writer among them takes
// the lock and the readers park again until it is released.
//
// The zero value is an unlocked RWMutex. It must not be copied after first
// use.
type RWMutex struct {
	_    noCopy
	bits atomic.Uintptr
}

const (
	rwWriteLocked = 1
	rwHasParked   = 2
	rwReaderShift = 2
	rwOneReader   = 1 << rwReaderShift
)

// RLock locks rw for reading.
func (rw *RWMutex) RLock() {
	s := rw.bits.Load()
	for {
		if s&(rwWriteLocked|rwHasParked) != 0 {
			s = rw.parkAndWait(s)
			continue
		}
		if rw.bits.CompareAndSwap(s, s+rwOneReader) {
			return
		}
		s = rw.bits.Load()
	}
}

// RUnlock undoes a single RLock call. It panics, leaving rw unchanged, if
// no reader holds rw.
func (rw *RWMutex) RUnlock() {
	s := rw.bits.Load()
	for {
		if s>>rwReaderShift == 0 {
			panic("parkinglot: RUnlock of unlocked RWMutex")
		}
		if rw.bits.CompareAndSwap(s, s-rwOneReader) {
			break
		}
		s = rw.bits.Load()
	}
	s -= rwOneReader
	if s>>rwReaderShift == 0 && s&rwHasParked != 0 {
		UnparkAll(unsafe.Pointer(&rw.bits))
	}
}

// Lock locks rw for writing. It waits for readers inside the lock to leave
// and blocks new readers in the meantime.
func (rw *RWMutex) Lock() {
	s := rw.bits.Load()
	for {
		// No readers and no writer: hasParked may be set and is kept, so
		// the goroutines parked behind us are woken by Unlock.
		if s&^rwHasParked == 0 {
			if rw.bits.CompareAndSwap(s, s|rwWriteLocked) {
				return
			}
			s = rw.bits.Load()
			continue
		}
		s = rw.parkAndWait(s)
	}
}

// Unlock unlocks rw for writing and wakes every parked goroutine. Writers
// still waiting set hasParked again before they park.
func (rw *RWMutex) Unlock() {
	old := rw.bits.Load()
	for {
		if old&rwWriteLocked == 0 {
			panic("parkinglot: Unlock of unlocked RWMutex")
		}
		if rw.bits.CompareAndSwap(old, 0) {
			break
		}
		old = rw.bits.Load()
	}
	if old&rwHasParked != 0 {
		UnparkAll(unsafe.Pointer(&rw.bits))
	}
}

// parkAndWait sets hasParked and parks until the state changes, returning
// the freshly loaded state.
func (rw *RWMutex) parkAndWait(s uintptr) uintptr {
	if s&rwHasParked == 0 {
		if !rw.bits.CompareAndSwap(s, s|rwHasParked) {
			return rw.bits.Load()
		}
		s |= rwHasParked
	}
	Park(unsafe.Pointer(&rw.bits), func() bool {
		return rw.bits.Load() == s
	}, 0)
	return rw.bits.Load()
}
