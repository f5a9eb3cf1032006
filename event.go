package parkinglot

import (
	"sync/atomic"
	"unsafe"
)

// Event is a one-shot signal. Wait blocks until Notify has been called;
// once notified, the Event stays set forever and Wait returns immediately.
//
// The zero value is an unset Event. Size: 4 bytes.
type Event struct {
	_ noCopy
	// state:
	//   0: unset
	//   1: set
	//   2: unset, with goroutines parked
	state atomic.Uint32
}

const (
	eventSet       = 1
	eventHasParked = 2
)

// Wait blocks until Notify is called.
// If Notify has already been called, it returns immediately.
func (e *Event) Wait() {
	for {
		s := e.state.Load()
		if s == eventSet {
			return
		}
		if s == 0 && !e.state.CompareAndSwap(0, eventHasParked) {
			continue
		}
		Park(unsafe.Pointer(&e.state), func() bool {
			return e.state.Load() == eventHasParked
		}, 0)
	}
}

// Notify sets the Event and wakes every goroutine blocked in Wait.
// Notify is idempotent.
func (e *Event) Notify() {
	if e.state.Swap(eventSet) == eventHasParked {
		UnparkAll(unsafe.Pointer(&e.state))
	}
}

// IsSet reports whether Notify has been called.
func (e *Event) IsSet() bool {
	return e.state.Load() == eventSet
}
