package parkinglot

import (
	"sync/atomic"
	"unsafe"
)

// Once runs an initializer until it succeeds once.
//
// Unlike sync.Once, a failed initialization is not final: if fn returns an
// error (or panics), the Once goes back to its initial state and the next
// Do call runs fn again. After the first success, Do never runs fn again
// and returns nil. At most one fn runs at a time; concurrent callers park
// until it finishes.
type Once struct {
	_ noCopy
	// state:
	//   0: not initialized
	//   bit 0: initialization in progress
	//   bit 1: goroutines parked waiting for it
	//   4: initialized
	state atomic.Uint32
}

const (
	onceRunning   = 1
	onceHasParked = 2
	onceDone      = 4
)

// Do calls fn if and only if no earlier call to fn through o succeeded.
// It returns fn's error, or nil if o was already initialized.
//
// If fn panics, Do considers it to have failed and re-panics.
func (o *Once) Do(fn func() error) error {
	if o.state.Load() == onceDone {
		return nil
	}
	return o.doSlow(fn)
}

func (o *Once) doSlow(fn func() error) error {
	s := o.state.Load()
	for {
		switch {
		case s == 0:
			if !o.state.CompareAndSwap(0, onceRunning) {
				s = o.state.Load()
				continue
			}
			return o.run(fn)
		case s == onceDone:
			return nil
		case s&onceHasParked == 0:
			if !o.state.CompareAndSwap(s, s|onceHasParked) {
				s = o.state.Load()
				continue
			}
			s |= onceHasParked
		}

		expect := s
		Park(unsafe.Pointer(&o.state), func() bool {
			return o.state.Load() == expect
		}, 0)
		s = o.state.Load()
	}
}

func (o *Once) run(fn func() error) (err error) {
	next := uint32(0)
	defer func() {
		if o.state.Swap(next)&onceHasParked != 0 {
			UnparkAll(unsafe.Pointer(&o.state))
		}
	}()
	if err = fn(); err == nil {
		next = onceDone
	}
	return err
}

// Done reports whether an initializer has succeeded.
func (o *Once) Done() bool {
	return o.state.Load() == onceDone
}
