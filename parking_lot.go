// Package parkinglot provides compact blocking synchronization primitives
// (Mutex, RWMutex, RecursiveMutex, Event, Once) whose state fits in a
// single word. Goroutines that must block are queued in a process-wide
// parking lot keyed by the address of that word, which is also exported
// (Park, UnparkOne, UnparkAll) for building further primitives.
package parkinglot

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/parkinglot/internal/opt"
)

// WakeReason reports why Park returned.
type WakeReason int

const (
	// WakeNormal means the goroutine was woken by UnparkOne or UnparkAll
	// and must re-check the state of the primitive it waited on.
	WakeNormal WakeReason = iota
	// WakeHandoff means the unparker transferred ownership of the
	// primitive to the woken goroutine.
	WakeHandoff
	// WakeInvalid means validate returned false, so the goroutine never
	// blocked.
	WakeInvalid
)

func (r WakeReason) String() string {
	switch r {
	case WakeNormal:
		return "normal"
	case WakeHandoff:
		return "handoff"
	case WakeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Unparked describes the outcome of UnparkOne to its callback.
type Unparked struct {
	// Found reports whether a waiter parked on the address was dequeued.
	Found bool
	// HasMore reports whether other waiters remain parked on the address.
	HasMore bool
	// Arg is the value the dequeued waiter passed to Park.
	Arg int64
}

// numBuckets is prime so that word-aligned addresses spread over all buckets.
const numBuckets = 257

// waiter is a goroutine parked on an address. Every field except sema is
// guarded by the owning bucket's lock while the waiter is queued.
type waiter struct {
	addr    uintptr
	arg     int64
	next    *waiter
	prev    *waiter
	handoff atomic.Bool
	sema    opt.Sema
}

type bucketHeader struct {
	mu   uint32
	head *waiter
	tail *waiter
}

// bucket is a FIFO queue of waiters whose addresses hash to it. Buckets are
// shared by unrelated addresses, so every lookup filters on waiter.addr.
type bucket struct {
	bucketHeader
	_ [(cacheLineSize - unsafe.Sizeof(bucketHeader{})%cacheLineSize) % cacheLineSize]byte
}

const bucketLocked = 1

var buckets [numBuckets]bucket

var waiterPool = sync.Pool{
	New: func() any { return new(waiter) },
}

//go:nosplit
func bucketFor(addr uintptr) *bucket {
	return &buckets[addr%numBuckets]
}

func (b *bucket) lock() {
	bitLock(&b.mu, bucketLocked)
}

func (b *bucket) unlock() {
	bitUnlock(&b.mu, bucketLocked)
}

func (b *bucket) push(w *waiter) {
	w.next = nil
	w.prev = b.tail
	if b.tail != nil {
		b.tail.next = w
	} else {
		b.head = w
	}
	b.tail = w
}

func (b *bucket) remove(w *waiter) {
	if w.prev != nil {
		w.prev.next = w.next
	} else {
		b.head = w.next
	}
	if w.next != nil {
		w.next.prev = w.prev
	} else {
		b.tail = w.prev
	}
	w.next, w.prev = nil, nil
}

// find returns the first waiter at or after w parked on addr.
func (b *bucket) find(w *waiter, addr uintptr) *waiter {
	for ; w != nil; w = w.next {
		if w.addr == addr {
			return w
		}
	}
	return nil
}

// Park blocks the calling goroutine on addr until it is woken by UnparkOne
// or UnparkAll for the same address.
//
// validate runs while the bucket lock is held, so it observes state
// consistently with any concurrent unparker. If it returns false, Park
// returns WakeInvalid immediately. arg is handed to the UnparkOne callback.
func Park(addr unsafe.Pointer, validate func() bool, arg int64) WakeReason {
	key := uintptr(addr)
	b := bucketFor(key)

	b.lock()
	if validate != nil && !validate() {
		b.unlock()
		return WakeInvalid
	}
	w := waiterPool.Get().(*waiter)
	w.addr = key
	w.arg = arg
	w.handoff.Store(false)
	b.push(w)
	b.unlock()

	w.sema.Acquire()

	// handoff is the last field the unparker writes, so loading it orders
	// every earlier write to w before the waiter is recycled.
	reason := WakeNormal
	if w.handoff.Load() {
		reason = WakeHandoff
	}
	waiterPool.Put(w)
	return reason
}

// UnparkOne wakes the goroutine that has been parked on addr the longest.
//
// fn, if not nil, is called with the bucket lock held, whether or not a
// waiter was found; callers use it to update their state word atomically
// with respect to Park's validation. Its result is delivered to the woken
// goroutine as WakeHandoff when true. UnparkOne reports whether a waiter
// was woken.
func UnparkOne(addr unsafe.Pointer, fn func(Unparked) bool) bool {
	key := uintptr(addr)
	b := bucketFor(key)

	b.lock()
	w := b.find(b.head, key)
	var u Unparked
	if w != nil {
		u.Found = true
		u.Arg = w.arg
		u.HasMore = b.find(w.next, key) != nil
		b.remove(w)
	}
	handoff := false
	if fn != nil {
		handoff = fn(u)
	}
	if w != nil {
		w.handoff.Store(handoff)
	}
	b.unlock()

	if w == nil {
		return false
	}
	w.sema.Release()
	return true
}

// UnparkAll wakes every goroutine parked on addr and returns how many were
// woken.
func UnparkAll(addr unsafe.Pointer) int {
	key := uintptr(addr)
	b := bucketFor(key)

	var stack [8]*waiter
	woken := stack[:0]

	b.lock()
	for w := b.find(b.head, key); w != nil; {
		next := b.find(w.next, key)
		b.remove(w)
		w.handoff.Store(false)
		woken = append(woken, w)
		w = next
	}
	b.unlock()

	for _, w := range woken {
		w.sema.Release()
	}
	return len(woken)
}
