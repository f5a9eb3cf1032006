package parkinglot

import "sync/atomic"

// bitLock acquires a bit-lock on the given address using the specified bit
// mask. It assumes the lock is held if (value & mask) != 0 and spins until
// the lock can be acquired.
//
// Parking-lot buckets use it: their critical sections are a handful of
// pointer updates, so blocking would cost more than spinning.
func bitLock(addr *uint32, mask uint32) {
	cur := atomic.LoadUint32(addr)
	if atomic.CompareAndSwapUint32(addr, cur&^mask, cur|mask) {
		return
	}
	slowBitLock(addr, mask)
}

func slowBitLock(addr *uint32, mask uint32) {
	var spins int
	for !tryBitLock(addr, mask) {
		delay(&spins)
	}
}

//go:nosplit
func tryBitLock(addr *uint32, mask uint32) bool {
	for {
		cur := atomic.LoadUint32(addr)
		if cur&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(addr, cur, cur|mask) {
			return true
		}
	}
}

// bitUnlock releases the bit-lock by clearing the specified bit mask.
// It preserves other bits in the value.
//
//go:nosplit
func bitUnlock(addr *uint32, mask uint32) {
	for {
		cur := atomic.LoadUint32(addr)
		if atomic.CompareAndSwapUint32(addr, cur, cur&^mask) {
			return
		}
	}
}
