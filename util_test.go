package parkinglot

import (
	"testing"
	"time"
	"unsafe"
)

// waitUntil polls cond every 10ms for up to two seconds.
func waitUntil(cond func() bool) bool {
	for range 200 {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// parkedOn counts the goroutines parked on addr.
func parkedOn(addr unsafe.Pointer) int {
	key := uintptr(addr)
	b := bucketFor(key)
	b.lock()
	n := 0
	for w := b.find(b.head, key); w != nil; w = b.find(w.next, key) {
		n++
	}
	b.unlock()
	return n
}

// waitDone fails the test if done is not closed within a few seconds.
func waitDone(t *testing.T, done <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}
