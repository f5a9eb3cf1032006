package benchmark

import (
	"sync"
	"testing"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/llxisdsh/parkinglot"
)

type locker interface {
	Lock()
	Unlock()
}

func benchLocker(b *testing.B, mu locker, work int) {
	b.ReportAllocs()
	var shared int
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			shared += heavyWork(work)
			mu.Unlock()
		}
	})
	_ = shared
}

func BenchmarkMutex(b *testing.B) {
	b.Run("empty", func(b *testing.B) { benchLocker(b, &parkinglot.Mutex{}, 0) })
	b.Run("work", func(b *testing.B) { benchLocker(b, &parkinglot.Mutex{}, 64) })
}

func BenchmarkMutex_Sync(b *testing.B) {
	b.Run("empty", func(b *testing.B) { benchLocker(b, &sync.Mutex{}, 0) })
	b.Run("work", func(b *testing.B) { benchLocker(b, &sync.Mutex{}, 64) })
}

func BenchmarkRecursiveMutex(b *testing.B) {
	b.ReportAllocs()
	var mu parkinglot.RecursiveMutex
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			mu.Lock()
			mu.Unlock()
			mu.Unlock()
		}
	})
}

// Readers take the lock 15 times for every write.
func BenchmarkRWMutex(b *testing.B) {
	b.ReportAllocs()
	var mu parkinglot.RWMutex
	var shared int
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i&15 == 0 {
				mu.Lock()
				shared++
				mu.Unlock()
			} else {
				mu.RLock()
				_ = heavyWork(16) + shared
				mu.RUnlock()
			}
			i++
		}
	})
}

func BenchmarkRWMutex_Sync(b *testing.B) {
	b.ReportAllocs()
	var mu sync.RWMutex
	var shared int
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i&15 == 0 {
				mu.Lock()
				shared++
				mu.Unlock()
			} else {
				mu.RLock()
				_ = heavyWork(16) + shared
				mu.RUnlock()
			}
			i++
		}
	})
}

func BenchmarkRWMutex_XsyncRB(b *testing.B) {
	b.ReportAllocs()
	mu := xsync.NewRBMutex()
	var shared int
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i&15 == 0 {
				mu.Lock()
				shared++
				mu.Unlock()
			} else {
				t := mu.RLock()
				_ = heavyWork(16) + shared
				mu.RUnlock(t)
			}
			i++
		}
	})
}

// Simple CPU-heavy loop to simulate workload.
func heavyWork(n int) int {
	x := 0
	for i := 0; i < n; i++ {
		x ^= i * 31
		x += i >> 1
	}
	return x
}
