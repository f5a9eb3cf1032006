package benchmark

import (
	"strconv"
	"sync"
	"testing"

	xsf "golang.org/x/sync/singleflight"

	"github.com/llxisdsh/parkinglot"
)

func BenchmarkOnce(b *testing.B) {
	b.ReportAllocs()
	var o parkinglot.Once
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = o.Do(func() error { return nil })
		}
	})
}

func BenchmarkOnce_Sync(b *testing.B) {
	b.ReportAllocs()
	var o sync.Once
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			o.Do(func() {})
		}
	})
}

func BenchmarkEvent_Notified(b *testing.B) {
	b.ReportAllocs()
	var e parkinglot.Event
	e.Notify()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			e.Wait()
		}
	})
}

var keys = func() []string {
	ks := make([]string, 1024)
	for i := range ks {
		ks[i] = "k_" + strconv.Itoa(i)
	}
	return ks
}()

// Every key is initialized once and then only observed as done.
func BenchmarkOnceGroupManyKeys(b *testing.B) {
	b.ReportAllocs()
	var g parkinglot.OnceGroup[string]
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = g.Do(keys[i&1023], func() error {
				heavyWork(64)
				return nil
			})
			i++
		}
	})
}

// singleflight forgets a key once its call returns, so duplicate work is
// only suppressed among overlapping callers.
func BenchmarkOnceGroupManyKeys_SingleFlight(b *testing.B) {
	b.ReportAllocs()
	var g xsf.Group
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _, _ = g.Do(keys[i&1023], func() (any, error) {
				heavyWork(64)
				return nil, nil
			})
			i++
		}
	})
}
