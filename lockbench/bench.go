// Package lockbench measures lock throughput and fairness under
// configurable contention.
//
// Each worker goroutine repeatedly acquires a lock, performs a chain of
// dependent floating-point additions on the value the lock protects, and
// releases it. The design follows the WebKit lock benchmarks:
// https://webkit.org/blog/6161/locking-in-webkit/
package lockbench

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/llxisdsh/parkinglot"
	"github.com/llxisdsh/parkinglot/internal/opt"
)

// lockPad keeps neighboring lock records at least 200 bytes apart, which
// spans more than two cache lines on common hardware.
const lockPad = (200 + opt.CacheLineSize_ - 1) / opt.CacheLineSize_ * opt.CacheLineSize_

// benchLock is one lock under test together with the value it protects.
// Only the field matching the run's Kind is used.
type benchLock struct {
	_     [lockPad]byte
	mu    parkinglot.Mutex
	rw    parkinglot.RWMutex
	rec   parkinglot.RecursiveMutex
	std   sync.Mutex
	value float64
}

type lockOps struct {
	lock   func(*benchLock)
	unlock func(*benchLock)
	// rlock and runlock are nil for kinds without a shared mode.
	rlock   func(*benchLock)
	runlock func(*benchLock)
}

func opsFor(k Kind) lockOps {
	switch k {
	case KindRWMutex:
		return lockOps{
			lock:    func(l *benchLock) { l.rw.Lock() },
			unlock:  func(l *benchLock) { l.rw.Unlock() },
			rlock:   func(l *benchLock) { l.rw.RLock() },
			runlock: func(l *benchLock) { l.rw.RUnlock() },
		}
	case KindRecursive:
		return lockOps{
			lock:   func(l *benchLock) { l.rec.Lock() },
			unlock: func(l *benchLock) { l.rec.Unlock() },
		}
	case KindSync:
		return lockOps{
			lock:   func(l *benchLock) { l.std.Lock() },
			unlock: func(l *benchLock) { l.std.Unlock() },
		}
	default:
		return lockOps{
			lock:   func(l *benchLock) { l.mu.Lock() },
			unlock: func(l *benchLock) { l.mu.Unlock() },
		}
	}
}

type worker struct {
	lock  *benchLock
	rng   uint64
	iters int64
	done  parkinglot.Event
}

type bench struct {
	cfg   Config
	ops   lockOps
	locks []benchLock
	stop  atomic.Bool
}

// Result is the outcome of a benchmark run.
type Result struct {
	// Rate is the total number of acquisitions per second.
	Rate float64
	// ThreadIters holds the number of acquisitions made by each worker.
	ThreadIters []int64
	// Elapsed is the wall-clock time from starting the first worker to the
	// last worker finishing.
	Elapsed time.Duration
}

// Fairness returns Jain's fairness index of the per-worker acquisitions.
func (r *Result) Fairness() float64 {
	return Fairness(r.ThreadIters)
}

// Run executes the benchmark described by cfg.
//
// When cfg.TotalIters is zero the run lasts cfg.Duration, or until ctx is
// done, whichever comes first. Otherwise every worker runs to its own
// target and ctx is not consulted.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kind, _ := ParseKind(string(cfg.Kind))

	b := &bench{
		cfg:   cfg,
		ops:   opsFor(kind),
		locks: make([]benchLock, cfg.NumLocks),
	}
	workers := make([]worker, cfg.NumThreads)

	start := time.Now()
	for i := range workers {
		w := &workers[i]
		w.lock = &b.locks[i%cfg.NumLocks]
		w.rng = uint64(i) + 1
		go b.work(w)
	}

	if cfg.TotalIters == 0 {
		timer := time.NewTimer(cfg.Duration)
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		timer.Stop()
		b.stop.Store(true)
	}

	for i := range workers {
		workers[i].done.Wait()
	}
	elapsed := time.Since(start)
	if elapsed <= 0 {
		elapsed = 1
	}

	res := &Result{
		ThreadIters: make([]int64, len(workers)),
		Elapsed:     elapsed,
	}
	var sum int64
	for i := range workers {
		res.ThreadIters[i] = workers[i].iters
		sum += workers[i].iters
	}
	res.Rate = float64(sum) * 1e9 / float64(elapsed.Nanoseconds())

	slog.Debug("lock benchmark finished",
		slog.String("kind", string(kind)),
		slog.Int("threads", cfg.NumThreads),
		slog.Int("locks", cfg.NumLocks),
		slog.Int("read_percent", cfg.ReadPercent),
		slog.Int64("acquisitions", sum),
		slog.Duration("elapsed", elapsed),
		slog.Float64("rate", res.Rate),
	)
	return res, nil
}

// BenchmarkLocks is Run with positional arguments and the time budget in
// milliseconds. It returns the rate, the per-worker acquisition counts and
// the elapsed nanoseconds.
func BenchmarkLocks(
	numThreads, workInside, workOutside, timeMS, numAcquisitions int,
	totalIters int64,
	numLocks int,
	randomLocks bool,
) (float64, []int64, int64, error) {
	res, err := Run(context.Background(), Config{
		NumThreads:      numThreads,
		WorkInside:      workInside,
		WorkOutside:     workOutside,
		Duration:        time.Duration(timeMS) * time.Millisecond,
		NumAcquisitions: numAcquisitions,
		TotalIters:      totalIters,
		NumLocks:        numLocks,
		RandomLocks:     randomLocks,
		Kind:            KindMutex,
	})
	if err != nil {
		return 0, nil, 0, err
	}
	return res.Rate, res.ThreadIters, res.Elapsed.Nanoseconds(), nil
}

func (b *bench) work(w *worker) {
	cfg := &b.cfg
	lock, unlock := b.ops.lock, b.ops.unlock
	rlock, runlock := b.ops.rlock, b.ops.runlock
	rng := w.rng

	// my and local form a dependency chain through the protected value,
	// so the compiler cannot hoist or batch the additions.
	local, my := 0.0, 1.0
	var iters int64
	for {
		if cfg.TotalIters > 0 {
			if iters >= cfg.TotalIters {
				break
			}
		} else if b.stop.Load() {
			break
		}

		l := w.lock
		if cfg.RandomLocks {
			l = &b.locks[bounded(uint32(splitmix64(&rng)), len(b.locks))]
		}
		for range cfg.NumAcquisitions {
			if cfg.ReadPercent > 0 && bounded(uint32(splitmix64(&rng)), 100) < cfg.ReadPercent {
				rlock(l)
				for range cfg.WorkInside {
					my += l.value
				}
				runlock(l)
				continue
			}
			lock(l)
			for range cfg.WorkInside {
				l.value += my
				my = l.value
			}
			unlock(l)
		}
		for range cfg.WorkOutside {
			local += my
			my = local
		}
		iters += int64(cfg.NumAcquisitions)
	}

	w.rng = rng
	w.iters = iters
	w.done.Notify()
}
