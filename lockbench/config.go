package lockbench

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalidConfig is wrapped by every error Run returns for a bad Config.
var ErrInvalidConfig = errors.New("invalid lock benchmark config")

// Kind selects the primitive under test.
type Kind string

const (
	KindMutex     Kind = "mutex"
	KindRWMutex   Kind = "rwmutex"
	KindRecursive Kind = "recursive"
	KindSync      Kind = "sync"
)

// Kinds lists the supported primitives.
var Kinds = []Kind{KindMutex, KindRWMutex, KindRecursive, KindSync}

// Config describes one benchmark run.
type Config struct {
	// NumThreads is the number of worker goroutines.
	NumThreads int
	// WorkInside is the number of dependent additions performed while
	// holding the lock.
	WorkInside int
	// WorkOutside is the number of dependent additions performed between
	// acquisitions.
	WorkOutside int
	// Duration is how long a time-based run lasts. Ignored when TotalIters
	// is set.
	Duration time.Duration
	// NumAcquisitions is the number of back-to-back acquisitions per loop
	// iteration.
	NumAcquisitions int
	// TotalIters, when positive, makes every worker run exactly that many
	// acquisitions instead of running for Duration.
	TotalIters int64
	// NumLocks is the number of independent locks. Workers are assigned
	// home locks round-robin.
	NumLocks int
	// RandomLocks makes workers pick a random lock per iteration instead
	// of using their home lock.
	RandomLocks bool
	// Kind is the primitive under test. Empty means KindMutex.
	Kind Kind
	// ReadPercent is the share of acquisitions, from 0 to 100, taken in
	// read mode. Only KindRWMutex has a read mode; with the default of 0
	// every acquisition is exclusive.
	ReadPercent int
}

// DefaultConfig returns the configuration used when only the number of
// workers is given.
func DefaultConfig(numThreads int) Config {
	return Config{
		NumThreads:      numThreads,
		WorkInside:      1,
		WorkOutside:     0,
		Duration:        time.Second,
		NumAcquisitions: 1,
		TotalIters:      0,
		NumLocks:        1,
		RandomLocks:     false,
		Kind:            KindMutex,
	}
}

// Validate reports every problem with c.
func (c Config) Validate() error {
	var merr *multierror.Error
	if c.NumThreads < 1 {
		merr = multierror.Append(merr, fmt.Errorf("num threads must be >= 1, got %d", c.NumThreads))
	}
	if c.NumLocks < 1 {
		merr = multierror.Append(merr, fmt.Errorf("num locks must be >= 1, got %d", c.NumLocks))
	}
	if c.WorkInside < 0 {
		merr = multierror.Append(merr, fmt.Errorf("work inside must be >= 0, got %d", c.WorkInside))
	}
	if c.WorkOutside < 0 {
		merr = multierror.Append(merr, fmt.Errorf("work outside must be >= 0, got %d", c.WorkOutside))
	}
	if c.NumAcquisitions < 1 {
		merr = multierror.Append(merr, fmt.Errorf("num acquisitions must be >= 1, got %d", c.NumAcquisitions))
	}
	if c.TotalIters < 0 {
		merr = multierror.Append(merr, fmt.Errorf("total iters must be >= 0, got %d", c.TotalIters))
	}
	if c.TotalIters == 0 && c.Duration < 0 {
		merr = multierror.Append(merr, fmt.Errorf("duration must be >= 0, got %v", c.Duration))
	}
	kind, err := ParseKind(string(c.Kind))
	if err != nil {
		merr = multierror.Append(merr, err)
	}
	if c.ReadPercent < 0 || c.ReadPercent > 100 {
		merr = multierror.Append(merr, fmt.Errorf("read percent must be in [0, 100], got %d", c.ReadPercent))
	} else if c.ReadPercent > 0 && err == nil && kind != KindRWMutex {
		merr = multierror.Append(merr, fmt.Errorf("read percent requires lock kind %q, got %q", KindRWMutex, kind))
	}
	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseKind converts a name to a Kind. The empty string is KindMutex.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindMutex, nil
	}
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown lock kind %q", s)
}

// ParseThreads parses a thread count "N" or an inclusive range "MIN-MAX".
func ParseThreads(s string) (lo, hi int, err error) {
	loStr, hiStr, isRange := strings.Cut(s, "-")
	if lo, err = strconv.Atoi(strings.TrimSpace(loStr)); err != nil {
		return 0, 0, fmt.Errorf("parse threads %q: %w", s, err)
	}
	hi = lo
	if isRange {
		if hi, err = strconv.Atoi(strings.TrimSpace(hiStr)); err != nil {
			return 0, 0, fmt.Errorf("parse threads %q: %w", s, err)
		}
	}
	if lo < 1 || hi < lo {
		return 0, 0, fmt.Errorf("parse threads %q: want N >= 1 or MIN-MAX with 1 <= MIN <= MAX", s)
	}
	return lo, hi, nil
}
