//go:build race

package opt

// Race_ reports whether the race detector is enabled.
// Tests use it to shrink workloads that are too slow under instrumentation.
const Race_ = true
