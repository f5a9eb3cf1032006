// Package goid identifies the calling goroutine.
package goid

import "github.com/petermattis/goid"

// Current returns the id of the calling goroutine. Ids are positive and
// never reused while the goroutine is alive.
func Current() int64 {
	return goid.Get()
}
