package parkinglot

import "github.com/llxisdsh/pb"

// OnceGroup is a set of Once flags keyed by K, created on first use.
// Initializers for different keys run independently; for the same key they
// follow Once semantics, including retry after failure.
//
// The zero value is ready to use.
type OnceGroup[K comparable] struct {
	m pb.HashTrieMap[K, *Once]
}

// Do runs fn through the Once for key.
func (g *OnceGroup[K]) Do(key K, fn func() error) error {
	return g.once(key).Do(fn)
}

// Done reports whether an initializer for key has succeeded.
func (g *OnceGroup[K]) Done(key K) bool {
	o, ok := g.m.Load(key)
	return ok && o.Done()
}

// Forget drops the flag for key, so the next Do for key runs its
// initializer again. Calls already waiting on the old flag are unaffected.
func (g *OnceGroup[K]) Forget(key K) {
	g.m.Delete(key)
}

func (g *OnceGroup[K]) once(key K) *Once {
	if o, ok := g.m.Load(key); ok {
		return o
	}
	o, _ := g.m.LoadOrStoreFn(key, func() *Once { return new(Once) })
	return o
}
