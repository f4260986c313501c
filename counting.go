package objgraph

import (
	"maps"
	"sync"
)

// CountingRegistry is a Registry with the same registrations as
// another, that counts how many objects of each type tag its factories
// construct. Reading a stream with it as [Options.Types] counts the
// distinct objects of each type in the stream.
type CountingRegistry struct {
	*Registry

	mu     sync.Mutex
	counts map[string]int
}

// NewCountingRegistry returns a CountingRegistry that resolves every
// tag known to src.
func NewCountingRegistry(src *Registry) *CountingRegistry {
	ret := &CountingRegistry{
		Registry: NewRegistry(),
		counts:   map[string]int{},
	}
	for _, tag := range src.Tags() {
		ret.MustRegister(tag, func() Object {
			ret.inc(tag)
			obj, _ := src.New(tag)
			return obj
		})
	}
	// Registration constructs a sample of each type.
	ret.Reset()
	return ret
}

func (r *CountingRegistry) inc(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[tag]++
}

// Count returns the number of objects constructed for tag since the
// last Reset.
func (r *CountingRegistry) Count(tag string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[tag]
}

// Counts returns the non-zero counts of every tag.
func (r *CountingRegistry) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := maps.Clone(r.counts)
	maps.DeleteFunc(ret, func(_ string, n int) bool { return n == 0 })
	return ret
}

// Reset zeroes all counts.
func (r *CountingRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.counts)
}
