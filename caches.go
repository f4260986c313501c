package objgraph

import (
	"sync"

	"github.com/cockroachdb/errors"
)

var errNotFound = errors.New("cache entry not found")

// cache is a concurrency-safe memo of derived values, such as the
// field codec for a reflect.Type. Derivation failures are cached
// alongside successes, so that an unrepresentable type is only
// examined once.
type cache[K comparable, V any] struct {
	m sync.Map
}

type cacheEntry[V any] struct {
	val V
	err error
}

// Get returns the cached value for k. If nothing is cached, Get
// returns errNotFound.
func (c *cache[K, V]) Get(k K) (V, error) {
	ent, ok := c.m.Load(k)
	if !ok {
		var zero V
		return zero, errNotFound
	}
	e := ent.(cacheEntry[V])
	return e.val, e.err
}

// Set caches val for k.
func (c *cache[K, V]) Set(k K, val V) {
	c.m.Store(k, cacheEntry[V]{val: val})
}

// SetErr caches err as the result of deriving k.
func (c *cache[K, V]) SetErr(k K, err error) {
	c.m.Store(k, cacheEntry[V]{err: err})
}

// Forget removes any cached result for k.
func (c *cache[K, V]) Forget(k K) {
	c.m.Delete(k)
}
