package geometry

import "sync"

// layoutCache memoizes Layout values per (frameCount, scale). Pointer-move
// driven consumers (drag, loupe) recompute layout on every event, so the
// hot path must not allocate.
var layoutCache = &cache{entries: map[cacheKey]Layout{}}

type cacheKey struct {
	frameCount int
	scale      float64
}

type cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]Layout
}

func (c *cache) get(frameCount int, scale float64) (Layout, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.entries[cacheKey{frameCount, scale}]
	return l, ok
}

func (c *cache) put(l Layout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Bound the cache: frame counts are small and scales come from a fixed
	// set of DPI factors, but a hostile export payload could vary them.
	if len(c.entries) > 1024 {
		c.entries = map[cacheKey]Layout{}
	}
	c.entries[cacheKey{l.FrameCount, l.Scale}] = l
}
