package assets

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// assetCache holds asset bytes read from the configured root. A
// filesystem watch on the root invalidates the whole cache whenever
// anything under it changes; decoration sets are replaced wholesale, so
// per-key invalidation buys nothing.
type assetCache struct {
	mu      sync.RWMutex
	entries map[string][]byte

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newAssetCache(root string) *assetCache {
	c := &assetCache{entries: map[string][]byte{}}
	if root == "" {
		return c
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("asset watch unavailable, caching without invalidation")
		return c
	}
	if err := w.Add(root); err != nil {
		log.Warn().Err(err).Str("root", root).Msg("cannot watch asset root")
		w.Close()
		return c
	}
	c.watcher = w
	c.done = make(chan struct{})
	go c.watch()
	return c
}

func (c *assetCache) watch() {
	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("asset root changed, flushing cache")
			c.mu.Lock()
			c.entries = map[string][]byte{}
			c.mu.Unlock()
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("asset watch error")
		case <-c.done:
			return
		}
	}
}

func (c *assetCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *assetCache) put(key string, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = b
}

func (c *assetCache) close() error {
	if c.watcher == nil {
		return nil
	}
	close(c.done)
	return c.watcher.Close()
}
