package upstream

import "sync"

// pageCache holds the last successful non-empty catalog page. A single fixed
// key exists, so the cache is just a guarded pointer.
type pageCache struct {
	mu   sync.RWMutex
	page *CatalogPage
}

func (c *pageCache) Get() (*CatalogPage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page, c.page != nil
}

// Set stores the page. Empty pages are never cached so a transient
// empty/fallback result cannot mask the real catalog.
func (c *pageCache) Set(page *CatalogPage) {
	if page == nil || len(page.Recipes) == 0 {
		return
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
}

// Invalidate clears the cached page unconditionally.
func (c *pageCache) Invalidate() {
	c.mu.Lock()
	c.page = nil
	c.mu.Unlock()
}
