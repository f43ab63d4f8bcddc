package routing

import (
	"sync"

	"flowpath/common"
)

type routeKey struct {
	src common.Node
	dst common.Node
}

// RouteCache maps (src, dst) to a computed path.
// It normally lives for one query; the lock makes sharing across queries safe.
type RouteCache struct {
	mu    sync.RWMutex
	paths map[routeKey]common.Path
}

func NewRouteCache() *RouteCache {
	return &RouteCache{
		paths: make(map[routeKey]common.Path),
	}
}

// Get returns a copy of the cached path
func (c *RouteCache) Get(src, dst common.Node) (common.Path, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.paths[routeKey{src, dst}]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (c *RouteCache) Put(src, dst common.Node, path common.Path) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths[routeKey{src, dst}] = path.Clone()
}

func (c *RouteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.paths)
}
