package routing

import (
	"fmt"

	"flowpath/common"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// Router computes unweighted shortest paths over one topology
type Router struct {
	topology *common.TopologyGraph
	cache    *RouteCache
}

// NewRouter returns a router backed by cache, a nil cache gets a fresh per-query one
func NewRouter(topology *common.TopologyGraph, cache *RouteCache) *Router {
	if cache == nil {
		cache = NewRouteCache()
	}
	return &Router{
		topology: topology,
		cache:    cache,
	}
}

// ComputeDistances runs a breadth-first traversal from source.
// dist holds the hop count of every reachable switch, prev its predecessor on a shortest path.
func (r *Router) ComputeDistances(source common.Node) (map[common.Node]int, map[common.Node]common.Node, error) {
	if !r.topology.HasNode(source) {
		return nil, nil, fmt.Errorf("%w: switch %d is not part of the topology", common.ErrUnreachable, source)
	}

	dist := make(map[common.Node]int, r.topology.NodeCount())
	prev := make(map[common.Node]common.Node, r.topology.NodeCount())

	bf := traverse.BreadthFirst{
		// called before the visited check, so only the first edge reaching a switch sets prev
		Traverse: func(e graph.Edge) bool {
			from, to := common.Node(e.From().ID()), common.Node(e.To().ID())
			if _, seen := prev[to]; !seen && to != source {
				prev[to] = from
			}
			return true
		},
	}
	bf.Walk(r.topology, source, func(n graph.Node, depth int) bool {
		dist[common.Node(n.ID())] = depth
		return false
	})

	return dist, prev, nil
}

// Route returns the shortest path from src to dst, both inclusive.
// One traversal fills the cache for every destination reachable from src.
func (r *Router) Route(src, dst common.Node) (common.Path, error) {
	if p, ok := r.cache.Get(src, dst); ok {
		return p, nil
	}
	if !r.topology.HasNode(dst) {
		return nil, fmt.Errorf("%w: switch %d is not part of the topology", common.ErrUnreachable, dst)
	}

	dist, prev, err := r.ComputeDistances(src)
	if err != nil {
		return nil, err
	}

	for node := range dist {
		r.cache.Put(src, node, walkBack(src, node, prev))
	}

	if _, ok := dist[dst]; !ok {
		log.Warnf("Route: graph is disconnected, no path %d -> %d", src, dst)
		return nil, fmt.Errorf("%w: no path from %d to %d", common.ErrUnreachable, src, dst)
	}

	p, _ := r.cache.Get(src, dst)
	return p, nil
}

// walkBack follows predecessors from dst to src and reverses the result
func walkBack(src, dst common.Node, prev map[common.Node]common.Node) common.Path {
	path := common.Path{dst}
	for x := dst; x != src; {
		x = prev[x]
		path = append(path, x)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
