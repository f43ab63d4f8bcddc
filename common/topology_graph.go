package common

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// TopologyGraph is the directed (node,port) -> (node,port) adjacency of one topology snapshot.
// It is read-only once built and safe for concurrent readers.
type TopologyGraph struct {
	nodes     []Node
	nodeSet   map[Node]struct{}
	links     []Link
	adjacency map[Endpoint]Endpoint
	outgoing  map[Node][]Node
	incoming  map[Node][]Node
}

var _ graph.Directed = (*TopologyGraph)(nil)

// NewTopologyGraph builds the adjacency from all links of a snapshot.
// Redundant reverse links are kept; a repeated source endpoint keeps its last destination.
func NewTopologyGraph(nodes []Node, links []Link) (*TopologyGraph, error) {
	t := &TopologyGraph{
		nodeSet:   make(map[Node]struct{}, len(nodes)),
		links:     make([]Link, 0, len(links)),
		adjacency: make(map[Endpoint]Endpoint, len(links)),
		outgoing:  make(map[Node][]Node),
		incoming:  make(map[Node][]Node),
	}

	for _, n := range nodes {
		if _, exists := t.nodeSet[n]; exists {
			continue
		}
		t.nodeSet[n] = struct{}{}
		t.nodes = append(t.nodes, n)
	}
	slices.Sort(t.nodes)

	for _, l := range links {
		if !t.HasNode(l.Src.Node) {
			return nil, fmt.Errorf("%w: link %v-%v references unknown switch %d",
				ErrMalformedTopology, l.Src, l.Dst, l.Src.Node)
		}
		if !t.HasNode(l.Dst.Node) {
			return nil, fmt.Errorf("%w: link %v-%v references unknown switch %d",
				ErrMalformedTopology, l.Src, l.Dst, l.Dst.Node)
		}
		if l.Src == l.Dst {
			return nil, fmt.Errorf("%w: port %v links to itself", ErrMalformedTopology, l.Src)
		}
		t.links = append(t.links, l)
		t.adjacency[l.Src] = l.Dst
	}

	// neighbor sets are derived from the final adjacency, parallel links collapse to one neighbor
	for src, dst := range t.adjacency {
		t.outgoing[src.Node] = appendUnique(t.outgoing[src.Node], dst.Node)
		t.incoming[dst.Node] = appendUnique(t.incoming[dst.Node], src.Node)
	}
	for n := range t.outgoing {
		slices.Sort(t.outgoing[n])
	}
	for n := range t.incoming {
		slices.Sort(t.incoming[n])
	}

	log.Debugf("NewTopologyGraph, node num: %d , link num: %d", len(t.nodes), len(t.links))
	return t, nil
}

func appendUnique(list []Node, n Node) []Node {
	if slices.Contains(list, n) {
		return list
	}
	return append(list, n)
}

// HasNode reports whether the switch is part of the snapshot
func (t *TopologyGraph) HasNode(n Node) bool {
	_, ok := t.nodeSet[n]
	return ok
}

// Neighbor returns the far end of the link leaving (node, port)
func (t *TopologyGraph) Neighbor(n Node, p Port) (Endpoint, bool) {
	dst, ok := t.adjacency[Endpoint{Node: n, Port: p}]
	return dst, ok
}

// IsLinkSource reports whether (node, port) faces another switch
func (t *TopologyGraph) IsLinkSource(n Node, p Port) bool {
	_, ok := t.adjacency[Endpoint{Node: n, Port: p}]
	return ok
}

// Neighbors returns the switches reachable through any outgoing port, in ascending order
func (t *TopologyGraph) Neighbors(n Node) []Node {
	return slices.Clone(t.outgoing[n])
}

// FindPorts returns the output port on a and the input port on b of the first live link a -> b.
// A link whose source endpoint was redefined later in the snapshot is not live.
func (t *TopologyGraph) FindPorts(a, b Node) (Port, Port, bool) {
	for _, l := range t.links {
		if l.Src.Node == a && l.Dst.Node == b && t.adjacency[l.Src] == l.Dst {
			return l.Src.Port, l.Dst.Port, true
		}
	}
	return 0, 0, false
}

// GetAllNodes returns every switch in ascending dpid order
func (t *TopologyGraph) GetAllNodes() []Node {
	return slices.Clone(t.nodes)
}

// Links returns the links in snapshot order
func (t *TopologyGraph) Links() []Link {
	return slices.Clone(t.links)
}

func (t *TopologyGraph) NodeCount() int {
	return len(t.nodes)
}

func (t *TopologyGraph) LinkCount() int {
	return len(t.links)
}

// Node implements graph.Graph
func (t *TopologyGraph) Node(id int64) graph.Node {
	if !t.HasNode(Node(id)) {
		return nil
	}
	return Node(id)
}

// Nodes implements graph.Graph
func (t *TopologyGraph) Nodes() graph.Nodes {
	return iterator.NewOrderedNodes(toGraphNodes(t.nodes))
}

// From implements graph.Graph
func (t *TopologyGraph) From(id int64) graph.Nodes {
	return iterator.NewOrderedNodes(toGraphNodes(t.outgoing[Node(id)]))
}

// To implements graph.Directed
func (t *TopologyGraph) To(id int64) graph.Nodes {
	return iterator.NewOrderedNodes(toGraphNodes(t.incoming[Node(id)]))
}

// HasEdgeFromTo implements graph.Directed
func (t *TopologyGraph) HasEdgeFromTo(uid, vid int64) bool {
	return slices.Contains(t.outgoing[Node(uid)], Node(vid))
}

// HasEdgeBetween implements graph.Graph
func (t *TopologyGraph) HasEdgeBetween(xid, yid int64) bool {
	return t.HasEdgeFromTo(xid, yid) || t.HasEdgeFromTo(yid, xid)
}

// Edge implements graph.Graph
func (t *TopologyGraph) Edge(uid, vid int64) graph.Edge {
	if !t.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return simple.Edge{F: Node(uid), T: Node(vid)}
}

func toGraphNodes(nodes []Node) []graph.Node {
	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}
