package common

import (
	"fmt"
	"strings"
)

// Node is a switch datapath identifier (dpid), unique within one snapshot
type Node uint64

// ID implements gonum's graph.Node so a TopologyGraph can be walked by graph/traverse.
// The uint64 -> int64 conversion is a bijection, Node(n.ID()) recovers the dpid.
func (n Node) ID() int64 {
	return int64(n)
}

// Port is a port number, unique within a Node
type Port uint32

// Endpoint is one side of a link
type Endpoint struct {
	Node Node `json:"dpid"`
	Port Port `json:"port"`
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%d/%d", e.Node, e.Port)
}

// Link is a directed association Src -> Dst
type Link struct {
	Src Endpoint `json:"src"`
	Dst Endpoint `json:"dst"`
}

// Path represents a routing path, first and last nodes face the edge of the network
type Path []Node

// Clone returns a copy that does not share the backing array
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// Strings renders every node in the colon-hex dpid form used by the control plane
func (p Path) Strings() []string {
	s := make([]string, len(p))
	for i, n := range p {
		s[i] = FormatDpid(n)
	}
	return s
}

func (p Path) String() string {
	s := make([]string, len(p))
	for i, n := range p {
		s[i] = fmt.Sprintf("%d", n)
	}
	return "[" + strings.Join(s, " ") + "]"
}
