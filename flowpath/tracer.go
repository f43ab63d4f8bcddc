package flowpath

import (
	"fmt"

	"flowpath/common"
	"flowpath/flowtable"
)

// Tracer follows the rule chain of a single flow across switches.
// It only reads the topology and the flow-table index.
type Tracer struct {
	topology *common.TopologyGraph
	index    *flowtable.Index
}

func NewTracer(topology *common.TopologyGraph, index *flowtable.Index) *Tracer {
	return &Tracer{
		topology: topology,
		index:    index,
	}
}

// Trace walks the chain starting from an ingress entry installed on start.
// It ends successfully when an OUTPUT port faces a host or an external port.
func (t *Tracer) Trace(start common.Node, entry *flowtable.FlowEntry) (common.Path, error) {
	match := entry.Match.Clone()
	visited := make(map[common.Endpoint]struct{})
	path := common.Path{start}
	node := start

	for {
		outPort, err := applyActions(match, entry)
		if err != nil {
			return nil, fmt.Errorf("%w: switch %d, match %v", err, node, entry.Raw)
		}

		next, isLink := t.topology.Neighbor(node, outPort)
		if !isLink {
			return path, nil
		}

		egress := common.Endpoint{Node: node, Port: outPort}
		if _, seen := visited[egress]; seen {
			return nil, fmt.Errorf("%w: port %v traversed twice, path so far %v",
				common.ErrLoopDetected, egress, path)
		}
		visited[egress] = struct{}{}

		path = append(path, next.Node)
		match.SetInPort(next.Port)

		nextEntry, found := t.index.Lookup(next.Node, match)
		if !found {
			return nil, fmt.Errorf("%w: switch %d has no entry for %v", common.ErrBrokenChain, next.Node, match)
		}
		node, entry = next.Node, nextEntry
	}
}

// applyActions rewrites fields already present in match and returns the output port.
// Rewrites never add a field the match does not carry.
func applyActions(match flowtable.Match, entry *flowtable.FlowEntry) (common.Port, error) {
	for _, a := range entry.Actions {
		if a.IsOutput() || a.Field == "" {
			continue
		}
		if _, exists := match[a.Field]; exists {
			match[a.Field] = a.Value
		}
	}
	port, ok := entry.OutputPort()
	if !ok {
		return 0, common.ErrNoOutputAction
	}
	return port, nil
}
