package snapshot

import (
	"context"
	"fmt"

	"flowpath/common"
	"flowpath/flowtable"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// BuildTopology parses a topology snapshot into a TopologyGraph
func BuildTopology(t *Topology) (*common.TopologyGraph, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: empty topology snapshot", common.ErrFetch)
	}

	nodes := make([]common.Node, 0, len(t.Switches))
	for _, sw := range t.Switches {
		n, err := common.ParseDpid(sw)
		if err != nil {
			return nil, fmt.Errorf("%w: switches: %v", common.ErrFetch, err)
		}
		nodes = append(nodes, n)
	}

	links := make([]common.Link, 0, len(t.Links))
	for i, rl := range t.Links {
		src, err := parseEndpoint(rl.Src)
		if err != nil {
			return nil, fmt.Errorf("%w: link %d src: %v", common.ErrFetch, i, err)
		}
		dst, err := parseEndpoint(rl.Dst)
		if err != nil {
			return nil, fmt.Errorf("%w: link %d dst: %v", common.ErrFetch, i, err)
		}
		links = append(links, common.Link{Src: src, Dst: dst})
	}

	return common.NewTopologyGraph(nodes, links)
}

func parseEndpoint(re RawEndpoint) (common.Endpoint, error) {
	n, err := common.ParseDpid(re.Dpid)
	if err != nil {
		return common.Endpoint{}, err
	}
	p, err := common.ParsePort(re.Port)
	if err != nil {
		return common.Endpoint{}, err
	}
	return common.Endpoint{Node: n, Port: p}, nil
}

// BuildIndex parses a flow-table snapshot into a flowtable.Index.
// Two keys naming the same switch are rejected.
func BuildIndex(ft FlowTables) (*flowtable.Index, error) {
	keys := make([]string, 0, len(ft))
	for key := range ft {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	raw := make(map[common.Node][]flowtable.RawEntry, len(ft))
	seen := make(map[common.Node]string, len(ft))
	for _, key := range keys {
		n, err := common.ParseDpid(key)
		if err != nil {
			return nil, fmt.Errorf("%w: flow tables: %v", common.ErrFetch, err)
		}
		if prev, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: flow tables: keys %q and %q both name switch %d",
				common.ErrFetch, prev, key, n)
		}
		seen[n] = key
		raw[n] = ft[key]
	}
	return flowtable.Load(raw), nil
}

// LoadTopology fetches and builds the topology of scope
func LoadTopology(ctx context.Context, p Provider, scope Scope) (*common.TopologyGraph, error) {
	t, err := p.GetTopology(ctx, scope)
	if err != nil {
		return nil, err
	}
	g, err := BuildTopology(t)
	if err != nil {
		log.Errorf("LoadTopology: scope=%s, err:%v", scope, err)
		return nil, err
	}
	return g, nil
}

// Load fetches both snapshots of scope once and builds them.
// No partially built state is returned on error.
func Load(ctx context.Context, p Provider, scope Scope) (*common.TopologyGraph, *flowtable.Index, error) {
	g, err := LoadTopology(ctx, p, scope)
	if err != nil {
		return nil, nil, err
	}
	ft, err := p.GetFlowTables(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	idx, err := BuildIndex(ft)
	if err != nil {
		log.Errorf("Load: scope=%s, err:%v", scope, err)
		return nil, nil, err
	}
	log.Infof("Load: scope=%s, switches: %d, links: %d", scope, g.NodeCount(), g.LinkCount())
	return g, idx, nil
}
