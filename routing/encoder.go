package routing

import (
	"fmt"
	"strings"

	"flowpath/common"
)

// Hop is one inter-switch link of an encoded path
type Hop struct {
	Out common.Endpoint
	In  common.Endpoint
}

// String renders the hop as dpid/outPort-dpid/inPort with decimal dpids
func (h Hop) String() string {
	return fmt.Sprintf("%d/%d-%d/%d", h.Out.Node, h.Out.Port, h.In.Node, h.In.Port)
}

// Hops resolves the ports of every consecutive switch pair of path
func Hops(topology *common.TopologyGraph, path common.Path) ([]Hop, error) {
	if len(path) < 2 {
		return nil, nil
	}
	hops := make([]Hop, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		a, b := path[i], path[i+1]
		out, in, ok := topology.FindPorts(a, b)
		if !ok {
			return nil, fmt.Errorf("%w: switches %d and %d are not connected", common.ErrUnreachable, a, b)
		}
		hops = append(hops, Hop{
			Out: common.Endpoint{Node: a, Port: out},
			In:  common.Endpoint{Node: b, Port: in},
		})
	}
	return hops, nil
}

// Encode renders path in the wire hop-path format
// dpid1/outPort1-dpid2/inPort1,dpid2/outPort2-dpid3/inPort2,...
func Encode(topology *common.TopologyGraph, path common.Path) (string, error) {
	hops, err := Hops(topology, path)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(hops))
	for i, h := range hops {
		parts[i] = h.String()
	}
	return strings.Join(parts, ","), nil
}
