package flowtable

import (
	"flowpath/common"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Index holds the canonical flow table of every switch in one snapshot.
// It is read-only after Load.
type Index struct {
	tables map[common.Node]FlowTable
	nodes  []common.Node
}

// Load canonicalizes every entry of a raw flow-table snapshot
func Load(raw map[common.Node][]RawEntry) *Index {
	idx := &Index{
		tables: make(map[common.Node]FlowTable, len(raw)),
		nodes:  make([]common.Node, 0, len(raw)),
	}
	entries := 0
	for node, rawEntries := range raw {
		table := make(FlowTable, 0, len(rawEntries))
		for _, re := range rawEntries {
			table = append(table, NewFlowEntry(re))
		}
		idx.tables[node] = table
		idx.nodes = append(idx.nodes, node)
		entries += len(table)
	}
	slices.Sort(idx.nodes)

	log.Debugf("flowtable index loaded, switches: %d, entries: %d", len(idx.nodes), entries)
	return idx
}

// Lookup returns the first entry of node whose canonical match equals match exactly
func (idx *Index) Lookup(node common.Node, match Match) (*FlowEntry, bool) {
	for _, e := range idx.tables[node] {
		if e.Match.Equal(match) {
			return e, true
		}
	}
	return nil, false
}

// Table returns the entries of one switch in snapshot order
func (idx *Index) Table(node common.Node) FlowTable {
	return idx.tables[node]
}

// Nodes returns the switches that have a table, in ascending dpid order
func (idx *Index) Nodes() []common.Node {
	return slices.Clone(idx.nodes)
}
