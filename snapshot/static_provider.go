package snapshot

import (
	"context"
	"fmt"
	"sync"

	"flowpath/common"
)

// StaticProvider serves snapshots held in memory
type StaticProvider struct {
	mu         sync.RWMutex
	topologies map[Scope]*Topology
	flowTables map[Scope]FlowTables
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		topologies: make(map[Scope]*Topology),
		flowTables: make(map[Scope]FlowTables),
	}
}

// Set replaces both snapshots of scope
func (sp *StaticProvider) Set(scope Scope, t *Topology, ft FlowTables) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.topologies[scope] = t
	sp.flowTables[scope] = ft
}

func (sp *StaticProvider) GetTopology(ctx context.Context, scope Scope) (*Topology, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	t, ok := sp.topologies[scope]
	if !ok {
		return nil, fmt.Errorf("%w: no topology for %s", common.ErrFetch, scope)
	}
	return t, nil
}

func (sp *StaticProvider) GetFlowTables(ctx context.Context, scope Scope) (FlowTables, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	ft, ok := sp.flowTables[scope]
	if !ok {
		return nil, fmt.Errorf("%w: no flow tables for %s", common.ErrFetch, scope)
	}
	return ft, nil
}
