package snapshot

import (
	"context"
	"fmt"

	"flowpath/flowtable"
)

// Scope selects the physical topology (TenantID 0) or one tenant's virtual topology
type Scope struct {
	TenantID int `json:"tenantId"`
}

// Physical is the unscoped physical-network scope
var Physical = Scope{}

func Tenant(id int) Scope {
	return Scope{TenantID: id}
}

func (s Scope) IsPhysical() bool {
	return s.TenantID == 0
}

func (s Scope) String() string {
	if s.IsPhysical() {
		return "physical"
	}
	return fmt.Sprintf("tenant_%d", s.TenantID)
}

// RawEndpoint carries dpid and port as delivered, strings or numbers
type RawEndpoint struct {
	Dpid interface{} `json:"dpid" yaml:"dpid"`
	Port interface{} `json:"port" yaml:"port"`
}

type RawLink struct {
	Src RawEndpoint `json:"src" yaml:"src"`
	Dst RawEndpoint `json:"dst" yaml:"dst"`
}

// Topology is the getTopology result
type Topology struct {
	Switches []interface{} `json:"switches" yaml:"switches"`
	Links    []RawLink     `json:"links" yaml:"links"`
}

// FlowTables is the getFlowTables result, keyed by dpid
type FlowTables map[string][]flowtable.RawEntry

// Provider fetches already-consistent snapshots from the network-state service.
// Every failure is reported wrapping common.ErrFetch.
type Provider interface {
	GetTopology(ctx context.Context, scope Scope) (*Topology, error)
	GetFlowTables(ctx context.Context, scope Scope) (FlowTables, error)
}
