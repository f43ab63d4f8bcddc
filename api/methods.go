package api

import (
	"context"
	"encoding/json"
	"fmt"

	"flowpath/common"
	"flowpath/query"
	"flowpath/snapshot"

	"golang.org/x/exp/slices"
)

// MethodHandler serves one JSON-RPC method
type MethodHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// MethodRegistry is the explicit name to handler table of the JSON-RPC surface
type MethodRegistry map[string]MethodHandler

func (r MethodRegistry) Register(name string, h MethodHandler) {
	r[name] = h
}

func (r MethodRegistry) Lookup(name string) (MethodHandler, bool) {
	h, ok := r[name]
	return h, ok
}

// Names returns the registered method names in sorted order
func (r MethodRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type tenantParams struct {
	TenantID int `json:"tenantId"`
}

type routeParams struct {
	TenantID int         `json:"tenantId"`
	Src      interface{} `json:"src"`
	Dst      interface{} `json:"dst"`
}

// RouteResult carries the encoded hop sequence of a route
type RouteResult struct {
	Route string   `json:"route"`
	Path  []string `json:"path"`
}

func newMethodRegistry(service *query.Service) MethodRegistry {
	r := MethodRegistry{}
	r.Register("getPhysicalFlowpaths", func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
		return collectFlowpaths(ctx, service, snapshot.Physical)
	})
	r.Register("getVirtualFlowpaths", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var p tenantParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.TenantID <= 0 {
			return nil, fmt.Errorf("%w: tenantId must be positive", errInvalidParams)
		}
		return collectFlowpaths(ctx, service, snapshot.Tenant(p.TenantID))
	})
	r.Register("getRoute", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var p routeParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.TenantID < 0 {
			return nil, fmt.Errorf("%w: tenantId must be a non-negative integer", errInvalidParams)
		}
		return route(ctx, service, snapshot.Tenant(p.TenantID), p.Src, p.Dst)
	})
	return r
}

func decodeParams(params json.RawMessage, out interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: missing params", errInvalidParams)
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// collectFlowpaths renders every path with colon-hex dpids
func collectFlowpaths(ctx context.Context, service *query.Service, scope snapshot.Scope) (map[string][]string, error) {
	paths, err := service.Collect(ctx, scope)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]string, len(paths))
	for key, path := range paths {
		result[key] = path.Strings()
	}
	return result, nil
}

func route(ctx context.Context, service *query.Service, scope snapshot.Scope, rawSrc, rawDst interface{}) (*RouteResult, error) {
	src, err := common.ParseDpid(rawSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: src: %v", errInvalidParams, err)
	}
	dst, err := common.ParseDpid(rawDst)
	if err != nil {
		return nil, fmt.Errorf("%w: dst: %v", errInvalidParams, err)
	}
	encoded, path, err := service.RouteDetail(ctx, scope, src, dst)
	if err != nil {
		return nil, err
	}
	return &RouteResult{Route: encoded, Path: path.Strings()}, nil
}
