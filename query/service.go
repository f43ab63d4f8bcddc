package query

import (
	"context"

	"flowpath/common"
	"flowpath/flowpath"
	"flowpath/routing"
	"flowpath/snapshot"

	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"
)

// Service answers flowpath and route queries against freshly fetched snapshots.
// Every query fetches its own snapshots; nothing is kept between queries.
type Service struct {
	provider snapshot.Provider
	pool     *ants.Pool
}

// NewService returns a query service; a nil pool traces sequentially
func NewService(provider snapshot.Provider, pool *ants.Pool) *Service {
	return &Service{
		provider: provider,
		pool:     pool,
	}
}

// Collect returns every connected flowpath of scope keyed by "srcMac-dstMac"
func (s *Service) Collect(ctx context.Context, scope snapshot.Scope) (map[string]common.Path, error) {
	topology, index, err := snapshot.Load(ctx, s.provider, scope)
	if err != nil {
		log.Errorf("Collect: scope=%s, err:%v", scope, err)
		return nil, err
	}
	return flowpath.NewCollector(topology, index, s.pool).Collect(), nil
}

// Route returns the encoded shortest path from src to dst within scope
func (s *Service) Route(ctx context.Context, scope snapshot.Scope, src, dst common.Node) (string, error) {
	return s.RouteWithCache(ctx, scope, src, dst, nil)
}

// RouteWithCache is Route with a caller-owned cache, which must only be shared
// between queries over the same topology
func (s *Service) RouteWithCache(ctx context.Context, scope snapshot.Scope, src, dst common.Node, cache *routing.RouteCache) (string, error) {
	encoded, _, err := s.route(ctx, scope, src, dst, cache)
	return encoded, err
}

// RouteDetail returns the encoded route together with the switch sequence it was built from
func (s *Service) RouteDetail(ctx context.Context, scope snapshot.Scope, src, dst common.Node) (string, common.Path, error) {
	return s.route(ctx, scope, src, dst, nil)
}

func (s *Service) route(ctx context.Context, scope snapshot.Scope, src, dst common.Node, cache *routing.RouteCache) (string, common.Path, error) {
	topology, err := snapshot.LoadTopology(ctx, s.provider, scope)
	if err != nil {
		return "", nil, err
	}
	path, err := routing.NewRouter(topology, cache).Route(src, dst)
	if err != nil {
		return "", nil, err
	}
	encoded, err := routing.Encode(topology, path)
	if err != nil {
		return "", nil, err
	}
	return encoded, path, nil
}
