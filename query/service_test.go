package query

import (
	"context"
	"errors"
	"testing"

	"flowpath/common"
	"flowpath/flowtable"
	"flowpath/routing"
	"flowpath/snapshot"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawLink(src, srcPort, dst, dstPort string) snapshot.RawLink {
	return snapshot.RawLink{
		Src: snapshot.RawEndpoint{Dpid: src, Port: srcPort},
		Dst: snapshot.RawEndpoint{Dpid: dst, Port: dstPort},
	}
}

func flowEntry(inPort string, src, dst string, outPort int) flowtable.RawEntry {
	return flowtable.RawEntry{
		Match:   map[string]interface{}{"in_port": inPort, "dl_src": src, "dl_dst": dst},
		Actions: []map[string]interface{}{{"type": "OUTPUT", "port": float64(outPort)}},
	}
}

// newProvider serves S1:2 <-> S2:1 physically and a disconnected pair for tenant 1
func newProvider() *snapshot.StaticProvider {
	p := snapshot.NewStaticProvider()
	p.Set(snapshot.Physical,
		&snapshot.Topology{
			Switches: []interface{}{"00:00:00:00:00:00:00:01", "00:00:00:00:00:00:00:02"},
			Links: []snapshot.RawLink{
				rawLink("00:00:00:00:00:00:00:01", "2", "00:00:00:00:00:00:00:02", "1"),
				rawLink("00:00:00:00:00:00:00:02", "1", "00:00:00:00:00:00:00:01", "2"),
			},
		},
		snapshot.FlowTables{
			"00:00:00:00:00:00:00:01": {flowEntry("1", "A", "B", 2)},
			"00:00:00:00:00:00:00:02": {flowEntry("1", "A", "B", 2)},
		},
	)
	p.Set(snapshot.Tenant(1),
		&snapshot.Topology{Switches: []interface{}{"1", "2"}},
		snapshot.FlowTables{},
	)
	return p
}

func TestServiceCollect(t *testing.T) {
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	defer pool.Release()

	for name, svc := range map[string]*Service{
		"sequential": NewService(newProvider(), nil),
		"pooled":     NewService(newProvider(), pool),
	} {
		t.Run(name, func(t *testing.T) {
			paths, err := svc.Collect(context.Background(), snapshot.Physical)
			require.NoError(t, err)
			assert.Equal(t, map[string]common.Path{"A-B": {1, 2}}, paths)

			paths, err = svc.Collect(context.Background(), snapshot.Tenant(1))
			require.NoError(t, err)
			assert.Empty(t, paths)

			_, err = svc.Collect(context.Background(), snapshot.Tenant(5))
			assert.True(t, errors.Is(err, common.ErrFetch))
		})
	}
}

func TestServiceRoute(t *testing.T) {
	svc := NewService(newProvider(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		scope   snapshot.Scope
		src     common.Node
		dst     common.Node
		want    string
		wantErr error
	}{
		{name: "one hop", scope: snapshot.Physical, src: 1, dst: 2, want: "1/2-2/1"},
		{name: "reverse hop", scope: snapshot.Physical, src: 2, dst: 1, want: "2/1-1/2"},
		{name: "same switch", scope: snapshot.Physical, src: 1, dst: 1, want: ""},
		{name: "unknown switch", scope: snapshot.Physical, src: 1, dst: 9, wantErr: common.ErrUnreachable},
		{name: "disconnected tenant", scope: snapshot.Tenant(1), src: 1, dst: 2, wantErr: common.ErrUnreachable},
		{name: "missing snapshot", scope: snapshot.Tenant(5), src: 1, dst: 2, wantErr: common.ErrFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Route(ctx, tt.scope, tt.src, tt.dst)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServiceRouteWithCache(t *testing.T) {
	svc := NewService(newProvider(), nil)
	cache := routing.NewRouteCache()

	got, err := svc.RouteWithCache(context.Background(), snapshot.Physical, 1, 2, cache)
	require.NoError(t, err)
	assert.Equal(t, "1/2-2/1", got)
	assert.Equal(t, 2, cache.Len())

	encoded, path, err := svc.RouteDetail(context.Background(), snapshot.Physical, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "2/1-1/2", encoded)
	assert.Equal(t, common.Path{2, 1}, path)
}
