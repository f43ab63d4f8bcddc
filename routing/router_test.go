package routing

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"flowpath/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ep(n common.Node, p common.Port) common.Endpoint {
	return common.Endpoint{Node: n, Port: p}
}

// biLinks adds a link pair a/pa <-> b/pb
func biLinks(a common.Node, pa common.Port, b common.Node, pb common.Port) []common.Link {
	return []common.Link{
		{Src: ep(a, pa), Dst: ep(b, pb)},
		{Src: ep(b, pb), Dst: ep(a, pa)},
	}
}

// line 1 - 2 - 3 - 4, plus an isolated switch 5
func newLine(t *testing.T) *common.TopologyGraph {
	var links []common.Link
	links = append(links, biLinks(1, 2, 2, 1)...)
	links = append(links, biLinks(2, 2, 3, 1)...)
	links = append(links, biLinks(3, 2, 4, 1)...)
	g, err := common.NewTopologyGraph([]common.Node{1, 2, 3, 4, 5}, links)
	require.NoError(t, err)
	return g
}

// generateRandomTopology connects nodeCount switches with a spanning chain plus
// random extra links; a few trailing switches stay isolated
func generateRandomTopology(t *testing.T, rng *rand.Rand, nodeCount, isolated int, density float64) *common.TopologyGraph {
	nodes := make([]common.Node, nodeCount)
	nextPort := make(map[common.Node]common.Port, nodeCount)
	for i := range nodes {
		nodes[i] = common.Node(i + 1)
		nextPort[nodes[i]] = 1
	}
	connect := func(a, b common.Node) []common.Link {
		pa, pb := nextPort[a], nextPort[b]
		nextPort[a]++
		nextPort[b]++
		return biLinks(a, pa, b, pb)
	}

	connected := nodeCount - isolated
	var links []common.Link
	for i := 1; i < connected; i++ {
		links = append(links, connect(nodes[rng.Intn(i)], nodes[i])...)
	}
	for i := 0; i < connected; i++ {
		for j := i + 1; j < connected; j++ {
			if rng.Float64() < density {
				links = append(links, connect(nodes[i], nodes[j])...)
			}
		}
	}

	g, err := common.NewTopologyGraph(nodes, links)
	require.NoError(t, err)
	return g
}

func TestRouteLine(t *testing.T) {
	g := newLine(t)
	router := NewRouter(g, nil)

	tests := []struct {
		name    string
		src     common.Node
		dst     common.Node
		want    common.Path
		wantErr error
	}{
		{name: "same switch", src: 2, dst: 2, want: common.Path{2}},
		{name: "adjacent", src: 1, dst: 2, want: common.Path{1, 2}},
		{name: "end to end", src: 1, dst: 4, want: common.Path{1, 2, 3, 4}},
		{name: "reverse", src: 4, dst: 1, want: common.Path{4, 3, 2, 1}},
		{name: "disconnected", src: 1, dst: 5, wantErr: common.ErrUnreachable},
		{name: "unknown destination", src: 1, dst: 42, wantErr: common.ErrUnreachable},
		{name: "unknown source", src: 42, dst: 1, wantErr: common.ErrUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := router.Route(tt.src, tt.dst)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, path)
		})
	}
}

func TestComputeDistances(t *testing.T) {
	g := newLine(t)
	router := NewRouter(g, nil)

	dist, prev, err := router.ComputeDistances(2)
	require.NoError(t, err)
	assert.Equal(t, map[common.Node]int{1: 1, 2: 0, 3: 1, 4: 2}, dist)
	assert.Equal(t, map[common.Node]common.Node{1: 2, 3: 2, 4: 3}, prev)
}

func TestRouteCacheFill(t *testing.T) {
	g := newLine(t)
	cache := NewRouteCache()
	router := NewRouter(g, cache)

	_, err := router.Route(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, cache.Len(), "one traversal caches every reachable switch")

	cached, ok := cache.Get(1, 4)
	require.True(t, ok)
	assert.Equal(t, common.Path{1, 2, 3, 4}, cached)

	// callers get copies
	cached[0] = 99
	again, _ := cache.Get(1, 4)
	assert.Equal(t, common.Node(1), again[0])

	path, err := router.Route(1, 4)
	require.NoError(t, err)
	path[1] = 77
	again, _ = router.Route(1, 4)
	assert.Equal(t, common.Path{1, 2, 3, 4}, again)
}

func TestRouteRandomTopology(t *testing.T) {
	const randomSeed int64 = 42
	rng := rand.New(rand.NewSource(randomSeed))
	g := generateRandomTopology(t, rng, 40, 3, 0.05)
	router := NewRouter(g, nil)
	nodes := g.GetAllNodes()

	for _, src := range nodes {
		dist, _, err := router.ComputeDistances(src)
		require.NoError(t, err)

		for _, dst := range nodes {
			path, err := router.Route(src, dst)
			if _, reachable := dist[dst]; !reachable {
				assert.True(t, errors.Is(err, common.ErrUnreachable), "%d -> %d", src, dst)
				continue
			}
			require.NoError(t, err, "%d -> %d", src, dst)

			assert.Equal(t, src, path[0])
			assert.Equal(t, dst, path[len(path)-1])
			assert.Equal(t, dist[dst]+1, len(path), "path %v is not shortest", path)

			seen := make(map[common.Node]bool, len(path))
			for i, n := range path {
				assert.False(t, seen[n], "path %v repeats %d", path, n)
				seen[n] = true
				if i > 0 {
					assert.True(t, g.HasEdgeFromTo(path[i-1].ID(), n.ID()), "path %v uses a missing link", path)
				}
			}

			encoded, err := Encode(g, path)
			require.NoError(t, err)
			if len(path) == 1 {
				assert.Empty(t, encoded)
			} else {
				assert.Len(t, strings.Split(encoded, ","), len(path)-1)
			}
		}
	}
}
