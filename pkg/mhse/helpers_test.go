package mhse

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
)

func buildGraph(t *testing.T, n int, arcs [][2]int) *graph.CSR {
	t.Helper()
	b := graph.NewBuilder(n)
	for _, a := range arcs {
		require.NoError(t, b.AddArc(a[0], a[1]))
	}
	return b.Build()
}

func completeGraph(t *testing.T, n int) *graph.CSR {
	var arcs [][2]int
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if u != v {
				arcs = append(arcs, [2]int{u, v})
			}
		}
	}
	return buildGraph(t, n, arcs)
}

func pathGraph(t *testing.T, length int) *graph.CSR {
	var arcs [][2]int
	for v := 0; v < length; v++ {
		arcs = append(arcs, [2]int{v, v + 1})
	}
	return buildGraph(t, length+1, arcs)
}

func cycleGraph(t *testing.T, n int) *graph.CSR {
	var arcs [][2]int
	for v := 0; v < n; v++ {
		arcs = append(arcs, [2]int{v, (v + 1) % n})
	}
	return buildGraph(t, n, arcs)
}

func randomGraph(t *testing.T, n, m int, seed int64) *graph.CSR {
	rng := rand.New(rand.NewSource(seed))
	arcs := make([][2]int, 0, m)
	for len(arcs) < m {
		u, v := rng.Intn(n), rng.Intn(n)
		if u != v {
			arcs = append(arcs, [2]int{u, v})
		}
	}
	return buildGraph(t, n, arcs)
}

func testSeeds(k int) []uint32 {
	return GenerateSeeds(k, rand.New(rand.NewSource(1)))
}

func testParams(seeds []uint32) Params {
	return Params{
		Seeds:      seeds,
		Direction:  graph.In,
		Threshold:  0.9,
		NumWorkers: 1,
	}
}

// exactDiameter is the largest finite distance between any ordered pair.
func exactDiameter(g graph.Graph) int {
	dg := simple.NewDirectedGraph()
	for v := 0; v < g.NumNodes(); v++ {
		dg.AddNode(simple.Node(v))
	}
	for v := 0; v < g.NumNodes(); v++ {
		for _, u := range g.Successors(v) {
			dg.SetEdge(simple.Edge{F: simple.Node(v), T: simple.Node(int64(u))})
		}
	}

	diameter := 0
	for v := 0; v < g.NumNodes(); v++ {
		var bfs traverse.BreadthFirst
		bfs.Walk(dg, simple.Node(v), func(_ gonum.Node, depth int) bool {
			diameter = max(diameter, depth)
			return false
		})
	}
	return diameter
}
