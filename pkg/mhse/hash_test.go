package mhse

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	for node := 0; node < 100; node++ {
		require.Equal(t, Hash(node, 7), Hash(node, 7))
	}
}

func TestHashSpreads(t *testing.T) {
	seen := make(map[int64]struct{})
	for node := 0; node < 1000; node++ {
		seen[Hash(node, 42)] = struct{}{}
	}
	require.Len(t, seen, 1000)

	differs := 0
	for node := 0; node < 100; node++ {
		if Hash(node, 1) != Hash(node, 2) {
			differs++
		}
	}
	require.Equal(t, 100, differs)
}

func TestGenerateSeeds(t *testing.T) {
	seeds := GenerateSeeds(500, rand.New(rand.NewSource(3)))
	require.Len(t, seeds, 500)

	seen := make(map[uint32]struct{})
	for _, s := range seeds {
		require.Less(t, s, uint32(1<<31))
		seen[s] = struct{}{}
	}
	require.Len(t, seen, 500)

	again := GenerateSeeds(500, rand.New(rand.NewSource(3)))
	require.Equal(t, seeds, again)
}

func TestParseSeeds(t *testing.T) {
	seeds, err := ParseSeeds("[3, 1,4294967295\t9]")
	require.NoError(t, err)
	require.Equal(t, []uint32{3, 1, 4294967295, 9}, seeds)
	require.Equal(t, "3,1,4294967295,9", FormatSeeds(seeds))

	for _, bad := range []string{"", " , ", "1,x", "-4", "4294967296"} {
		_, err := ParseSeeds(bad)
		require.ErrorIs(t, err, ErrSeeds, bad)
	}
}

func TestMinHashNodes(t *testing.T) {
	g := cycleGraph(t, 50)
	seeds := testSeeds(8)
	nodes := MinHashNodes(g, seeds)
	require.Len(t, nodes, 8)

	for i, seed := range seeds {
		best := Hash(nodes[i], seed)
		for v := 0; v < g.NumNodes(); v++ {
			require.GreaterOrEqual(t, Hash(v, seed), best)
		}
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, workers, spans int
	}{
		{0, 4, 0},
		{10, 4, 1},
		{64, 2, 1},
		{65, 2, 2},
		{300, 4, 4},
		{1000, 3, 3},
		{1000, 0, 1},
	}
	for _, tt := range tests {
		spans := partition(tt.n, tt.workers)
		require.Len(t, spans, tt.spans)

		next := 0
		for i, s := range spans {
			require.Equal(t, next, s.lo)
			require.Greater(t, s.hi, s.lo)
			if i < len(spans)-1 {
				require.Zero(t, s.hi%wordBits)
			}
			next = s.hi
		}
		require.Equal(t, tt.n, next)
	}
}
