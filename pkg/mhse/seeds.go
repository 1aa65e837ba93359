package mhse

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
)

// GenerateSeeds draws k distinct seeds in [0, 2^31).
func GenerateSeeds(k int, rng *rand.Rand) []uint32 {
	seen := make(map[uint32]struct{}, k)
	seeds := make([]uint32, 0, k)
	for len(seeds) < k {
		s := uint32(rng.Int31())
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		seeds = append(seeds, s)
	}
	return seeds
}

// ParseSeeds reads a comma or whitespace separated seed list.
func ParseSeeds(s string) ([]uint32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '[' || r == ']'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrSeeds)
	}

	seeds := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrSeeds, f)
		}
		if v < 0 || v > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d is out of range", ErrSeeds, v)
		}
		seeds[i] = uint32(v)
	}
	return seeds, nil
}

// FormatSeeds is the inverse of ParseSeeds.
func FormatSeeds(seeds []uint32) string {
	parts := make([]string, len(seeds))
	for i, s := range seeds {
		parts[i] = strconv.FormatUint(uint64(s), 10)
	}
	return strings.Join(parts, ",")
}

// MinHashNodes returns, for every seed, the lowest node id holding the
// minimum hash value.
func MinHashNodes(g graph.Graph, seeds []uint32) []int {
	nodes := make([]int, len(seeds))
	for i, seed := range seeds {
		minHash := int64(math.MaxInt64)
		for v := 0; v < g.NumNodes(); v++ {
			if h := Hash(v, seed); h < minHash {
				minHash = h
				nodes[i] = v
			}
		}
	}
	return nodes
}
