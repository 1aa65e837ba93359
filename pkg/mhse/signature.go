package mhse

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
	"github.com/gilchrisn/graph-neighborhood-service/pkg/measure"
)

// SignatureEngine estimates the neighborhood function by propagating a
// K-wide MinHash signature per node until no signature changes.
type SignatureEngine struct {
	*base
}

// NewSignatureEngine validates params and prepares an engine over g.
func NewSignatureEngine(g graph.Graph, params Params, opts ...Option) (*SignatureEngine, error) {
	b, err := newBase(g, params, opts)
	if err != nil {
		return nil, err
	}
	return &SignatureEngine{base: b}, nil
}

func (e *SignatureEngine) Name() AlgorithmName { return MHSE }

// Run computes the hop table. Signatures are released when Run returns.
func (e *SignatureEngine) Run(ctx context.Context) (*measure.GraphMeasure, error) {
	start := time.Now()
	n := e.graph.NumNodes()
	k := e.numSeeds()
	spans := partition(n, e.params.workers())

	e.logger.Info().
		Int("nodes", n).
		Int64("arcs", e.graph.NumArcs()).
		Int("seeds", k).
		Int("workers", len(spans)).
		Str("direction", string(e.params.Direction)).
		Msg("Starting MHSE")

	signatures := make([]int64, n*k)
	old := make([]int64, n*k)
	graphSignature, minNodes, err := e.initSignatures(ctx, signatures, spans)
	if err != nil {
		return nil, err
	}

	matches, err := e.countMatches(ctx, signatures, graphSignature, spans)
	if err != nil {
		return nil, err
	}
	table := measure.HopTable{e.estimate(matches)}
	e.logHop(0, n, table[0], start)

	// Every node counts as changed at hop 0.
	changed := bitset.New(uint(n))
	changed.FlipRange(0, uint(n))
	next := bitset.New(uint(n))

	for hop := 1; ; hop++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		signatures, old = old, signatures
		next.ClearAll()
		modified, matches, err := e.propagate(ctx, old, signatures, graphSignature, changed, next, spans)
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", hop, err)
		}
		if modified == 0 {
			break
		}

		table = append(table, e.estimate(matches))
		changed, next = next, changed
		e.logHop(hop, modified, table[hop], start)
	}

	m := e.newMeasure(MHSE, table, minNodes, start)
	e.logger.Info().
		Int("lower_bound", m.LowerBoundDiameter).
		Float64("avg_distance", m.AvgDistance).
		Float64("effective_diameter", m.EffectiveDiameter).
		Int64("time_ms", m.Time).
		Msg("MHSE completed")
	return m, nil
}

func (e *SignatureEngine) logHop(hop, modified int, estimate float64, start time.Time) {
	e.logger.Info().
		Int("hop", hop).
		Int("modified", modified).
		Float64("estimate", estimate).
		Dur("elapsed", time.Since(start)).
		Msg("Hop completed")
	e.tracker.LogHop(-1, hop, modified, estimate)
	e.reportProgress(hop, -1, fmt.Sprintf("hop %d", hop))
}

// initSignatures fills hop-0 signatures and returns the graph signature
// together with the lowest node id attaining each minimum.
func (e *SignatureEngine) initSignatures(ctx context.Context, signatures []int64, spans []span) ([]int64, []int, error) {
	k := e.numSeeds()
	seeds := e.params.Seeds
	partMin := make([][]int64, len(spans))
	partNode := make([][]int, len(spans))

	err := forEachSpan(ctx, spans, func(p int, s span) error {
		mins := make([]int64, k)
		nodes := make([]int, k)
		for i := range mins {
			mins[i] = math.MaxInt64
		}
		for v := s.lo; v < s.hi; v++ {
			row := signatures[v*k : v*k+k]
			for i, seed := range seeds {
				h := Hash(v, seed)
				row[i] = h
				if h < mins[i] {
					mins[i] = h
					nodes[i] = v
				}
			}
		}
		partMin[p], partNode[p] = mins, nodes
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	graphSignature := make([]int64, k)
	minNodes := make([]int, k)
	for i := range graphSignature {
		graphSignature[i] = math.MaxInt64
	}
	for p := range spans {
		for i := 0; i < k; i++ {
			if partMin[p][i] < graphSignature[i] {
				graphSignature[i] = partMin[p][i]
				minNodes[i] = partNode[p][i]
			}
		}
	}
	return graphSignature, minNodes, nil
}

// countMatches returns the number of (node, position) pairs whose signature
// entry equals the graph signature entry.
func (e *SignatureEngine) countMatches(ctx context.Context, signatures, graphSignature []int64, spans []span) (int64, error) {
	k := e.numSeeds()
	partial := make([]int64, len(spans))
	err := forEachSpan(ctx, spans, func(p int, s span) error {
		var count int64
		for v := s.lo; v < s.hi; v++ {
			count += matching(signatures[v*k:v*k+k], graphSignature)
		}
		partial[p] = count
		return nil
	})
	return sum(partial), err
}

// propagate computes one hop from old into signatures. Only successors that
// changed in the previous hop can lower a value, so the others are skipped.
func (e *SignatureEngine) propagate(
	ctx context.Context,
	old, signatures, graphSignature []int64,
	changed, next *bitset.BitSet,
	spans []span,
) (int, int64, error) {
	k := e.numSeeds()
	partModified := make([]int, len(spans))
	partMatches := make([]int64, len(spans))

	err := forEachSpan(ctx, spans, func(p int, s span) error {
		modified := 0
		var matches int64
		for v := s.lo; v < s.hi; v++ {
			row := signatures[v*k : v*k+k]
			copy(row, old[v*k:v*k+k])

			nodeChanged := false
			for _, u := range e.graph.Successors(v) {
				if !changed.Test(uint(u)) {
					continue
				}
				neighbor := old[int(u)*k : int(u)*k+k]
				for i, h := range neighbor {
					if h < row[i] {
						row[i] = h
						nodeChanged = true
					}
				}
			}
			if nodeChanged {
				next.Set(uint(v))
				modified++
			}
			matches += matching(row, graphSignature)
		}
		partModified[p] = modified
		partMatches[p] = matches
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	modified := 0
	for _, m := range partModified {
		modified += m
	}
	return modified, sum(partMatches), nil
}

func matching(row, graphSignature []int64) int64 {
	var count int64
	for i, h := range row {
		if h == graphSignature[i] {
			count++
		}
	}
	return count
}

func sum(xs []int64) int64 {
	var total int64
	for _, x := range xs {
		total += x
	}
	return total
}
