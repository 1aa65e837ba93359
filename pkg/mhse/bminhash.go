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

// BooleanEngine is the bit-set form of the collision engine. For each seed
// it takes the node holding the minimum hash and marks, hop by hop, the nodes
// that reach it. The number of marked nodes at hop h equals the collision
// count of that seed at hop h.
type BooleanEngine struct {
	*base
}

// NewBooleanEngine validates params and prepares an engine over g.
func NewBooleanEngine(g graph.Graph, params Params, opts ...Option) (*BooleanEngine, error) {
	b, err := newBase(g, params, opts)
	if err != nil {
		return nil, err
	}
	return &BooleanEngine{base: b}, nil
}

func (e *BooleanEngine) Name() AlgorithmName { return BMinHash }

// Run computes the hop table. Marks are released when Run returns.
func (e *BooleanEngine) Run(ctx context.Context) (*measure.GraphMeasure, error) {
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
		Msg("Starting BMinHash")

	marked := bitset.New(uint(n))
	frontier := bitset.New(uint(n))
	next := bitset.New(uint(n))

	acc := newCollisionAccumulator(k)
	minNodes := make([]int, k)
	var history [][]int64
	if e.params.PersistCollisionTable {
		history = make([][]int64, k)
	}

	for i, seed := range e.params.Seeds {
		target, err := e.minHashNode(ctx, seed, spans)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
		minNodes[i] = target

		run, err := e.runSeed(ctx, i, target, marked, frontier, next, spans)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
		acc.add(run)
		if history != nil {
			history[i] = run.collisions
		}

		e.logger.Debug().
			Int("seed_index", i).
			Int("target", target).
			Int("last_hop", run.lastHop()).
			Int64("collisions", run.terminal()).
			Msg("Seed converged")
		e.reportProgress(i+1, k, fmt.Sprintf("seed %d/%d", i+1, k))
	}

	table := make(measure.HopTable, len(acc.totals))
	for h, c := range acc.totals {
		table[h] = e.estimate(c)
	}

	m := e.newMeasure(BMinHash, table, minNodes, start)
	m.LastHops = acc.lastHops
	m.TerminalCollisions = acc.terminals
	if history != nil {
		m.CollisionsTable = collisionTable(history, acc.lowerBound)
	}

	e.logger.Info().
		Int("lower_bound", m.LowerBoundDiameter).
		Float64("avg_distance", m.AvgDistance).
		Float64("effective_diameter", m.EffectiveDiameter).
		Int64("time_ms", m.Time).
		Msg("BMinHash completed")
	return m, nil
}

// runSeed marks target at hop 0, then every unmarked node with a successor
// marked in the previous hop, until a hop marks nothing.
func (e *BooleanEngine) runSeed(
	ctx context.Context,
	index, target int,
	marked, frontier, next *bitset.BitSet,
	spans []span,
) (seedRun, error) {
	marked.ClearAll()
	frontier.ClearAll()
	if e.graph.NumNodes() == 0 {
		return seedRun{collisions: []int64{0}}, nil
	}
	marked.Set(uint(target))
	frontier.Set(uint(target))

	run := seedRun{minNode: target, collisions: []int64{1}}
	e.tracker.LogCollisions(index, 0, 1, 1, e.graph.NumNodes())

	for hop := 1; ; hop++ {
		if err := ctx.Err(); err != nil {
			return seedRun{}, err
		}

		next.ClearAll()
		err := forEachSpan(ctx, spans, func(_ int, s span) error {
			for v := s.lo; v < s.hi; v++ {
				if marked.Test(uint(v)) {
					continue
				}
				for _, u := range e.graph.Successors(v) {
					if frontier.Test(uint(u)) {
						next.Set(uint(v))
						break
					}
				}
			}
			return nil
		})
		if err != nil {
			return seedRun{}, fmt.Errorf("hop %d: %w", hop, err)
		}

		added := next.Count()
		if added == 0 {
			break
		}
		marked.InPlaceUnion(next)
		frontier, next = next, frontier

		collisions := int64(marked.Count())
		run.collisions = append(run.collisions, collisions)
		e.tracker.LogCollisions(index, hop, int(added), collisions, e.graph.NumNodes())
	}
	return run, nil
}

// minHashNode returns the lowest node id holding the minimum hash under seed.
func (e *BooleanEngine) minHashNode(ctx context.Context, seed uint32, spans []span) (int, error) {
	partMin := make([]int64, len(spans))
	partNode := make([]int, len(spans))
	err := forEachSpan(ctx, spans, func(p int, s span) error {
		minHash := int64(math.MaxInt64)
		minNode := 0
		for v := s.lo; v < s.hi; v++ {
			if h := Hash(v, seed); h < minHash {
				minHash, minNode = h, v
			}
		}
		partMin[p], partNode[p] = minHash, minNode
		return nil
	})
	if err != nil {
		return 0, err
	}

	minHash := int64(math.MaxInt64)
	minNode := 0
	for p := range spans {
		if partMin[p] < minHash {
			minHash, minNode = partMin[p], partNode[p]
		}
	}
	return minNode, nil
}
