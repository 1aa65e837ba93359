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

// CollisionEngine estimates the neighborhood function one seed at a time,
// keeping a single hash value per node. For each hop it counts collisions,
// the nodes whose value equals the seed's global minimum, and sums them over
// seeds.
type CollisionEngine struct {
	*base
}

// NewCollisionEngine validates params and prepares an engine over g.
func NewCollisionEngine(g graph.Graph, params Params, opts ...Option) (*CollisionEngine, error) {
	b, err := newBase(g, params, opts)
	if err != nil {
		return nil, err
	}
	return &CollisionEngine{base: b}, nil
}

func (e *CollisionEngine) Name() AlgorithmName { return SEMHSE }

// seedRun is the outcome of propagating a single seed to its fixpoint.
type seedRun struct {
	minNode int
	// collisions[h] is the collision count after hop h; the last entry is
	// the terminal count.
	collisions []int64
}

func (r seedRun) lastHop() int    { return len(r.collisions) - 1 }
func (r seedRun) terminal() int64 { return r.collisions[len(r.collisions)-1] }

// Run computes the hop table. Per-seed state is released when Run returns.
func (e *CollisionEngine) Run(ctx context.Context) (*measure.GraphMeasure, error) {
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
		Msg("Starting SE-MHSE")

	s := &seedState{
		values:  make([]int64, n),
		old:     make([]int64, n),
		changed: bitset.New(uint(n)),
		next:    bitset.New(uint(n)),
		spans:   spans,
	}

	acc := newCollisionAccumulator(k)
	minNodes := make([]int, k)
	var history [][]int64
	if e.params.PersistCollisionTable {
		history = make([][]int64, k)
	}

	for i, seed := range e.params.Seeds {
		run, err := e.runSeed(ctx, s, i, seed)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
		acc.add(run)
		minNodes[i] = run.minNode
		if history != nil {
			history[i] = run.collisions
		}

		e.logger.Debug().
			Int("seed_index", i).
			Int("last_hop", run.lastHop()).
			Int64("collisions", run.terminal()).
			Int("lower_bound", acc.lowerBound).
			Msg("Seed converged")
		e.reportProgress(i+1, k, fmt.Sprintf("seed %d/%d", i+1, k))
	}

	table := make(measure.HopTable, len(acc.totals))
	for h, c := range acc.totals {
		table[h] = e.estimate(c)
	}

	m := e.newMeasure(SEMHSE, table, minNodes, start)
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
		Msg("SE-MHSE completed")
	return m, nil
}

// seedState holds the buffers reused across seeds.
type seedState struct {
	values, old   []int64
	changed, next *bitset.BitSet
	spans         []span
}

func (e *CollisionEngine) runSeed(ctx context.Context, s *seedState, index int, seed uint32) (seedRun, error) {
	minHash, minNode, err := e.initValues(ctx, s, seed)
	if err != nil {
		return seedRun{}, err
	}
	collisions, err := e.countCollisions(ctx, s, minHash)
	if err != nil {
		return seedRun{}, err
	}
	run := seedRun{minNode: minNode, collisions: []int64{collisions}}
	e.tracker.LogCollisions(index, 0, e.graph.NumNodes(), collisions, e.graph.NumNodes())

	s.changed.ClearAll()
	s.changed.FlipRange(0, uint(e.graph.NumNodes()))
	for hop := 1; ; hop++ {
		if err := ctx.Err(); err != nil {
			return seedRun{}, err
		}

		s.values, s.old = s.old, s.values
		s.next.ClearAll()
		modified, collisions, err := e.propagate(ctx, s, minHash)
		if err != nil {
			return seedRun{}, fmt.Errorf("hop %d: %w", hop, err)
		}
		if modified == 0 {
			break
		}

		run.collisions = append(run.collisions, collisions)
		s.changed, s.next = s.next, s.changed
		e.tracker.LogCollisions(index, hop, modified, collisions, e.graph.NumNodes())
	}
	return run, nil
}

// initValues assigns every node its hash under seed and returns the minimum
// together with the lowest node id attaining it.
func (e *CollisionEngine) initValues(ctx context.Context, s *seedState, seed uint32) (int64, int, error) {
	partMin := make([]int64, len(s.spans))
	partNode := make([]int, len(s.spans))
	err := forEachSpan(ctx, s.spans, func(p int, sp span) error {
		minHash := int64(math.MaxInt64)
		minNode := 0
		for v := sp.lo; v < sp.hi; v++ {
			h := Hash(v, seed)
			s.values[v] = h
			if h < minHash {
				minHash, minNode = h, v
			}
		}
		partMin[p], partNode[p] = minHash, minNode
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	minHash := int64(math.MaxInt64)
	minNode := 0
	for p := range s.spans {
		if partMin[p] < minHash {
			minHash, minNode = partMin[p], partNode[p]
		}
	}
	return minHash, minNode, nil
}

func (e *CollisionEngine) countCollisions(ctx context.Context, s *seedState, minHash int64) (int64, error) {
	partial := make([]int64, len(s.spans))
	err := forEachSpan(ctx, s.spans, func(p int, sp span) error {
		var count int64
		for v := sp.lo; v < sp.hi; v++ {
			if s.values[v] == minHash {
				count++
			}
		}
		partial[p] = count
		return nil
	})
	return sum(partial), err
}

// propagate lowers each value to the minimum over the node's successors in
// the previous hop, skipping successors that did not change.
func (e *CollisionEngine) propagate(ctx context.Context, s *seedState, minHash int64) (int, int64, error) {
	partModified := make([]int, len(s.spans))
	partCollisions := make([]int64, len(s.spans))
	err := forEachSpan(ctx, s.spans, func(p int, sp span) error {
		modified := 0
		var collisions int64
		for v := sp.lo; v < sp.hi; v++ {
			value := s.old[v]
			for _, u := range e.graph.Successors(v) {
				if s.changed.Test(uint(u)) && s.old[u] < value {
					value = s.old[u]
				}
			}
			if value != s.old[v] {
				s.next.Set(uint(v))
				modified++
			}
			s.values[v] = value
			if value == minHash {
				collisions++
			}
		}
		partModified[p] = modified
		partCollisions[p] = collisions
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	modified := 0
	for _, m := range partModified {
		modified += m
	}
	return modified, sum(partCollisions), nil
}

// collisionAccumulator keeps the per-hop collision totals consistent across
// seeds that converge at different hops. After every seed, each hop up to
// the running lower bound counts every processed seed exactly once, with a
// converged seed contributing its terminal count.
type collisionAccumulator struct {
	totals     []int64
	terminals  []int64
	lastHops   []int
	lowerBound int
}

func newCollisionAccumulator(numSeeds int) *collisionAccumulator {
	return &collisionAccumulator{
		terminals: make([]int64, 0, numSeeds),
		lastHops:  make([]int, 0, numSeeds),
	}
}

func (a *collisionAccumulator) add(run seedRun) {
	last := run.lastHop()
	for len(a.totals) <= last {
		a.totals = append(a.totals, 0)
	}
	for h, c := range run.collisions {
		a.totals[h] += c
	}

	switch {
	case len(a.terminals) == 0:
		a.lowerBound = last
	case last > a.lowerBound:
		// Earlier seeds stopped before the new bound and stay at their terminal count.
		for _, t := range a.terminals {
			for h := a.lowerBound + 1; h <= last; h++ {
				a.totals[h] += t
			}
		}
		a.lowerBound = last
	case last < a.lowerBound:
		for h := last + 1; h <= a.lowerBound; h++ {
			a.totals[h] += run.terminal()
		}
	}

	a.terminals = append(a.terminals, run.terminal())
	a.lastHops = append(a.lastHops, last)
}

// collisionTable returns counts indexed by hop then seed, where a seed that
// converged before a hop repeats its terminal count.
func collisionTable(history [][]int64, lowerBound int) [][]int64 {
	table := make([][]int64, lowerBound+1)
	for h := range table {
		row := make([]int64, len(history))
		for s, collisions := range history {
			row[s] = collisions[min(h, len(collisions)-1)]
		}
		table[h] = row
	}
	return table
}
