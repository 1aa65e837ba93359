package mhse

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
	"github.com/gilchrisn/graph-neighborhood-service/pkg/measure"
	"github.com/gilchrisn/graph-neighborhood-service/pkg/utils"
)

// AlgorithmName identifies an estimation engine.
type AlgorithmName string

const (
	// MHSE keeps a full K-wide signature per node.
	MHSE AlgorithmName = "MHSE"
	// SEMHSE processes one seed at a time with a single value per node.
	SEMHSE AlgorithmName = "SEMHSE"
	// BMinHash grows a reachability set from each seed's min-hash node.
	BMinHash AlgorithmName = "BMINHASH"
)

// ParseAlgorithmName matches a registered name case-insensitively.
func ParseAlgorithmName(s string) (AlgorithmName, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(MHSE):
		return MHSE, nil
	case string(SEMHSE), "SE-MHSE":
		return SEMHSE, nil
	case string(BMinHash), "B-MINHASH", "STANDALONEBMINHASH":
		return BMinHash, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Algorithm is a configured estimation engine. A constructed engine is
// always runnable; configuration errors are reported by its constructor.
type Algorithm interface {
	Name() AlgorithmName
	Run(ctx context.Context) (*measure.GraphMeasure, error)
}

// ProgressCallback receives progress updates. total is -1 when the amount of
// remaining work is unknown.
type ProgressCallback func(done, total int, message string)

// Option customises an engine.
type Option func(*base)

// WithLogger sets the logger used for progress events.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *base) { b.logger = logger }
}

// WithHopTracker records every hop to tracker.
func WithHopTracker(tracker *utils.HopTracker) Option {
	return func(b *base) { b.tracker = tracker }
}

// WithProgress registers a progress callback.
func WithProgress(cb ProgressCallback) Option {
	return func(b *base) { b.progress = cb }
}

// base is the state shared by both engines.
type base struct {
	graph    graph.Graph
	params   Params
	logger   zerolog.Logger
	tracker  *utils.HopTracker
	progress ProgressCallback
}

func newBase(g graph.Graph, params Params, opts []Option) (*base, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	dir, err := graph.ParseDirection(string(params.Direction))
	if err != nil {
		return nil, err
	}
	oriented, err := graph.Orient(g, dir)
	if err != nil {
		return nil, err
	}

	params.Direction = dir
	params.Seeds = slices.Clone(params.Seeds)
	b := &base{
		graph:  oriented,
		params: params,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *base) numSeeds() int { return len(b.params.Seeds) }

func (b *base) reportProgress(done, total int, message string) {
	if b.progress != nil {
		b.progress(done, total, message)
	}
}

// estimate converts an aggregate over all seeds into a pair count.
func (b *base) estimate(aggregate int64) float64 {
	return float64(aggregate) * float64(b.graph.NumNodes()) / float64(b.numSeeds())
}

func (b *base) newMeasure(name AlgorithmName, table measure.HopTable, minNodes []int, start time.Time) *measure.GraphMeasure {
	m := measure.NewGraphMeasure(table, b.params.Threshold)
	m.AlgorithmName = string(name)
	m.MinHashNodeIDs = minNodes
	m.SeedsList = slices.Clone(b.params.Seeds)
	m.NumSeeds = b.numSeeds()
	m.NumNodes = b.graph.NumNodes()
	m.NumArcs = b.graph.NumArcs()
	m.Direction = string(b.params.Direction)
	m.Finish(start)
	return m
}
