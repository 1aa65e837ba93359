package mhse

import (
	"fmt"
	"runtime"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
)

// Params configures an estimation run.
type Params struct {
	// Seeds selects the K hash functions. Order matters: position i is hash function i.
	Seeds []uint32
	// NumSeeds, when positive, must equal len(Seeds).
	NumSeeds  int
	Direction graph.Direction
	Threshold float64
	// NumWorkers bounds the goroutines used per hop; zero means GOMAXPROCS.
	NumWorkers int
	// PersistCollisionTable keeps the per-hop, per-seed collision counts of
	// the collision engine.
	PersistCollisionTable bool
}

// Validate checks the parameters. Errors wrap ErrSeeds, ErrDirection or ErrThreshold.
func (p Params) Validate() error {
	if _, err := graph.ParseDirection(string(p.Direction)); err != nil {
		return err
	}

	if len(p.Seeds) == 0 {
		return fmt.Errorf("%w: no seeds given", ErrSeeds)
	}
	if p.NumSeeds > 0 && p.NumSeeds != len(p.Seeds) {
		return fmt.Errorf("%w: expected %d seeds, got %d", ErrSeeds, p.NumSeeds, len(p.Seeds))
	}
	seen := make(map[uint32]struct{}, len(p.Seeds))
	for _, s := range p.Seeds {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: duplicate seed %d", ErrSeeds, s)
		}
		seen[s] = struct{}{}
	}

	if !(p.Threshold > 0 && p.Threshold <= 1) {
		return fmt.Errorf("%w: got %v", ErrThreshold, p.Threshold)
	}
	return nil
}

func (p Params) workers() int {
	if p.NumWorkers > 0 {
		return p.NumWorkers
	}
	return runtime.GOMAXPROCS(0)
}
