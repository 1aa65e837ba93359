package measure

import (
	"runtime"
	"time"

	"github.com/google/uuid"
)

// GraphMeasure is the result of one estimation run.
type GraphMeasure struct {
	RunID                 string   `json:"run_id"`
	AlgorithmName         string   `json:"algorithm"`
	LowerBoundDiameter    int      `json:"lower_bound"`
	AvgDistance           float64  `json:"avg_distance"`
	EffectiveDiameter     float64  `json:"effective_diameter"`
	TotalCouples          float64  `json:"total_couples"`
	TotalCouplePercentage float64  `json:"total_couples_perc"`
	HopTable              HopTable `json:"hop_table"`

	// Collision-engine details; empty for the signature engine.
	CollisionsTable    [][]int64 `json:"collision_table,omitempty"`
	LastHops           []int     `json:"last_hops,omitempty"`
	TerminalCollisions []int64   `json:"terminal_collisions,omitempty"`

	Threshold      float64  `json:"threshold"`
	MinHashNodeIDs []int    `json:"minhash_node_ids"`
	SeedsList      []uint32 `json:"seed_list"`
	NumSeeds       int      `json:"num_seed"`
	NumNodes       int      `json:"num_nodes"`
	NumArcs        int64    `json:"num_edges"`
	Direction      string   `json:"direction"`
	Time           int64    `json:"time"`
	MaxMemoryUsed  int64    `json:"memory_mb"`
}

// NewGraphMeasure derives every statistic from table.
func NewGraphMeasure(table HopTable, threshold float64) *GraphMeasure {
	return &GraphMeasure{
		RunID:                 uuid.New().String(),
		LowerBoundDiameter:    table.LowerBoundDiameter(),
		AvgDistance:           table.AverageDistance(),
		EffectiveDiameter:     table.EffectiveDiameter(threshold),
		TotalCouples:          table.TotalCouplesReachable(),
		TotalCouplePercentage: table.TotalCouplesPercentage(threshold),
		HopTable:              table,
		Threshold:             threshold,
	}
}

// Finish stamps the elapsed time since start and the current heap size.
func (m *GraphMeasure) Finish(start time.Time) {
	m.Time = time.Since(start).Milliseconds()
	m.MaxMemoryUsed = getMemoryUsage()
}

func getMemoryUsage() int64 {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return int64(mem.Alloc / 1024 / 1024)
}
