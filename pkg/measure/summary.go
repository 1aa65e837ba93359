package measure

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stat is the mean and sample standard deviation of one metric.
type Stat struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summary aggregates repeated runs over different seed lists.
type Summary struct {
	Runs               int  `json:"runs"`
	LowerBoundDiameter Stat `json:"lower_bound"`
	AvgDistance        Stat `json:"avg_distance"`
	EffectiveDiameter  Stat `json:"effective_diameter"`
	TotalCouples       Stat `json:"total_couples"`
	Time               Stat `json:"time"`
}

// Summarize computes per-metric statistics across runs.
func Summarize(runs []*GraphMeasure) Summary {
	s := Summary{Runs: len(runs)}
	if len(runs) == 0 {
		return s
	}

	collect := func(f func(*GraphMeasure) float64) Stat {
		xs := make([]float64, len(runs))
		for i, m := range runs {
			xs[i] = f(m)
		}
		mean, std := stat.MeanStdDev(xs, nil)
		if math.IsNaN(std) {
			std = 0
		}
		return Stat{Mean: mean, StdDev: std}
	}

	s.LowerBoundDiameter = collect(func(m *GraphMeasure) float64 { return float64(m.LowerBoundDiameter) })
	s.AvgDistance = collect(func(m *GraphMeasure) float64 { return m.AvgDistance })
	s.EffectiveDiameter = collect(func(m *GraphMeasure) float64 { return m.EffectiveDiameter })
	s.TotalCouples = collect(func(m *GraphMeasure) float64 { return m.TotalCouples })
	s.Time = collect(func(m *GraphMeasure) float64 { return float64(m.Time) })
	return s
}
