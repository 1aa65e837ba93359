package measure

import (
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

func TestEffectiveDiameterInterpolation(t *testing.T) {
	table := HopTable{10, 50, 100}
	require.InDelta(t, 1.6, table.EffectiveDiameter(0.8), 1e-12)
}

func TestEffectiveDiameter(t *testing.T) {
	tests := []struct {
		name      string
		table     HopTable
		threshold float64
		want      float64
	}{
		{"empty", nil, 0.9, 0},
		{"single hop", HopTable{5}, 0.9, 0},
		{"reached at hop zero", HopTable{90, 100}, 0.9, 0},
		{"exact hit", HopTable{10, 50, 100}, 0.5, 1},
		{"full threshold", HopTable{10, 50, 100}, 1, 2},
		{"two hops", HopTable{4, 8}, 0.9, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, tt.table.EffectiveDiameter(tt.threshold), 1e-12)
		})
	}
}

func TestAverageDistance(t *testing.T) {
	require.Equal(t, 0.0, HopTable{}.AverageDistance())
	require.Equal(t, 0.0, HopTable{7}.AverageDistance())
	// 40 pairs at distance 1 and 50 at distance 2.
	require.InDelta(t, 1.4, HopTable{10, 50, 100}.AverageDistance(), 1e-12)
}

func TestTotals(t *testing.T) {
	table := HopTable{4, 16}
	require.Equal(t, 1, table.LowerBoundDiameter())
	require.Equal(t, 16.0, table.TotalCouplesReachable())
	require.Equal(t, 8.0, table.TotalCouplesPercentage(0.5))

	var empty HopTable
	require.Equal(t, -1, empty.LowerBoundDiameter())
	require.Equal(t, 0.0, empty.TotalCouplesReachable())
}

func TestIsNonDecreasing(t *testing.T) {
	require.True(t, HopTable{1, 1, 3}.IsNonDecreasing())
	require.False(t, HopTable{1, 3, 2}.IsNonDecreasing())
}

func TestNewGraphMeasure(t *testing.T) {
	m := NewGraphMeasure(HopTable{10, 50, 100}, 0.8)
	require.NotEmpty(t, m.RunID)
	require.Equal(t, 2, m.LowerBoundDiameter)
	require.InDelta(t, 1.6, m.EffectiveDiameter, 1e-12)
	require.InDelta(t, 1.4, m.AvgDistance, 1e-12)
	require.Equal(t, 100.0, m.TotalCouples)
	require.InDelta(t, 80.0, m.TotalCouplePercentage, 1e-12)

	empty := NewGraphMeasure(nil, 0.9)
	require.Equal(t, -1, empty.LowerBoundDiameter)
	require.Equal(t, 0.0, empty.EffectiveDiameter)
	require.Equal(t, 0.0, empty.AvgDistance)
}

func TestSummarize(t *testing.T) {
	runs := []*GraphMeasure{
		{LowerBoundDiameter: 2, AvgDistance: 1.0, EffectiveDiameter: 1.5, TotalCouples: 100, Time: 10},
		{LowerBoundDiameter: 4, AvgDistance: 2.0, EffectiveDiameter: 2.5, TotalCouples: 120, Time: 30},
	}
	s := Summarize(runs)
	require.Equal(t, 2, s.Runs)
	require.InDelta(t, 3.0, s.LowerBoundDiameter.Mean, 1e-12)
	require.InDelta(t, 1.4142135623730951, s.LowerBoundDiameter.StdDev, 1e-12)
	require.InDelta(t, 1.5, s.AvgDistance.Mean, 1e-12)
	require.InDelta(t, 110.0, s.TotalCouples.Mean, 1e-12)
	require.InDelta(t, 20.0, s.Time.Mean, 1e-12)

	single := Summarize(runs[:1])
	require.Equal(t, 0.0, single.AvgDistance.StdDev)

	require.Equal(t, 0, Summarize(nil).Runs)
}

func TestOutputWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewOutputWriter(dir)
	require.NoError(t, err)

	m := NewGraphMeasure(HopTable{3, 6}, 0.9)
	m.AlgorithmName = "SEMHSE"
	m.Direction = "in"
	m.NumSeeds = 4
	m.LastHops = []int{1, 0, 1, 1}

	path, err := w.WriteMeasure(m, "/data/web-graph.txt")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "semhse_web-graph_in_4seeds_"+m.RunID+".json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, jsoniter.Get(raw, "lower_bound").ToInt())
	require.Equal(t, "SEMHSE", jsoniter.Get(raw, "algorithm").ToString())
	require.Equal(t, 6.0, jsoniter.Get(raw, "total_couples").ToFloat64())
	require.Equal(t, 0, jsoniter.Get(raw, "last_hops", 1).ToInt())

	path, err = w.WriteRuns("runs.json", []*GraphMeasure{m, m})
	require.NoError(t, err)
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, jsoniter.Get(raw, "summary", "runs").ToInt())
	require.Equal(t, 2, jsoniter.Get(raw, "runs").Size())
}
