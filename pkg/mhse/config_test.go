package mhse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigDefaults(t *testing.T) {
	c := NewConfig()
	require.Equal(t, "SEMHSE", c.AlgorithmName())
	require.Equal(t, 0.9, c.Threshold())
	require.True(t, c.KeepIsolatedVertices())
	require.False(t, c.RunTests())
	require.Equal(t, 1, c.NumTests())
	require.Greater(t, c.NumWorkers(), 0)
	require.Equal(t, "info", c.LogLevel())
	require.Empty(t, c.Direction())
}

func TestConfigLoadProperties(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.txt", "0 1\n1 2\n2 0\n")
	props := fmt.Sprintf(`minhash.inputFilePath=%s
minhash.algorithmName=MHSE
minhash.direction=out
minhash.threshold=0.8
minhash.numSeeds=4
minhash.seeds=11,22,33,44
minhash.seeds1=1,2,3,4
minhash.runTests=true
minhash.numTests=2
`, graphPath)
	c := NewConfig()
	require.NoError(t, c.LoadFromFile(writeFile(t, dir, "mhse.properties", props)))

	require.Equal(t, graphPath, c.InputFilePath())
	require.Equal(t, "MHSE", c.AlgorithmName())
	require.Equal(t, "out", c.Direction())
	require.Equal(t, 0.8, c.Threshold())
	require.Equal(t, 4, c.NumSeeds())
	require.True(t, c.RunTests())
	require.Equal(t, 2, c.NumTests())

	seeds, err := c.Seeds(0)
	require.NoError(t, err)
	require.Equal(t, []uint32{11, 22, 33, 44}, seeds)

	seeds, err = c.Seeds(1)
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3, 4}, seeds)

	_, err = c.Seeds(2)
	require.ErrorIs(t, err, ErrSeeds)

	p := c.Params(seeds)
	require.NoError(t, p.Validate())
	require.Equal(t, 4, p.NumSeeds)
}

func TestConfigRandomSeeds(t *testing.T) {
	c := NewConfig()
	c.Set("minhash.isSeedsRandom", true)

	_, err := c.Seeds(0)
	require.ErrorIs(t, err, ErrSeeds)

	c.Set("minhash.numSeeds", 16)
	c.Set("minhash.randomSeed", 99)
	first, err := c.Seeds(1)
	require.NoError(t, err)
	require.Len(t, first, 16)

	again, err := c.Seeds(1)
	require.NoError(t, err)
	require.Equal(t, first, again)

	other, err := c.Seeds(2)
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.txt", "0 1\n1 2\n2 3\n7 7\n")
	tracking := filepath.Join(dir, "hops.jsonl")

	c := NewConfig()
	c.Set("minhash.inputFilePath", graphPath)
	c.Set("minhash.algorithmName", "semhse")
	c.Set("minhash.direction", "in")
	c.Set("minhash.isolatedVertices", false)
	c.Set("analysis.track_hops", true)
	c.Set("analysis.output_file", tracking)

	alg, cleanup, err := NewFromConfig(c, testSeeds(64), zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, SEMHSE, alg.Name())

	m, err := alg.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, cleanup())

	// Nodes 4, 5 and 6 have no arcs and are dropped; 7 keeps its self-loop.
	require.Equal(t, 5, m.NumNodes)
	require.Equal(t, 3, m.LowerBoundDiameter)

	info, err := os.Stat(tracking)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestNewFromConfigErrors(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.txt", "0 1\n")

	tests := []struct {
		name  string
		setup func(c *Config)
		seeds []uint32
		want  error
	}{
		{
			name:  "direction unset",
			setup: func(c *Config) { c.Set("minhash.inputFilePath", graphPath) },
			seeds: []uint32{1, 2},
			want:  ErrDirection,
		},
		{
			name: "no seeds",
			setup: func(c *Config) {
				c.Set("minhash.inputFilePath", graphPath)
				c.Set("minhash.direction", "in")
			},
			want: ErrSeeds,
		},
		{
			name: "missing graph",
			setup: func(c *Config) {
				c.Set("minhash.inputFilePath", filepath.Join(dir, "missing.txt"))
				c.Set("minhash.direction", "in")
			},
			seeds: []uint32{1, 2},
			want:  ErrGraphLoad,
		},
		{
			name: "unknown algorithm",
			setup: func(c *Config) {
				c.Set("minhash.inputFilePath", graphPath)
				c.Set("minhash.direction", "in")
				c.Set("minhash.algorithmName", "ANF")
			},
			seeds: []uint32{1, 2},
			want:  ErrUnknownAlgorithm,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			tt.setup(c)
			_, _, err := NewFromConfig(c, tt.seeds, zerolog.Nop())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateLogger(t *testing.T) {
	c := NewConfig()
	c.Set("logging.level", "debug")
	require.Equal(t, zerolog.DebugLevel, c.CreateLogger().GetLevel())

	c.Set("logging.level", "nonsense")
	require.Equal(t, zerolog.InfoLevel, c.CreateLogger().GetLevel())
}
