package mhse

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
	"github.com/gilchrisn/graph-neighborhood-service/pkg/utils"
)

// Config manages run configuration using Viper. Keys follow the
// minhash.* properties files used by earlier releases of the tool.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	v.SetDefault("minhash.algorithmName", string(SEMHSE))
	v.SetDefault("minhash.outputFolderPath", "output")
	v.SetDefault("minhash.threshold", 0.9)
	v.SetDefault("minhash.numSeeds", 0)
	v.SetDefault("minhash.isSeedsRandom", false)
	v.SetDefault("minhash.isolatedVertices", true)
	v.SetDefault("minhash.runTests", false)
	v.SetDefault("minhash.numTests", 1)
	v.SetDefault("minhash.persistCollisionTable", false)
	v.SetDefault("minhash.randomSeed", 0)

	v.SetDefault("performance.num_workers", runtime.NumCPU())

	v.SetDefault("logging.level", "info")

	v.SetDefault("analysis.track_hops", false)
	v.SetDefault("analysis.output_file", "hops.jsonl")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file. The format follows the
// extension, so .properties files are read as Java properties.
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c *Config) InputFilePath() string       { return c.v.GetString("minhash.inputFilePath") }
func (c *Config) OutputFolderPath() string    { return c.v.GetString("minhash.outputFolderPath") }
func (c *Config) AlgorithmName() string       { return c.v.GetString("minhash.algorithmName") }
func (c *Config) Direction() string           { return c.v.GetString("minhash.direction") }
func (c *Config) Threshold() float64          { return c.v.GetFloat64("minhash.threshold") }
func (c *Config) NumSeeds() int               { return c.v.GetInt("minhash.numSeeds") }
func (c *Config) IsSeedsRandom() bool         { return c.v.GetBool("minhash.isSeedsRandom") }
func (c *Config) KeepIsolatedVertices() bool  { return c.v.GetBool("minhash.isolatedVertices") }
func (c *Config) RunTests() bool              { return c.v.GetBool("minhash.runTests") }
func (c *Config) NumTests() int               { return c.v.GetInt("minhash.numTests") }
func (c *Config) PersistCollisionTable() bool { return c.v.GetBool("minhash.persistCollisionTable") }
func (c *Config) RandomSeed() int64           { return c.v.GetInt64("minhash.randomSeed") }

func (c *Config) NumWorkers() int { return c.v.GetInt("performance.num_workers") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

func (c *Config) EnableHopTracking() bool    { return c.v.GetBool("analysis.track_hops") }
func (c *Config) TrackingOutputFile() string { return c.v.GetString("analysis.output_file") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Viper exposes the underlying store, for flag binding.
func (c *Config) Viper() *viper.Viper { return c.v }

// Seeds returns the seed list of run test (1-based); test 0 reads
// minhash.seeds. When minhash.isSeedsRandom is set, minhash.numSeeds seeds
// are drawn from minhash.randomSeed offset by test instead.
func (c *Config) Seeds(test int) ([]uint32, error) {
	if c.IsSeedsRandom() {
		if c.NumSeeds() <= 0 {
			return nil, fmt.Errorf("%w: minhash.numSeeds must be positive for random seeds", ErrSeeds)
		}
		rng := rand.New(rand.NewSource(c.RandomSeed() + int64(test)))
		return GenerateSeeds(c.NumSeeds(), rng), nil
	}

	key := "minhash.seeds"
	if test > 0 {
		key = fmt.Sprintf("minhash.seeds%d", test)
	}
	raw := c.v.GetString(key)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrSeeds, key)
	}
	return ParseSeeds(raw)
}

// Params assembles engine parameters around seeds.
func (c *Config) Params(seeds []uint32) Params {
	return Params{
		Seeds:                 seeds,
		NumSeeds:              c.NumSeeds(),
		Direction:             graph.Direction(c.Direction()),
		Threshold:             c.Threshold(),
		NumWorkers:            c.NumWorkers(),
		PersistCollisionTable: c.PersistCollisionTable(),
	}
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "mhse").Logger()
}

// LoadGraph reads the configured input graph, dropping isolated vertices
// unless minhash.isolatedVertices is set.
func (c *Config) LoadGraph(logger zerolog.Logger) (graph.Graph, error) {
	g, err := graph.LoadEdgeList(c.InputFilePath())
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("path", c.InputFilePath()).
		Int("nodes", g.NumNodes()).
		Int64("arcs", g.NumArcs()).
		Msg("Graph loaded")

	if c.KeepIsolatedVertices() {
		return g, nil
	}
	compact, _ := graph.RemoveIsolated(g)
	logger.Info().
		Int("removed", g.NumNodes()-compact.NumNodes()).
		Msg("Isolated vertices removed")
	return compact, nil
}

// NewHopTracker opens the hop tracking file when analysis.track_hops is
// set. It returns nil otherwise.
func (c *Config) NewHopTracker(algorithm string) (*utils.HopTracker, error) {
	if !c.EnableHopTracking() {
		return nil, nil
	}
	return utils.NewHopTracker(c.TrackingOutputFile(), algorithm)
}

// NewAlgorithm builds the configured engine over g with the given seeds.
func (c *Config) NewAlgorithm(g graph.Graph, seeds []uint32, logger zerolog.Logger, opts ...Option) (Algorithm, error) {
	name, err := ParseAlgorithmName(c.AlgorithmName())
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(name, g, c.Params(seeds), opts...)
}

// NewFromConfig validates the configuration, loads the graph and builds the
// configured engine. Configuration errors are reported before the graph is
// read. The returned cleanup closes the hop tracker, if any.
func NewFromConfig(c *Config, seeds []uint32, logger zerolog.Logger, opts ...Option) (Algorithm, func() error, error) {
	name, err := ParseAlgorithmName(c.AlgorithmName())
	if err != nil {
		return nil, nil, err
	}
	if err := c.Params(seeds).Validate(); err != nil {
		return nil, nil, err
	}

	g, err := c.LoadGraph(logger)
	if err != nil {
		return nil, nil, err
	}

	tracker, err := c.NewHopTracker(string(name))
	if err != nil {
		return nil, nil, err
	}
	if tracker != nil {
		opts = append(opts, WithHopTracker(tracker))
	}

	alg, err := c.NewAlgorithm(g, seeds, logger, opts...)
	if err != nil {
		tracker.Close()
		return nil, nil, err
	}
	return alg, tracker.Close, nil
}
