package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/measure"
	"github.com/gilchrisn/graph-neighborhood-service/pkg/mhse"
)

type runOptions struct {
	configFile string
	bindings   map[string]string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{
		// flag name -> configuration key
		bindings: map[string]string{
			"graph":     "minhash.inputFilePath",
			"out":       "minhash.outputFolderPath",
			"algorithm": "minhash.algorithmName",
			"direction": "minhash.direction",
			"threshold": "minhash.threshold",
			"seeds":     "minhash.seeds",
			"workers":   "performance.num_workers",
			"log-level": "logging.level",
		},
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run MHSE, SE-MHSE or BMinHash on a graph",
		Example: `  mhse run --config etc/mhse.properties
  mhse run --graph web.txt --algorithm SEMHSE --direction in --seeds 17,4242,90001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := mhse.NewConfig()
			if opts.configFile != "" {
				if err := c.LoadFromFile(opts.configFile); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}
			for flag, key := range opts.bindings {
				if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
					c.Set(key, f.Value.String())
				}
			}
			return runEstimation(cmd.Context(), c, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "properties, yaml or json configuration file")
	flags.String("graph", "", "edge list of the input graph")
	flags.String("out", "output", "directory for the JSON results")
	flags.String("algorithm", string(mhse.SEMHSE), "MHSE, SEMHSE or BMINHASH")
	flags.String("direction", "", "direction of message transmission: in or out")
	flags.Float64("threshold", 0.9, "fraction of reachable pairs for the effective diameter")
	flags.String("seeds", "", "comma separated seed list")
	flags.Int("workers", 0, "goroutines per hop (0 = all CPUs)")
	flags.String("log-level", "info", "zerolog level")
	return cmd
}

func runEstimation(ctx context.Context, c *mhse.Config, out io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := c.CreateLogger()

	tests := []int{0}
	if c.RunTests() {
		tests = tests[:0]
		for i := 1; i <= c.NumTests(); i++ {
			tests = append(tests, i)
		}
	}

	// Check every seed list before touching the graph.
	seedLists := make([][]uint32, len(tests))
	for i, test := range tests {
		seeds, err := c.Seeds(test)
		if err != nil {
			return err
		}
		if err := c.Params(seeds).Validate(); err != nil {
			return err
		}
		seedLists[i] = seeds
	}

	g, err := c.LoadGraph(logger)
	if err != nil {
		return err
	}
	writer, err := measure.NewOutputWriter(c.OutputFolderPath())
	if err != nil {
		return err
	}
	tracker, err := c.NewHopTracker(c.AlgorithmName())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tracker.Close(); err == nil {
			err = cerr
		}
	}()

	var bar *progressbar.ProgressBar
	if len(tests) > 1 {
		bar = progressbar.NewOptions(len(tests),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("runs"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(50),
		)
	}

	runs := make([]*measure.GraphMeasure, 0, len(tests))
	for i, seeds := range seedLists {
		alg, err := c.NewAlgorithm(g, seeds, logger, mhse.WithHopTracker(tracker))
		if err != nil {
			return err
		}
		m, err := alg.Run(ctx)
		if err != nil {
			return fmt.Errorf("run %d: %w", tests[i], err)
		}

		path, err := writer.WriteMeasure(m, c.InputFilePath())
		if err != nil {
			return err
		}
		logRun(logger, tests[i], m, path)
		runs = append(runs, m)

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Fprintln(out)
	}

	renderRuns(out, runs)
	if len(runs) > 1 {
		name := fmt.Sprintf("%s_%s_runs.json",
			strings.ToLower(c.AlgorithmName()),
			strings.TrimSuffix(filepath.Base(c.InputFilePath()), filepath.Ext(c.InputFilePath())))
		path, err := writer.WriteRuns(name, runs)
		if err != nil {
			return err
		}
		renderSummary(out, measure.Summarize(runs))
		logger.Info().Str("file", path).Int("runs", len(runs)).Msg("Summary written")
	}
	return nil
}

func logRun(logger zerolog.Logger, test int, m *measure.GraphMeasure, path string) {
	logger.Info().
		Int("test", test).
		Str("algorithm", m.AlgorithmName).
		Int("lower_bound", m.LowerBoundDiameter).
		Float64("avg_distance", m.AvgDistance).
		Float64("effective_diameter", m.EffectiveDiameter).
		Float64("total_couples", m.TotalCouples).
		Int64("time_ms", m.Time).
		Str("file", path).
		Msg("Run completed")
}

func renderRuns(out io.Writer, runs []*measure.GraphMeasure) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"run", "algorithm", "seeds", "lower bound", "avg distance", "effective diameter", "total couples", "time (ms)"})
	for i, m := range runs {
		table.Append([]string{
			fmt.Sprint(i + 1),
			m.AlgorithmName,
			fmt.Sprint(m.NumSeeds),
			fmt.Sprint(m.LowerBoundDiameter),
			fmt.Sprintf("%.4f", m.AvgDistance),
			fmt.Sprintf("%.4f", m.EffectiveDiameter),
			fmt.Sprintf("%.1f", m.TotalCouples),
			fmt.Sprint(m.Time),
		})
	}
	table.Render()
}

func renderSummary(out io.Writer, s measure.Summary) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"metric", "mean", "std dev"})
	rows := []struct {
		name string
		stat measure.Stat
	}{
		{"lower bound", s.LowerBoundDiameter},
		{"avg distance", s.AvgDistance},
		{"effective diameter", s.EffectiveDiameter},
		{"total couples", s.TotalCouples},
		{"time (ms)", s.Time},
	}
	for _, r := range rows {
		table.Append([]string{r.name, fmt.Sprintf("%.4f", r.stat.Mean), fmt.Sprintf("%.4f", r.stat.StdDev)})
	}
	table.Render()
}
