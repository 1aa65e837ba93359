package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
	"github.com/gilchrisn/graph-neighborhood-service/pkg/mhse"
)

type seedsOptions struct {
	graphPath        string
	outDir           string
	numSeeds         int
	numTests         int
	seed             int64
	isolatedVertices bool
}

// seedFile lists one seed list per test, plus the node holding the minimum
// hash of every seed. Node ids are those "mhse run" sees with the same
// minhash.isolatedVertices setting.
type seedFile struct {
	Graph            string     `json:"graph"`
	IsolatedVertices bool       `json:"isolated_vertices"`
	Seeds            [][]uint32 `json:"seeds"`
	Nodes            [][]int    `json:"nodes"`
}

func newSeedsCmd() *cobra.Command {
	opts := &seedsOptions{}
	cmd := &cobra.Command{
		Use:   "seeds",
		Short: "Generate random seed lists for repeated runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.graphPath == "" {
				return fmt.Errorf("--graph is required")
			}
			if opts.numSeeds <= 0 || opts.numTests <= 0 {
				return fmt.Errorf("--num-seeds and --num-tests must be positive")
			}
			path, err := generateSeeds(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed lists written to %s\n", path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.graphPath, "graph", "", "edge list of the input graph")
	flags.StringVar(&opts.outDir, "out", "seeds", "output directory")
	flags.IntVar(&opts.numSeeds, "num-seeds", 256, "seeds per list")
	flags.IntVar(&opts.numTests, "num-tests", 10, "number of seed lists")
	flags.Int64Var(&opts.seed, "random-seed", time.Now().UnixNano(), "random generator seed")
	flags.BoolVar(&opts.isolatedVertices, "isolated-vertices", true, "keep isolated vertices (minhash.isolatedVertices)")
	return cmd
}

// generateSeeds writes the seed lists as JSON and as minhash.seeds<i>
// properties that "mhse run" reads when minhash.runTests is set.
func generateSeeds(opts *seedsOptions) (string, error) {
	g, err := graph.LoadEdgeList(opts.graphPath)
	if err != nil {
		return "", err
	}
	if !opts.isolatedVertices {
		g, _ = graph.RemoveIsolated(g)
	}

	rng := rand.New(rand.NewSource(opts.seed))
	doc := seedFile{Graph: opts.graphPath, IsolatedVertices: opts.isolatedVertices}
	var props strings.Builder
	fmt.Fprintf(&props, "minhash.numSeeds=%d\nminhash.numTests=%d\nminhash.isolatedVertices=%t\n",
		opts.numSeeds, opts.numTests, opts.isolatedVertices)
	for i := 0; i < opts.numTests; i++ {
		seeds := mhse.GenerateSeeds(opts.numSeeds, rng)
		doc.Seeds = append(doc.Seeds, seeds)
		doc.Nodes = append(doc.Nodes, mhse.MinHashNodes(g, seeds))
		fmt.Fprintf(&props, "minhash.seeds%d=%s\n", i+1, mhse.FormatSeeds(seeds))
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(opts.graphPath), filepath.Ext(opts.graphPath))
	data, err := jsoniter.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(opts.outDir, "seeds_"+base+".properties"), []byte(props.String()), 0o644); err != nil {
		return "", err
	}
	path := filepath.Join(opts.outDir, "seeds_"+base+".json")
	return path, os.WriteFile(path, data, 0o644)
}
