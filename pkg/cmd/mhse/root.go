package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mhse",
		Short: "Estimate neighborhood functions and distance statistics of large directed graphs",
		Long: `mhse estimates the neighborhood function of a directed graph with MinHash
signatures propagated hop by hop, and derives the average distance, the
effective diameter and a lower bound on the diameter.`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newSeedsCmd())
	return root
}
