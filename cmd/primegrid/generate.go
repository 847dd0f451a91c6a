package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/primegrid/primegrid/internal/datafile"
)

func generateCmd() *cobra.Command {
	var (
		count int64
		max   uint64
		seed  int64
		out   string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a little-endian uint64 dataset for the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if err := datafile.Generate(out, count, max, seed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d values (%d bytes) to %s\n", count, count*8, out)
			return nil
		},
	}
	cmd.Flags().Int64Var(&count, "count", 1024, "Number of values to write")
	cmd.Flags().Uint64Var(&max, "max", 1_000_000, "Exclusive upper bound for values (0 = full uint64 range)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed")
	cmd.Flags().StringVar(&out, "out", "", "Output file path")
	return cmd
}
