package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/flightdash/internal/source"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Write a synthetic dataset to a directory",
	Long: `Generate a deterministic synthetic flight and write it as the JSON files
a file source reads (trajectory.json, losses.json,
feature-loss-matrix.json, features.json).

Example:
  flightdash gen --out ./flight --seed 7
  FLIGHTDASH_DATA_SOURCE=file FLIGHTDASH_DATA_DIR=./flight flightdash`,
	RunE: runGen,
}

var (
	genOut         string
	genSeed        int64
	genSteps       int
	genFeatures    int
	genMatrixSteps int
)

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringVarP(&genOut, "out", "o", "", "output directory (required)")
	genCmd.Flags().Int64Var(&genSeed, "seed", 1, "generator seed")
	genCmd.Flags().IntVar(&genSteps, "steps", source.DefaultSteps, "trajectory and loss length")
	genCmd.Flags().IntVar(&genFeatures, "features", source.DefaultFeatures, "number of features")
	genCmd.Flags().IntVar(&genMatrixSteps, "matrix-steps", source.DefaultMatrixSteps, "feature loss matrix length")
	_ = genCmd.MarkFlagRequired("out")
}

func runGen(cmd *cobra.Command, args []string) error {
	if genSteps < 0 || genFeatures < 0 || genMatrixSteps < 0 {
		return fmt.Errorf("steps, features and matrix-steps must not be negative")
	}
	mock := &source.Mock{
		Seed:        genSeed,
		Steps:       genSteps,
		Features:    genFeatures,
		MatrixSteps: genMatrixSteps,
	}

	ds, err := source.Fetch(cmd.Context(), mock)
	if err != nil {
		return fmt.Errorf("failed to generate dataset: %w", err)
	}
	if err := source.WriteDataset(cmd.Context(), genOut, ds); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d steps to %s\n", len(ds.Losses), genOut)
	return nil
}
