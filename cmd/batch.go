package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gisco-cli/internal/batch"
)

var (
	batchOut         string
	batchColumn      string
	batchConcurrency int
	batchLevels      string
	batchNoNUTS      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <input.csv|input.xlsx|input.txt>",
	Short: "Geocode a list of places and resolve their NUTS regions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		levels, err := parseLevels(batchLevels)
		if err != nil {
			return err
		}
		if levels == nil {
			levels = cfg.Batch.Levels
		}
		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.Concurrency
		}
		if batchOut != "" {
			if _, err := batch.FormatFromPath(batchOut); err != nil {
				return err
			}
		}

		places, err := batch.ReadPlaces(args[0], batchColumn)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, envOptions{withResolver: !batchNoNUTS})
		if err != nil {
			return err
		}
		defer env.Close()

		runner := batch.NewRunner(env.Geocoder, env.Resolver, batch.Options{
			Concurrency: concurrency,
			Levels:      levels,
		})
		run, err := runner.Process(ctx, places)
		if err != nil {
			return err
		}

		if batchOut == "" {
			return printResult(cmd.OutOrStdout(), run)
		}
		if err := batch.Export(ctx, run, batchOut); err != nil {
			return err
		}
		zap.L().Info("batch exported", zap.String("run_id", run.ID), zap.String("path", batchOut))
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d places, %d failed, written to %s\n",
			run.ID, len(run.Rows), run.Failed(), batchOut)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOut, "out", "", "export file (.csv, .xlsx, .db/.sqlite); prints to stdout when empty")
	batchCmd.Flags().StringVar(&batchColumn, "column", "", "header of the column holding places (csv/xlsx)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "places resolved in parallel (default from config)")
	batchCmd.Flags().StringVar(&batchLevels, "levels", "", "comma-separated NUTS levels (default from config)")
	batchCmd.Flags().BoolVar(&batchNoNUTS, "no-nuts", false, "geocode only, skip NUTS resolution")
	rootCmd.AddCommand(batchCmd)
}
