package main

import (
	"fmt"
	"log/slog"

	"github.com/bakchoddost/bakchoddost/internal/server"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/bakchoddost/bakchoddost/internal/worker"
	"github.com/spf13/cobra"
)

var (
	backfillBatchSize    int
	backfillRecomputeAll bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fill in max_friend_required for stored templates",
	Long: `Walks every template and stores the highest {{friendNameN}} index it uses.
By default only rows with no value are updated; --recompute-all rewrites every row.
An interrupted run resumes where it stopped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := server.Setup()
		if err != nil {
			return err
		}
		batch := backfillBatchSize
		if batch <= 0 {
			batch = cfg.Backfill.BatchSize
		}

		res, err := worker.RunBackfill(cmd.Context(), database, store.NewTemplateStore(database), worker.BackfillJobOptions{
			BatchSize:    batch,
			RecomputeAll: backfillRecomputeAll,
			Logger:       slog.Default(),
		})
		fmt.Fprintln(cmd.OutOrStdout(), worker.SummarizeBackfill(res))
		return err
	},
}

func init() {
	backfillCmd.Flags().IntVar(&backfillBatchSize, "batch-size", 0, "Rows per batch (default from config)")
	backfillCmd.Flags().BoolVar(&backfillRecomputeAll, "recompute-all", false, "Recompute every row, not only missing values")
}
