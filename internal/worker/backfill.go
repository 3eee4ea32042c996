package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bakchoddost/bakchoddost/internal/db"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"gorm.io/gorm"
)

// BackfillJobOptions configures RunBackfill.
type BackfillJobOptions struct {
	BatchSize    int
	RecomputeAll bool
	Recorder     BackfillRecorder
	Logger       *slog.Logger
	// Progress, when set, receives one line per finished batch.
	Progress func(line string)
}

// cursorKey keeps NULL-only and full recomputes from resuming each other.
func cursorKey(recomputeAll bool) string {
	if recomputeAll {
		return models.ServerConfigKeyBackfillCursor + "_all"
	}
	return models.ServerConfigKeyBackfillCursor
}

// RunBackfill fills in max_friend_required, resuming after the cursor saved
// by an interrupted run. The cursor is saved after each batch and cleared
// when the walk completes.
func RunBackfill(ctx context.Context, gdb *gorm.DB, templates *store.TemplateStore, opts BackfillJobOptions) (store.BackfillResult, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	key := cursorKey(opts.RecomputeAll)

	after, err := db.GetConfigValue(gdb, key)
	if err != nil && !errors.Is(err, db.ErrConfigNotSet) {
		return store.BackfillResult{}, err
	}
	if after != "" {
		log.Info("Resuming backfill", "after", after)
	}

	var last store.BackfillResult
	res, err := templates.BackfillFit(ctx, store.BackfillOptions{
		BatchSize:    opts.BatchSize,
		RecomputeAll: opts.RecomputeAll,
		After:        after,
		Logger:       log,
		OnBatch: func(cursor string, total store.BackfillResult) error {
			if opts.Recorder != nil {
				opts.Recorder.BackfillRows(total.Updated-last.Updated, total.Skipped-last.Skipped, total.Failed-last.Failed)
			}
			last = total
			if opts.Progress != nil {
				opts.Progress(fmt.Sprintf("batch %d: scanned=%d updated=%d", total.Batches, total.Scanned, total.Updated))
			}
			return db.SetConfigValue(gdb, key, cursor)
		},
	})
	if err != nil {
		return res, fmt.Errorf("backfill stopped after %d batches: %w", res.Batches, err)
	}
	if err := db.DeleteConfigValue(gdb, key); err != nil {
		return res, fmt.Errorf("clear backfill cursor: %w", err)
	}
	log.Info("Backfill finished", "scanned", res.Scanned, "updated", res.Updated, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// SummarizeBackfill renders a result for the job log.
func SummarizeBackfill(res store.BackfillResult) string {
	return fmt.Sprintf("backfill: scanned=%d updated=%d skipped=%d failed=%d batches=%d",
		res.Scanned, res.Updated, res.Skipped, res.Failed, res.Batches)
}
