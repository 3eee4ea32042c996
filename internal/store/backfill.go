package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/poem"
)

// BackfillOptions controls BackfillFit.
type BackfillOptions struct {
	BatchSize int
	// RecomputeAll rewrites every row instead of only rows where
	// max_friend_required is NULL.
	RecomputeAll bool
	// After resumes the walk after this template id ("" starts at the beginning).
	After string
	// OnBatch is called with the last id of each finished batch. Returning an
	// error stops the walk.
	OnBatch func(cursor string, res BackfillResult) error
	Logger  *slog.Logger
}

// BackfillResult summarizes a BackfillFit run.
type BackfillResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Batches int `json:"batches"`
}

// BackfillFit recomputes max_friend_required from each template's text,
// walking rows in id order in batches of at most opts.BatchSize. A failed row
// is logged and counted; the batch carries on. Running it twice is harmless.
func (s *TemplateStore) BackfillFit(ctx context.Context, opts BackfillOptions) (BackfillResult, error) {
	var res BackfillResult
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 1000
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	cursor := opts.After
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		q := s.db.WithContext(ctx).Model(&models.Template{}).Select("id", "text", "max_friend_required")
		if cursor != "" {
			q = q.Where("id > ?", cursor)
		}
		if !opts.RecomputeAll {
			q = q.Where("max_friend_required IS NULL")
		}

		var rows []models.Template
		if err := q.Order("id ASC").Limit(batch).Find(&rows).Error; err != nil {
			return res, fmt.Errorf("load backfill batch after %q: %w", cursor, err)
		}
		if len(rows) == 0 {
			return res, nil
		}

		for i := range rows {
			t := &rows[i]
			res.Scanned++
			n := poem.MaxFriendIndex(t.Text)
			if t.MaxFriendRequired != nil && *t.MaxFriendRequired == n {
				res.Skipped++
				continue
			}
			err := s.db.WithContext(ctx).Model(&models.Template{}).Where("id = ?", t.ID).
				UpdateColumn("max_friend_required", n).Error
			if err != nil {
				res.Failed++
				log.Warn("Backfill failed for template", "template_id", t.ID, "error", err)
				continue
			}
			res.Updated++
		}

		res.Batches++
		cursor = rows[len(rows)-1].ID.String()
		log.Info("Backfill batch done", "batch", res.Batches, "rows", len(rows), "cursor", cursor)
		if opts.OnBatch != nil {
			if err := opts.OnBatch(cursor, res); err != nil {
				return res, err
			}
		}
		if len(rows) < batch {
			return res, nil
		}
	}
}
