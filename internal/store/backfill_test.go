package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"gorm.io/gorm"
)

// insertLegacy writes a row the way an old deployment would have, without
// max_friend_required.
func insertLegacy(t *testing.T, s *TemplateStore, text string) *models.Template {
	t.Helper()
	tpl := mustCreate(t, s, nil, text)
	if err := s.db.Model(tpl).UpdateColumn("max_friend_required", nil).Error; err != nil {
		t.Fatalf("clear max_friend_required: %v", err)
	}
	return tpl
}

func TestBackfillFit_FillsNullRowsInBatches(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		insertLegacy(t, s, fmt.Sprintf("{{friendName%d}}", i))
	}
	mustCreate(t, s, nil, "{{friendName2}}")

	var cursors []string
	res, err := s.BackfillFit(ctx, BackfillOptions{
		BatchSize: 3,
		OnBatch: func(cursor string, _ BackfillResult) error {
			cursors = append(cursors, cursor)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("BackfillFit: %v", err)
	}
	if res.Updated != 7 || res.Failed != 0 || res.Scanned != 7 {
		t.Errorf("result = %+v, want 7 updated of 7 scanned", res)
	}
	if res.Batches != 3 || len(cursors) != 3 {
		t.Errorf("batches = %d cursors = %d, want 3", res.Batches, len(cursors))
	}

	var nulls int64
	s.db.Model(&models.Template{}).Where("max_friend_required IS NULL").Count(&nulls)
	if nulls != 0 {
		t.Errorf("%d rows still NULL", nulls)
	}

	var rows []models.Template
	s.db.Find(&rows)
	for _, r := range rows {
		var want int
		fmt.Sscanf(r.Text, "{{friendName%d}}", &want)
		if *r.MaxFriendRequired != want {
			t.Errorf("%q: max_friend_required = %d, want %d", r.Text, *r.MaxFriendRequired, want)
		}
	}

	// Idempotent: a second pass finds nothing to do.
	res, err = s.BackfillFit(ctx, BackfillOptions{BatchSize: 3})
	if err != nil || res.Scanned != 0 {
		t.Errorf("second run = %+v, %v; want nothing scanned", res, err)
	}
}

func TestBackfillFit_RecomputeAllFixesStaleValues(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tpl := mustCreate(t, s, nil, "{{friendName5}}")
	mustCreate(t, s, nil, "{{friendName1}}")
	s.db.Model(tpl).UpdateColumn("max_friend_required", 1)

	res, err := s.BackfillFit(ctx, BackfillOptions{BatchSize: 10, RecomputeAll: true})
	if err != nil {
		t.Fatalf("BackfillFit: %v", err)
	}
	if res.Updated != 1 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 1 updated 1 skipped", res)
	}
	got, _ := s.Get(ctx, tpl.ID)
	if *got.MaxFriendRequired != 5 {
		t.Errorf("max_friend_required = %d, want 5", *got.MaxFriendRequired)
	}
}

func TestBackfillFit_ResumesAfterCursor(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		insertLegacy(t, s, "{{friendName1}}")
	}

	stop := errors.New("stop")
	var cursor string
	res, err := s.BackfillFit(ctx, BackfillOptions{
		BatchSize: 2,
		OnBatch: func(c string, _ BackfillResult) error {
			cursor = c
			return stop
		},
	})
	if !errors.Is(err, stop) || res.Updated != 2 {
		t.Fatalf("first run = %+v, %v", res, err)
	}

	res, err = s.BackfillFit(ctx, BackfillOptions{BatchSize: 2, After: cursor})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if res.Updated != 2 {
		t.Errorf("resumed run updated %d, want 2", res.Updated)
	}
}

func TestBackfillFit_HonorsCancellation(t *testing.T) {
	s := testStore(t)
	insertLegacy(t, s, "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.BackfillFit(ctx, BackfillOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackfillFit_FailedRowDoesNotStopBatch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		insertLegacy(t, s, fmt.Sprintf("{{friendName%d}}", i))
	}

	failed := false
	err := s.db.Callback().Update().Before("gorm:update").Register("test:fail_first_update", func(tx *gorm.DB) {
		if !failed {
			failed = true
			tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	res, err := s.BackfillFit(ctx, BackfillOptions{BatchSize: 10})
	if err != nil {
		t.Fatalf("BackfillFit: %v", err)
	}
	if res.Scanned != 3 || res.Updated != 2 || res.Failed != 1 || res.Batches != 1 {
		t.Errorf("result = %+v, want 3 scanned, 2 updated, 1 failed in 1 batch", res)
	}

	var nulls int64
	s.db.Model(&models.Template{}).Where("max_friend_required IS NULL").Count(&nulls)
	if nulls != 1 {
		t.Fatalf("%d rows NULL after a single failure, want 1", nulls)
	}

	// The failed row is picked up again by the next run.
	res, err = s.BackfillFit(ctx, BackfillOptions{BatchSize: 10})
	if err != nil || res.Scanned != 1 || res.Updated != 1 {
		t.Errorf("retry = %+v, %v; want the failed row updated", res, err)
	}
}
