// Package worker runs queued background jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/logstream"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/queue"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"gorm.io/gorm"
)

// BackfillRecorder receives per-batch backfill counts. *metrics.Metrics
// implements it.
type BackfillRecorder interface {
	BackfillRows(updated, skipped, failed int)
}

// Worker processes jobs from the queue
type Worker struct {
	db         *gorm.DB
	queue      queue.Queue
	templates  *store.TemplateStore
	recorder   BackfillRecorder
	logs       logstream.Stream
	logger     *slog.Logger
	batchSize  int
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
}

// New creates a new worker instance. recorder may be nil; a nil logs stream
// gets an in-process broker.
func New(db *gorm.DB, q queue.Queue, templates *store.TemplateStore, recorder BackfillRecorder, logs logstream.Stream, batchSize int, logger *slog.Logger) *Worker {
	if logs == nil {
		logs = logstream.NewBroker()
	}
	maxWorkers := 2
	return &Worker{
		db:         db,
		queue:      q,
		templates:  templates,
		recorder:   recorder,
		logs:       logs,
		logger:     logger,
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Start begins processing jobs from the queue. It returns when ctx is
// cancelled or the queue is closed, after running jobs have finished.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Worker started", "max_concurrent_jobs", w.maxWorkers)
	defer w.wg.Wait()

	for {
		if ctx.Err() != nil {
			w.logger.Info("Worker shutting down, waiting for jobs to complete")
			return ctx.Err()
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			switch {
			case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
				// poll timeout, nothing queued
				continue
			case errors.Is(err, queue.ErrClosed):
				w.logger.Info("Queue closed, worker stopping")
				return nil
			case ctx.Err() != nil:
				continue
			}
			w.logger.Error("Failed to dequeue job", "error", err)
			time.Sleep(time.Second)
			continue
		}

		select {
		case w.semaphore <- struct{}{}:
			w.wg.Add(1)
			go func(j *models.Job) {
				defer w.wg.Done()
				defer func() { <-w.semaphore }()
				w.processJob(ctx, j)
			}(job)
		case <-ctx.Done():
			w.logger.Info("Context cancelled while waiting for worker slot")
			return ctx.Err()
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job *models.Job) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Panic recovered in processJob", "job_id", job.ID, "panic", r)
			w.finish(job, fmt.Errorf("job panicked: %v", r), "")
		}
	}()

	w.logger.Info("Processing job", "job_id", job.ID, "type", job.Type)

	now := time.Now()
	job.Status = models.JobStatusRunning
	job.StartedAt = &now
	if err := w.db.Save(job).Error; err != nil {
		w.logger.Error("Failed to mark job running", "job_id", job.ID, "error", err)
	}

	logs, err := w.executeJob(ctx, job)
	w.finish(job, err, logs)
}

func (w *Worker) executeJob(ctx context.Context, job *models.Job) (string, error) {
	switch job.Type {
	case models.JobTypeBackfillFit:
		res, err := RunBackfill(ctx, w.db, w.templates, BackfillJobOptions{
			BatchSize:    job.IntMetadata("batch_size", w.batchSize),
			RecomputeAll: job.BoolMetadata("recompute_all"),
			Recorder:     w.recorder,
			Logger:       w.logger.With("job_id", job.ID),
			Progress:     func(line string) { w.logs.Publish(job.ID, line) },
		})
		return SummarizeBackfill(res), err
	default:
		return "", fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// finish persists the terminal state. It uses a fresh context so a shutdown
// still records the outcome.
func (w *Worker) finish(job *models.Job, err error, logs string) {
	defer w.logs.Close(job.ID)

	now := time.Now()
	job.CompletedAt = &now
	if logs != "" {
		job.Logs = strings.TrimPrefix(job.Logs+"\n"+logs, "\n")
		w.logs.Publish(job.ID, logs)
	}
	if err != nil {
		job.Status = models.JobStatusFailed
		job.Error = err.Error()
		w.logs.Publish(job.ID, "error: "+job.Error)
		w.logger.Error("Job failed", "job_id", job.ID, "type", job.Type, "error", err)
	} else {
		job.Status = models.JobStatusCompleted
		w.logger.Info("Job completed", "job_id", job.ID, "type", job.Type)
	}
	if saveErr := w.db.Save(job).Error; saveErr != nil {
		w.logger.Error("Failed to persist job result", "job_id", job.ID, "error", saveErr)
	}
}
