// Package queue moves background jobs from the API to the worker. The
// database row is the source of truth for a job's state; a queue only
// carries the job to a worker.
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/bakchoddost/bakchoddost/internal/config"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"gorm.io/gorm"
)

// ErrJobNotFound is returned when a job is not found
var ErrJobNotFound = errors.New("job not found")

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("queue closed")

// Queue represents a job queue interface
type Queue interface {
	// Enqueue hands a persisted job to the workers.
	Enqueue(ctx context.Context, job *models.Job) error

	// Dequeue blocks for the next job. context.DeadlineExceeded means the
	// poll timed out with nothing to do.
	Dequeue(ctx context.Context) (*models.Job, error)

	// Close closes the queue and releases resources
	Close() error
}

// New builds the queue selected by cfg.Type.
func New(cfg config.QueueConfig, db *gorm.DB) (Queue, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryQueue(100), nil
	case "valkey":
		return NewValkeyQueue(cfg.ValkeyAddr, db)
	default:
		return nil, fmt.Errorf("unsupported queue type: %s", cfg.Type)
	}
}
