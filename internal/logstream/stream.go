// Package logstream fans out job progress lines to live subscribers.
package logstream

import (
	"context"

	"github.com/google/uuid"
)

// Stream carries progress lines from the worker to SSE subscribers.
type Stream interface {
	// Publish sends a line to current subscribers of jobID. It never blocks
	// the caller; slow subscribers drop lines.
	Publish(jobID uuid.UUID, line string)
	// Subscribe returns a channel of lines for jobID and a cancel func. The
	// channel is closed when the job's stream is closed or ctx ends.
	Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan string, func())
	// Close ends every subscription for jobID.
	Close(jobID uuid.UUID)
}

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100
