package logstream

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// doneMessage marks the end of a job's stream on the pub/sub channel.
const doneMessage = "\x00done"

// ValkeyStream relays progress over Valkey pub/sub so an API process can
// stream a job that runs in a separate worker process.
type ValkeyStream struct {
	client valkey.Client
	logger *slog.Logger
}

// NewValkeyStream wraps an existing client. The caller owns the client.
func NewValkeyStream(client valkey.Client, logger *slog.Logger) *ValkeyStream {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValkeyStream{client: client, logger: logger}
}

func channel(jobID uuid.UUID) string {
	return "bakchoddost:logs:" + jobID.String()
}

func (s *ValkeyStream) publish(jobID uuid.UUID, msg string) {
	cmd := s.client.B().Publish().Channel(channel(jobID)).Message(msg).Build()
	if err := s.client.Do(context.Background(), cmd).Error(); err != nil {
		s.logger.Warn("Failed to publish job progress", "job_id", jobID, "error", err)
	}
}

// Publish sends line on the job's channel. Errors are logged, not returned.
func (s *ValkeyStream) Publish(jobID uuid.UUID, line string) {
	s.publish(jobID, line)
}

// Close tells every subscriber of jobID that the stream ended.
func (s *ValkeyStream) Close(jobID uuid.UUID) {
	s.publish(jobID, doneMessage)
}

// Subscribe listens on the job's channel until Close, ctx ends, or cancel
// is called.
func (s *ValkeyStream) Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan string, func()) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan string, subscriberBuffer)

	var once sync.Once
	go func() {
		defer close(out)
		cmd := s.client.B().Subscribe().Channel(channel(jobID)).Build()
		err := s.client.Receive(ctx, cmd, func(msg valkey.PubSubMessage) {
			if msg.Message == doneMessage {
				once.Do(cancel)
				return
			}
			select {
			case out <- msg.Message:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("Job progress subscription ended", "job_id", jobID, "error", err)
		}
	}()
	return out, cancel
}
