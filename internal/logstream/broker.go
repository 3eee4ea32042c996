package logstream

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Broker is the in-process Stream used when the API and worker share a
// process.
type Broker struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]map[chan string]struct{}
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[uuid.UUID]map[chan string]struct{})}
}

// Subscribe registers a subscriber for jobID.
func (b *Broker) Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan string, func()) {
	ch := make(chan string, subscriberBuffer)

	b.mu.Lock()
	if b.subscribers[jobID] == nil {
		b.subscribers[jobID] = make(map[chan string]struct{})
	}
	b.subscribers[jobID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	release := func() { once.Do(func() { b.unsubscribe(jobID, ch) }) }
	stop := context.AfterFunc(ctx, release)
	return ch, func() {
		stop()
		release()
	}
}

// unsubscribe is a no-op when Close already released ch.
func (b *Broker) unsubscribe(jobID uuid.UUID, ch chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[jobID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(b.subscribers, jobID)
	}
}

// Publish delivers line to each subscriber with room in its buffer.
func (b *Broker) Publish(jobID uuid.UUID, line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers[jobID] {
		select {
		case ch <- line:
		default:
		}
	}
}

// Close closes every subscription for jobID.
func (b *Broker) Close(jobID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers[jobID] {
		close(ch)
	}
	delete(b.subscribers, jobID)
}

// HasSubscribers reports whether anyone is listening to jobID.
func (b *Broker) HasSubscribers(jobID uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[jobID]) > 0
}
