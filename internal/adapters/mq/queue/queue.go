// Package queue provides the bounded job-token queue between the
// scheduler and the job worker. Tokens name a job to run; the scheduler
// enqueues them when a job falls due and the single worker drains them.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/apexlabs/flyrank/pkg/metrics"
)

// Default queue configuration constants.
const defaultCapacity = 8

// Token names a scheduled job invocation.
type Token struct {
	Job        string
	EnqueuedAt time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a token. Returns false when the queue is full or closed.
	Enqueue(ctx context.Context, t Token) bool

	// Dequeue returns a channel receiving tokens as they become
	// available. The channel closes when the queue is closed.
	Dequeue(ctx context.Context) <-chan Token

	// Len returns the current number of pending tokens.
	Len(ctx context.Context) int

	// Close shuts the queue down; pending tokens are still delivered.
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	tokens chan Token

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	cfg := options{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	q := &InMemoryQueue{
		tokens: make(chan Token, cfg.capacity),
	}
	metrics.UpdateQueueDepth(0)
	return q
}

// Enqueue adds a token to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Token) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.tokens <- t:
		metrics.RecordJobEnqueued()
		metrics.UpdateQueueDepth(len(q.tokens))
		return true
	case <-ctx.Done():
		return false
	default:
		return false
	}
}

// Dequeue returns a channel receiving pending tokens.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Token {
	out := make(chan Token)
	go func() {
		defer close(out)
		for t := range q.tokens {
			select {
			case out <- t:
				metrics.UpdateQueueDepth(len(q.tokens))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of pending tokens.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.tokens)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tokens)
	q.closed = true
	return nil
}
