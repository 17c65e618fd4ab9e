// Package worker runs scheduled jobs off the token queue. A single worker
// consumes tokens and invokes job bodies synchronously, so a job can never
// overlap its own execution.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/apexlabs/flyrank/internal/adapters/mq/queue"
	"github.com/apexlabs/flyrank/pkg/logger"
	"github.com/apexlabs/flyrank/pkg/metrics"
)

// Job is a runnable job body.
type Job func(ctx context.Context) error

// Queue defines how the worker receives tokens.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Token
}

// Worker consumes job tokens and executes the matching job body.
type Worker struct {
	queue Queue
	jobs  map[string]Job

	// done is invoked after each token finishes, success or not, so the
	// scheduler can clear its in-flight mark for that job.
	done func(job string)

	shutdown chan struct{}
	finished chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithCompletionFunc sets the per-token completion callback.
func WithCompletionFunc(fn func(job string)) Option {
	return func(w *Worker) {
		if fn != nil {
			w.done = fn
		}
	}
}

// New creates a worker over the given queue and job table.
func New(q Queue, jobs map[string]Job, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		jobs:     jobs,
		done:     func(string) {},
		shutdown: make(chan struct{}),
		finished: make(chan struct{}),
		logger:   logger.Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes tokens until ctx is canceled, the queue closes, or
// Shutdown is called. Job bodies run synchronously on this goroutine.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.finished)

	tokens := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tokens:
			if !ok {
				return
			}
			w.process(ctx, t)
		}
	}
}

// Shutdown stops the worker after the in-flight job, if any, completes.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, t queue.Token) {
	defer w.done(t.Job)

	job, ok := w.jobs[t.Job]
	if !ok {
		w.logger.Warn(ctx, "unknown job token", logger.String("job", t.Job))
		return
	}

	start := time.Now()
	w.logger.Info(ctx, "job started",
		logger.String("job", t.Job),
		logger.Duration("queued", start.Sub(t.EnqueuedAt)),
	)

	if err := job(ctx); err != nil {
		metrics.RecordRun(t.Job, "failure")
		w.logger.Error(ctx, "job failed",
			logger.String("job", t.Job),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
		return
	}

	metrics.RecordRun(t.Job, "success")
	metrics.RecordRunDuration(t.Job, float64(time.Since(start).Milliseconds()))
	metrics.UpdateLastRunUnix(t.Job, time.Now().Unix())
	w.logger.Info(ctx, "job finished",
		logger.String("job", t.Job),
		logger.Duration("elapsed", time.Since(start)),
	)
}
