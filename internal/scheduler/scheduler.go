// Package scheduler decides when jobs run. A polling timer evaluates due
// jobs on a fixed interval and enqueues named job tokens onto the worker
// queue. A token is never enqueued while its predecessor for the same job
// is still pending or running.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/apexlabs/flyrank/internal/adapters/mq/queue"
	"github.com/apexlabs/flyrank/pkg/logger"
	"github.com/apexlabs/flyrank/pkg/metrics"
)

// Default scheduler configuration constants.
const defaultPollInterval = 3 * time.Minute

// JobSpec names a job and how often it falls due.
type JobSpec struct {
	Name  string
	Every time.Duration
}

// Enqueuer is the queue surface the scheduler needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, t queue.Token) bool
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithPollInterval sets how often due jobs are evaluated.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scheduler enqueues job tokens when jobs fall due.
type Scheduler struct {
	queue Enqueuer
	jobs  []JobSpec
	poll  time.Duration

	mu       sync.Mutex
	inFlight map[string]bool
	nextDue  map[string]time.Time

	logger logger.Logger
}

// New creates a scheduler for the given jobs.
func New(q Enqueuer, jobs []JobSpec, opts ...Option) *Scheduler {
	s := &Scheduler{
		queue:    q,
		jobs:     jobs,
		poll:     defaultPollInterval,
		inFlight: make(map[string]bool, len(jobs)),
		nextDue:  make(map[string]time.Time, len(jobs)),
		logger:   logger.Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls until ctx is canceled. Each job first falls due one full
// interval after startup, matching a fresh deploy's quiet window.
func (s *Scheduler) Run(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	for _, j := range s.jobs {
		s.nextDue[j.Name] = now.Add(j.Every)
	}
	s.mu.Unlock()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			s.dispatchDue(ctx, tick)
		}
	}
}

// Complete clears the in-flight mark for a job. Wired as the worker's
// completion callback.
func (s *Scheduler) Complete(job string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight[job] = false
}

// dispatchDue enqueues a token for every job that is due and not in flight.
func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if now.Before(s.nextDue[j.Name]) {
			continue
		}
		if s.inFlight[j.Name] {
			metrics.RecordJobSkipped()
			s.logger.Warn(ctx, "job still in flight, skipping",
				logger.String("job", j.Name),
			)
			continue
		}
		if !s.queue.Enqueue(ctx, queue.Token{Job: j.Name, EnqueuedAt: now}) {
			s.logger.Warn(ctx, "job queue refused token",
				logger.String("job", j.Name),
			)
			continue
		}
		s.inFlight[j.Name] = true
		s.nextDue[j.Name] = now.Add(j.Every)
		s.logger.Debug(ctx, "job enqueued",
			logger.String("job", j.Name),
			logger.Time("next_due", s.nextDue[j.Name]),
		)
	}
}
