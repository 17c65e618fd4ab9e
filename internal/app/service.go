// Package app wires the harvest pipeline together: a run fetches every
// registered course's standings, scores them, aggregates cross-course
// totals and writes the results through the persistence sink.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apexlabs/flyrank/internal/adapters/repository"
	"github.com/apexlabs/flyrank/internal/domain/model"
	"github.com/apexlabs/flyrank/internal/domain/rank"
	"github.com/apexlabs/flyrank/internal/domain/scoring"
	"github.com/apexlabs/flyrank/internal/registry"
	"github.com/apexlabs/flyrank/pkg/logger"
	"github.com/apexlabs/flyrank/pkg/metrics"
)

// Job names handed to the scheduler.
const (
	JobPeriodic = "periodic"
	JobDaily    = "daily"
)

// DefaultLeaderCutoff bounds how many leader rows get a username
// resolved. Resolution is one upstream call per row, so this is a cost
// cap, not a ranking cutoff.
const DefaultLeaderCutoff = 200

// Source is the leaderboard source adapter surface the pipeline needs.
type Source interface {
	FetchStandings(ctx context.Context, leaderboardID int64) ([]model.RawStanding, error)
	ResolveUsername(ctx context.Context, steamID int64) (string, error)
}

// Service orchestrates periodic and daily pipeline runs.
type Service struct {
	source       Source
	opener       repository.Opener
	dsn          string
	courses      *registry.Registry
	scorer       *scoring.Engine
	leaderCutoff int

	// Latest computed leaderboard, served by the HTTP surface.
	mu           sync.RWMutex
	snapshot     []model.LeaderRow
	lastPeriodic time.Time
	lastDaily    time.Time
	runsDone     int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the leaderboard source adapter.
func WithSource(src Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStoreOpener sets how the per-run store session is opened.
func WithStoreOpener(opener repository.Opener, dsn string) Option {
	return func(s *Service) {
		if opener != nil {
			s.opener = opener
		}
		s.dsn = dsn
	}
}

// WithRegistry sets the course registry.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.courses = r
		}
	}
}

// WithScorer sets the scoring engine.
func WithScorer(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.scorer = e
		}
	}
}

// WithLeaderCutoff sets how many leader rows get usernames resolved.
func WithLeaderCutoff(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderCutoff = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		opener:       repository.OpenStore,
		courses:      registry.Default(),
		scorer:       scoring.NewEngine(),
		leaderCutoff: DefaultLeaderCutoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("app")
	}
	return s
}

// RunPeriodic executes one periodic pipeline run: harvest all courses
// into one flat standings list, append it to the run audit table, then
// compute and replace the cross-course leaderboard snapshot.
func (s *Service) RunPeriodic(ctx context.Context) error {
	run := model.NewRun()
	log := s.logger.Named("periodic")
	log.Info(ctx, "run started",
		logger.String("run_id", run.ID.String()),
		logger.Time("run_ts", run.Timestamp),
	)

	store, err := s.opener(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	full := s.harvest(ctx, run, log)

	if err := store.AppendRun(ctx, full); err != nil {
		return fmt.Errorf("append run standings: %w", err)
	}

	totals := rank.Totals(full)
	rows := rank.Table(totals, run.Timestamp)
	s.resolveUsernames(ctx, rows, log)

	if err := store.ReplaceLeaders(ctx, rows); err != nil {
		return fmt.Errorf("replace leader snapshot: %w", err)
	}

	s.mu.Lock()
	s.snapshot = rows
	s.lastPeriodic = run.Timestamp
	s.runsDone++
	s.mu.Unlock()

	log.Info(ctx, "run finished",
		logger.String("run_id", run.ID.String()),
		logger.Int("standings", len(full)),
		logger.Int("leaders", len(rows)),
	)
	return nil
}

// RunDaily executes one daily historical run: harvest all courses,
// truncate each course's standings to the tracked rank window, and
// append the union to the history table. No leaderboard is computed.
func (s *Service) RunDaily(ctx context.Context) error {
	run := model.NewRun()
	log := s.logger.Named("daily")
	log.Info(ctx, "run started",
		logger.String("run_id", run.ID.String()),
		logger.Time("run_ts", run.Timestamp),
	)

	store, err := s.opener(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	maxRank := s.scorer.MaxTrackedRank()
	var frame []model.Standing
	for _, course := range s.courses.Courses() {
		standings, ok := s.harvestCourse(ctx, run, course, log)
		if !ok {
			continue
		}
		for _, row := range standings {
			if row.Rank <= maxRank {
				frame = append(frame, row)
			}
		}
	}

	if err := store.AppendHistory(ctx, frame); err != nil {
		return fmt.Errorf("append history standings: %w", err)
	}

	s.mu.Lock()
	s.lastDaily = run.Timestamp
	s.runsDone++
	s.mu.Unlock()

	log.Info(ctx, "run finished",
		logger.String("run_id", run.ID.String()),
		logger.Int("rows", len(frame)),
	)
	return nil
}

// harvest fetches and scores every registered course in order, flattening
// the results. Failed courses are skipped; the run carries on.
func (s *Service) harvest(ctx context.Context, run model.Run, log logger.Logger) []model.Standing {
	var full []model.Standing
	for _, course := range s.courses.Courses() {
		standings, ok := s.harvestCourse(ctx, run, course, log)
		if !ok {
			continue
		}
		full = append(full, standings...)
	}
	return full
}

// harvestCourse fetches and scores one course. A fetch failure is logged
// and reported as !ok so the caller can skip the course without aborting
// the run.
func (s *Service) harvestCourse(ctx context.Context, run model.Run, course registry.Course, log logger.Logger) ([]model.Standing, bool) {
	raw, err := s.source.FetchStandings(ctx, course.LeaderboardID)
	if err != nil {
		metrics.RecordCourseFetchError()
		log.Warn(ctx, "course fetch failed, skipping",
			logger.String("run_id", run.ID.String()),
			logger.String("course", course.Name),
			logger.Int64("leaderboard_id", course.LeaderboardID),
			logger.Error(err),
		)
		return nil, false
	}

	standings := s.scorer.Score(raw, course.Name, run)
	metrics.RecordCourseFetched()
	metrics.RecordStandingsRows(len(standings))
	log.Debug(ctx, "course harvested",
		logger.String("course", course.Name),
		logger.Int("entries", len(standings)),
	)
	return standings, true
}

// resolveUsernames fills display names for the top rows of the leader
// table, one upstream call per row in ranked order. A failed resolution
// leaves that row's username empty and moves on.
func (s *Service) resolveUsernames(ctx context.Context, rows []model.LeaderRow, log logger.Logger) {
	limit := s.leaderCutoff
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		metrics.RecordUsernameLookup()
		name, err := s.source.ResolveUsername(ctx, rows[i].SteamID)
		if err != nil {
			metrics.RecordUsernameLookupFailure()
			log.Warn(ctx, "username resolution failed",
				logger.Int64("steam_id", rows[i].SteamID),
				logger.Error(err),
			)
			continue
		}
		rows[i].Username = name
	}
}

// TopN returns the first n rows of the latest leaderboard snapshot.
func (s *Service) TopN(_ context.Context, n int) []model.LeaderRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.snapshot) {
		n = len(s.snapshot)
	}
	out := make([]model.LeaderRow, n)
	copy(out, s.snapshot[:n])
	return out
}

// GetStats returns run statistics for the operational HTTP surface.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"courses":       s.courses.Len(),
		"leader_cutoff": s.leaderCutoff,
		"runs_done":     s.runsDone,
		"snapshot_size": len(s.snapshot),
	}
	if !s.lastPeriodic.IsZero() {
		stats["last_periodic"] = s.lastPeriodic.Format(time.RFC3339)
	}
	if !s.lastDaily.IsZero() {
		stats["last_daily"] = s.lastDaily.Format(time.RFC3339)
	}
	return stats
}
