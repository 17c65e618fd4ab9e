// Package repository is the persistence sink. It writes three tables with
// distinct contracts: top_score grows by one batch per run, top_score_history
// grows by one batch per day, and leader is wholly replaced each run so
// readers only ever see one complete snapshot.
package repository

import (
	"context"

	"github.com/apexlabs/flyrank/internal/domain/model"
)

// Table names downstream dashboards and queries depend on.
const (
	TableRun     = "top_score"
	TableHistory = "top_score_history"
	TableLeader  = "leader"
)

// Store is the write boundary to the database. A Store instance is scoped
// to one pipeline run: opened at job start, closed at job end.
type Store interface {
	// AppendRun appends standings to the per-run audit table. Not
	// idempotent: a rerun with the same rows duplicates them.
	AppendRun(ctx context.Context, standings []model.Standing) error

	// AppendHistory appends standings to the ever-growing historical
	// table. Same non-idempotency caveat as AppendRun.
	AppendHistory(ctx context.Context, standings []model.Standing) error

	// ReplaceLeaders atomically swaps the current-leaderboard table for
	// the given rows. Old contents are never readable mixed with new.
	ReplaceLeaders(ctx context.Context, rows []model.LeaderRow) error

	// Leaders reads back the current leaderboard snapshot in stored order.
	Leaders(ctx context.Context) ([]model.LeaderRow, error)

	// Count returns the number of rows in one of the sink tables.
	Count(ctx context.Context, table string) (int, error)

	// Close releases the underlying database session.
	Close() error
}

// Opener produces a Store for one run. The app layer depends on this
// instead of a concrete store so tests can substitute fakes.
type Opener func(ctx context.Context, dsn string) (Store, error)
