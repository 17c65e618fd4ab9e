// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// RawStanding is one entry as returned by the leaderboard source, before
// any points are derived.
type RawStanding struct {
	Rank      int
	SteamID   int64
	ScoreTime int64
}

// Standing is one participant's ranked result on one course for one run.
// Immutable once produced by the scoring engine.
type Standing struct {
	Rank      int       // 1-based position returned by the source
	SteamID   int64     // opaque external participant identifier
	ScoreTime int64     // raw score/time from the source, course-specific semantics
	Points    int       // derived: pointsTotal - rank
	Course    string    // course name from the registry
	Timestamp time.Time // shared run timestamp, UTC
}

// LeaderRow is a participant's aggregate point total across all courses
// for one run. Username stays empty when resolution failed or was skipped.
type LeaderRow struct {
	SteamID   int64
	Points    int
	Timestamp time.Time
	Username  string
}

// Run identifies a single pipeline invocation. Its timestamp is the
// historical join key shared by every row the invocation produces.
type Run struct {
	ID        uuid.UUID
	Timestamp time.Time
}

// NewRun creates a run context stamped with the current UTC time.
func NewRun() Run {
	return Run{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
	}
}
