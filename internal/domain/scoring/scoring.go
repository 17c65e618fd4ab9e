// Package scoring converts raw per-course standings into point-valued
// entries. Points reward rank position scaled by how many entries exist
// in that course's leaderboard, so smaller leaderboards pay out
// proportionally to their size rather than on a fixed scale.
package scoring

import (
	"github.com/apexlabs/flyrank/internal/domain/model"
)

// DefaultMaxTrackedRank caps the points pool of a single course. A fully
// populated course pays rank 1 exactly maxTrackedRank-1 points and rank
// maxTrackedRank zero points.
const DefaultMaxTrackedRank = 200

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxTrackedRank overrides the points-pool cap.
func WithMaxTrackedRank(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTrackedRank = n
		}
	}
}

// Engine computes points for course standings.
type Engine struct {
	maxTrackedRank int
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxTrackedRank: DefaultMaxTrackedRank,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxTrackedRank returns the configured points-pool cap.
func (e *Engine) MaxTrackedRank() int {
	return e.maxTrackedRank
}

// Score converts raw standings for one course into point-valued entries
// stamped with the run timestamp. The points pool is the entry count,
// capped at maxTrackedRank; each entry earns pool minus its rank. Entries
// are not filtered by rank here: historical truncation is the daily job's
// concern. Empty input yields empty output.
func (e *Engine) Score(raw []model.RawStanding, course string, run model.Run) []model.Standing {
	if len(raw) == 0 {
		return nil
	}

	pointsTotal := len(raw)
	if pointsTotal > e.maxTrackedRank {
		pointsTotal = e.maxTrackedRank
	}

	standings := make([]model.Standing, 0, len(raw))
	for _, entry := range raw {
		standings = append(standings, model.Standing{
			Rank:      entry.Rank,
			SteamID:   entry.SteamID,
			ScoreTime: entry.ScoreTime,
			Points:    pointsTotal - entry.Rank,
			Course:    course,
			Timestamp: run.Timestamp,
		})
	}
	return standings
}
