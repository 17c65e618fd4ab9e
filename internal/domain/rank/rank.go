// Package rank computes the cross-course leaderboard from accumulated
// standings: per-participant point totals ordered by points descending.
package rank

import (
	"sort"
	"time"

	"github.com/apexlabs/flyrank/internal/domain/model"
)

// Total is a participant's summed points across all courses in one run.
type Total struct {
	SteamID int64
	Points  int
}

// Totals groups standings by participant and sums points. Grouping order
// is first appearance in the input; the final ordering is points
// descending with ties left in that first-seen order (stable sort).
// A participant absent from a course simply contributes nothing for it.
func Totals(standings []model.Standing) []Total {
	index := make(map[int64]int, len(standings))
	totals := make([]Total, 0, len(standings))

	for _, s := range standings {
		i, ok := index[s.SteamID]
		if !ok {
			index[s.SteamID] = len(totals)
			totals = append(totals, Total{SteamID: s.SteamID})
			i = len(totals) - 1
		}
		totals[i].Points += s.Points
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Points > totals[j].Points
	})
	return totals
}

// Table converts ranked totals into leader rows stamped with the run
// timestamp. Every total becomes a row; usernames are left empty for the
// caller to resolve, and it only resolves the top of the table.
func Table(totals []Total, ts time.Time) []model.LeaderRow {
	rows := make([]model.LeaderRow, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, model.LeaderRow{
			SteamID:   t.SteamID,
			Points:    t.Points,
			Timestamp: ts,
		})
	}
	return rows
}
