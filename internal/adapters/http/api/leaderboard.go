package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/apexlabs/flyrank/internal/domain/model"
)

// LeaderboardDependencies is the read surface for leaderboard queries.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, n int) []model.LeaderRow
}

// LeaderboardHandler serves the latest leaderboard snapshot.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// leaderEntry mirrors the leader table's column naming on the wire.
type leaderEntry struct {
	Rank     int    `json:"rank"`
	SteamID  int64  `json:"steam_id"`
	Points   int    `json:"points"`
	Username string `json:"steam_username,omitempty"`
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if parsed > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		n = parsed
	}

	rows := h.deps.TopN(r.Context(), n)
	entries := make([]leaderEntry, len(rows))
	for i, row := range rows {
		entries[i] = leaderEntry{
			Rank:     i + 1,
			SteamID:  row.SteamID,
			Points:   row.Points,
			Username: row.Username,
		}
	}
	writeJSON(w, http.StatusOK, entries)
}
