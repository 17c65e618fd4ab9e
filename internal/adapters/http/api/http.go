// Package api declares the read-only operational HTTP surface: health
// plus metrics exposition, the latest leaderboard snapshot, and run
// statistics. The harvester takes no writes over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/apexlabs/flyrank/internal/domain/model"
)

// Dependencies bundles what the handlers need from the app layer.
type Dependencies interface {
	// TopN returns the first n rows of the latest leaderboard snapshot.
	TopN(ctx context.Context, n int) []model.LeaderRow

	// GetStats returns run statistics.
	GetStats() map[string]any
}

// Server wires HTTP routes for the operational API.
type Server struct {
	healthHandler      *HealthHandler
	leaderboardHandler *LeaderboardHandler
	statsHandler       *StatsHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		statsHandler:       NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
