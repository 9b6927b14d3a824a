package handlers

import (
	"net/http"

	"lilypad/internal/engine/actors"
)

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		result, err := s.ask(s.Engine.GetFeedActor(), &actors.GetCountsMsg{})
		if err != nil {
			http.Error(w, "Failed to get post count", http.StatusInternalServerError)
			return
		}
		postCount := result.(int)

		s.respondJSON(w, map[string]interface{}{
			"status":     "healthy",
			"post_count": postCount,
		})
	}
}

// HandleMetrics reports request counts and per-operation latency averages.
func (s *Server) HandleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		uptime, requests, errors, operations := s.Metrics.Snapshot()
		s.respondJSON(w, map[string]interface{}{
			"uptimeSeconds": int64(uptime.Seconds()),
			"requests":      requests,
			"errors":        errors,
			"operations":    operations,
		})
	}
}
