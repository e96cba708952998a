package api

import (
	"net/http"

	"github.com/cardstats/cardstats/internal/logger"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 when the database answers a ping and 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if s.DB != nil {
		if err := s.DB.PingContext(r.Context()); err != nil {
			log.Warn("readiness check failed - database: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Database unavailable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ready"))
}
