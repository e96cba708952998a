package api

import (
	"context"
	"net/http"
	"time"

	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/stats"
)

type rankedQuery func(ctx context.Context, q stats.Query) ([]models.CardCount, error)

func (s *Server) handleMostFirst(w http.ResponseWriter, r *http.Request) {
	s.serveRanked(w, r, "most first found", s.Stats.MostFirst)
}

func (s *Server) handleLeastFirst(w http.ResponseWriter, r *http.Request) {
	s.serveRanked(w, r, "least first found", s.Stats.LeastFirst)
}

func (s *Server) handleMostLast(w http.ResponseWriter, r *http.Request) {
	s.serveRanked(w, r, "most last found", s.Stats.MostLast)
}

func (s *Server) handleLeastLast(w http.ResponseWriter, r *http.Request) {
	s.serveRanked(w, r, "least last found", s.Stats.LeastLast)
}

func (s *Server) serveRanked(w http.ResponseWriter, r *http.Request, name string, query rankedQuery) {
	log := logger.FromContext(r.Context())

	q, err := s.parseStatsQuery(r.URL.Query())
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("fetching %s: limit=%d", name, q.Limit)

	cards, err := query(r.Context(), q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	q, err := s.parseStatsQuery(r.URL.Query())
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("fetching stats overview: limit=%d", q.Limit)

	overview, err := s.Stats.Overview(r.Context(), q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	s.serveWindow(w, r, "daily", s.Stats.Daily)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	s.serveWindow(w, r, "weekly", s.Stats.Weekly)
}

func (s *Server) serveWindow(w http.ResponseWriter, r *http.Request, name string, window func(context.Context, time.Time) (*models.Overview, error)) {
	log := logger.FromContext(r.Context())

	at, err := s.referenceInstant(r.URL.Query())
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("fetching %s stats: at=%s", name, at.Format(time.RFC3339))

	overview, err := window(r.Context(), at)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
