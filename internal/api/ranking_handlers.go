package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/cardstats/cardstats/internal/errors"
	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/models"
)

const maxBodyBytes = 1 << 16

type rankingView struct {
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

type rankingListView struct {
	Rankings   []rankingView     `json:"rankings"`
	Pagination models.Pagination `json:"pagination"`
}

func newRankingView(r models.Ranking) rankingView {
	return rankingView{Name: r.Name, Score: r.Score, CreatedAt: r.CreatedAt.UTC()}
}

func (s *Server) handleSubmitRanking(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var in models.RankingInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			handleError(w, r, errors.NewValidationError(typeErr.Field, "has the wrong type"))
			return
		}
		log.Warn("invalid ranking body: %v", err)
		handleError(w, r, errors.NewBadRequestError("request body must be a JSON object"))
		return
	}

	ranking, err := s.Rankings.Submit(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRankingView(*ranking))
}

func (s *Server) handleListRankings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	page, limit := parsePagination(r.URL.Query())
	log.Debug("listing rankings: page=%d, limit=%d", page, limit)

	result, err := s.Rankings.List(r.Context(), page, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	views := make([]rankingView, 0, len(result.Rankings))
	for _, rk := range result.Rankings {
		views = append(views, newRankingView(rk))
	}
	writeJSON(w, http.StatusOK, rankingListView{Rankings: views, Pagination: result.Pagination})
}
