package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardstats/cardstats/internal/api"
	"github.com/cardstats/cardstats/internal/metrics"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/repository/sqlrepo"
	"github.com/cardstats/cardstats/internal/services"
	"github.com/cardstats/cardstats/internal/stats"
	"github.com/cardstats/cardstats/internal/testutil"
)

func TestSubmitThenQuery(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)

	clock := testutil.NewClock(fixedNow)
	m := metrics.New()
	statsRepo := sqlrepo.NewStatsRepository(database, sqlrepo.WithClock(clock.Now), sqlrepo.WithMetrics(m))
	rankingRepo := sqlrepo.NewRankingRepository(database, sqlrepo.WithClock(clock.Now), sqlrepo.WithMetrics(m))
	statsService := stats.NewService(statsRepo, stats.WithMetrics(m))
	srv := &api.Server{
		Stats:    statsService,
		Rankings: services.NewRankingService(rankingRepo, statsService, services.WithRankingClock(clock.Now), services.WithRankingMetrics(m)),
		DB:       database,
		Metrics:  m,
		Location: time.UTC,
		Now:      clock.Now,
	}
	handler := srv.Routes()

	games := []struct {
		first, last string
		score       float64
	}{
		{"🍕", "🍔", 90},
		{"🍕", "🍔", 75},
		{"🍕", "🍦", 60},
		{"🍔", "🍔", 120},
		{"🍔", "🍦", 45},
	}
	for i, g := range games {
		body := fmt.Sprintf(`{"name":"P%d","score":%g,"firstFound":%q,"lastFound":%q}`, i, g.score, g.first, g.last)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rankings", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var overview models.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, []models.CardCount{{Value: "🍕", Count: 3}, {Value: "🍔", Count: 2}}, overview.MostFirstFound)
	assert.Equal(t, []models.CardCount{{Value: "🍦", Count: 0}, {Value: "🍔", Count: 2}}, overview.LeastFirstFound)
	assert.Equal(t, []models.CardCount{{Value: "🍔", Count: 3}, {Value: "🍦", Count: 2}}, overview.MostLastFound)
	assert.Equal(t, []models.CardCount{{Value: "🍕", Count: 0}, {Value: "🍦", Count: 2}}, overview.LeastLastFound)
	assert.Equal(t, models.Totals{Cards: 3, FirstFinds: 5, LastFinds: 5}, overview.Totals)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/daily?date=2024-05-16", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totals":{"cards":0,"firstFinds":0,"lastFinds":0}`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rankings?limit=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Rankings []struct {
			Name  string  `json:"name"`
			Score float64 `json:"score"`
		} `json:"rankings"`
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Rankings, 3)
	assert.Equal(t, 45.0, page.Rankings[0].Score)
	assert.Equal(t, 60.0, page.Rankings[1].Score)
	assert.Equal(t, 75.0, page.Rankings[2].Score)
	assert.Equal(t, models.Pagination{Total: 5, Page: 1, Limit: 3, HasMore: true}, page.Pagination)
}
