package api_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardstats/cardstats/internal/api"
	"github.com/cardstats/cardstats/internal/errors"
	"github.com/cardstats/cardstats/internal/metrics"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/stats"
	"github.com/cardstats/cardstats/internal/testutil/mocks"
)

var fixedNow = time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fixture struct {
	stats    *mocks.MockStatsService
	rankings *mocks.MockRankingService
	metrics  *metrics.Metrics
	handler  http.Handler
}

func newFixture(t *testing.T, pingErr error) *fixture {
	t.Helper()
	f := &fixture{
		stats:    new(mocks.MockStatsService),
		rankings: new(mocks.MockRankingService),
		metrics:  metrics.New(),
	}
	srv := &api.Server{
		Stats:             f.stats,
		Rankings:          f.rankings,
		DB:                fakePinger{err: pingErr},
		Metrics:           f.metrics,
		Location:          time.UTC,
		Now:               func() time.Time { return fixedNow },
		StatsDefaultLimit: 5,
		StatsMaxLimit:     10,
	}
	f.handler = srv.Routes()
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func queryWith(limit int) stats.Query {
	return stats.Query{Limit: limit, SortOrder: stats.Desc}
}

func TestRankedEndpoints(t *testing.T) {
	cards := []models.CardCount{{Value: "🍕", Count: 10}, {Value: "🍔", Count: 3}}
	tests := []struct {
		path   string
		method string
	}{
		{"/stats/first-found/most", "MostFirst"},
		{"/stats/first-found/least", "LeastFirst"},
		{"/stats/last-found/most", "MostLast"},
		{"/stats/last-found/least", "LeastLast"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f := newFixture(t, nil)
			f.stats.On(tt.method, mock.Anything, queryWith(2)).Return(cards, nil)

			rec := f.do(http.MethodGet, tt.path+"?limit=2", "")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, `[{"value":"🍕","count":10},{"value":"🍔","count":3}]`, rec.Body.String())
			f.stats.AssertExpectations(t)
		})
	}
}

func TestRankedEndpoint_EmptyIsArray(t *testing.T) {
	f := newFixture(t, nil)
	f.stats.On("MostFirst", mock.Anything, queryWith(5)).Return([]models.CardCount{}, nil)

	rec := f.do(http.MethodGet, "/stats/first-found/most", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStatsQuery_LimitClamping(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 5},
		{"0", 1},
		{"-4", 1},
		{"7", 7},
		{"50", 10},
	}
	for _, tt := range tests {
		t.Run("limit="+tt.raw, func(t *testing.T) {
			f := newFixture(t, nil)
			f.stats.On("LeastFirst", mock.Anything, queryWith(tt.want)).Return([]models.CardCount{}, nil)

			rec := f.do(http.MethodGet, "/stats/first-found/least?limit="+tt.raw, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			f.stats.AssertExpectations(t)
		})
	}
}

func TestStatsQuery_ParsesFilters(t *testing.T) {
	f := newFixture(t, nil)
	matcher := mock.MatchedBy(func(q stats.Query) bool {
		return q.StartDate != nil && q.StartDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) &&
			q.EndDate != nil && q.EndDate.Equal(time.Date(2024, 5, 31, 23, 59, 59, 999000000, time.UTC)) &&
			q.MinScore != nil && *q.MinScore == 0 &&
			q.MaxScore != nil && *q.MaxScore == 9 &&
			q.SortBy == stats.SortByScore && q.SortOrder == stats.Asc &&
			q.ScoreField == models.FieldLastCount && q.Limit == 3
	})
	f.stats.On("MostLast", mock.Anything, matcher).Return([]models.CardCount{}, nil)

	rec := f.do(http.MethodGet, "/stats/last-found/most?limit=3&startDate=2024-05-01&endDate=2024-05-31&minScore=0&maxScore=9&sortBy=score&sortOrder=asc&scoreField=lastCount", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	f.stats.AssertExpectations(t)
}

func TestStatsQuery_RFC3339Dates(t *testing.T) {
	f := newFixture(t, nil)
	end := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	f.stats.On("MostFirst", mock.Anything, mock.MatchedBy(func(q stats.Query) bool {
		return q.StartDate == nil && q.EndDate != nil && q.EndDate.Equal(end)
	})).Return([]models.CardCount{}, nil)

	rec := f.do(http.MethodGet, "/stats/first-found/most?endDate=2024-05-02T07:00:00-03:00", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	f.stats.AssertExpectations(t)
}

func TestStatsQuery_ValidationErrors(t *testing.T) {
	tests := []struct {
		query string
		field string
	}{
		{"limit=ten", "limit"},
		{"startDate=yesterday", "startDate"},
		{"endDate=2024-13-45", "endDate"},
		{"minScore=1.5", "minScore"},
		{"maxScore=lots", "maxScore"},
		{"sortBy=value", "sortBy"},
		{"sortOrder=up", "sortOrder"},
		{"scoreField=date", "scoreField"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f := newFixture(t, nil)

			rec := f.do(http.MethodGet, "/stats?"+tt.query, "")

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, errors.ErrCodeValidation, body.Error.Code)
			assert.Contains(t, body.Error.Message, tt.field)
			f.stats.AssertNotCalled(t, "Overview", mock.Anything, mock.Anything)
		})
	}
}

func TestOverviewEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	f.stats.On("Overview", mock.Anything, queryWith(5)).Return(&models.Overview{
		MostFirstFound:  []models.CardCount{{Value: "🍕", Count: 10}},
		LeastFirstFound: []models.CardCount{{Value: "🍦", Count: 0}},
		MostLastFound:   []models.CardCount{{Value: "🍔", Count: 9}},
		LeastLastFound:  []models.CardCount{{Value: "🍦", Count: 0}},
		Totals:          models.Totals{Cards: 3, FirstFinds: 13, LastFinds: 11},
	}, nil)

	rec := f.do(http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"mostFirstFound": [{"value":"🍕","count":10}],
		"leastFirstFound": [{"value":"🍦","count":0}],
		"mostLastFound": [{"value":"🍔","count":9}],
		"leastLastFound": [{"value":"🍦","count":0}],
		"totals": {"cards":3,"firstFinds":13,"lastFinds":11}
	}`, rec.Body.String())
}

func TestOverviewEndpoint_StoreError(t *testing.T) {
	f := newFixture(t, nil)
	f.stats.On("Overview", mock.Anything, mock.Anything).Return(nil, stderrors.New("database is locked"))

	rec := f.do(http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, errors.ErrCodeInternal, body.Error.Code)
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.NotContains(t, rec.Body.String(), "locked")
}

func TestWindowEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		target string
		method string
		want   time.Time
	}{
		{"daily defaults to now", "/stats/daily", "Daily", fixedNow},
		{"daily with date", "/stats/daily?date=2024-02-29", "Daily", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"weekly defaults to now", "/stats/weekly", "Weekly", fixedNow},
		{"weekly with timestamp", "/stats/weekly?date=2024-05-18T23:00:00Z", "Weekly", time.Date(2024, 5, 18, 23, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.stats.On(tt.method, mock.Anything, mock.MatchedBy(func(at time.Time) bool {
				return at.Equal(tt.want)
			})).Return(&models.Overview{
				MostFirstFound:  []models.CardCount{},
				LeastFirstFound: []models.CardCount{},
				MostLastFound:   []models.CardCount{},
				LeastLastFound:  []models.CardCount{},
			}, nil)

			rec := f.do(http.MethodGet, tt.target, "")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `"totals":{"cards":0,"firstFinds":0,"lastFinds":0}`)
			f.stats.AssertExpectations(t)
		})
	}
}

func TestWindowEndpoint_BadDate(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/stats/weekly?date=someday", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, errors.ErrCodeValidation, decodeError(t, rec).Error.Code)
}

func TestSubmitRanking(t *testing.T) {
	f := newFixture(t, nil)
	in := models.RankingInput{Name: "SwiftFox", Score: 87.5, FirstFound: "🍕", LastFound: "🍔"}
	f.rankings.On("Submit", mock.Anything, in).Return(&models.Ranking{
		ID:         "7d1f5a9e-0000-4000-8000-000000000000",
		Name:       "SwiftFox",
		Score:      87.5,
		FirstFound: "🍕",
		LastFound:  "🍔",
		CreatedAt:  fixedNow,
	}, nil)

	rec := f.do(http.MethodPost, "/rankings", `{"name":"SwiftFox","score":87.5,"firstFound":"🍕","lastFound":"🍔"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"name":"SwiftFox","score":87.5,"createdAt":"2024-05-15T14:30:00Z"}`, rec.Body.String())
	f.rankings.AssertExpectations(t)
}

func TestSubmitRanking_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		submit   error
		wantCode int
		wantErr  string
	}{
		{
			name:     "malformed json",
			body:     `{"name":`,
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeBadRequest,
		},
		{
			name:     "wrong type",
			body:     `{"name":"x","score":"fast","firstFound":"a","lastFound":"b"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  errors.ErrCodeValidation,
		},
		{
			name:     "rejected by service",
			body:     `{"name":"","score":10,"firstFound":"a","lastFound":"b"}`,
			submit:   errors.NewValidationError("name", "must not be empty"),
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  errors.ErrCodeValidation,
		},
		{
			name:     "duplicate",
			body:     `{"name":"x","score":10,"firstFound":"a","lastFound":"b"}`,
			submit:   sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey},
			wantCode: http.StatusConflict,
			wantErr:  errors.ErrCodeConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if tt.submit != nil {
				f.rankings.On("Submit", mock.Anything, mock.Anything).Return(nil, tt.submit)
			}

			rec := f.do(http.MethodPost, "/rankings", tt.body)

			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, rec).Error.Code)
		})
	}
}

func TestListRankings(t *testing.T) {
	f := newFixture(t, nil)
	f.rankings.On("List", mock.Anything, 2, 5).Return(&models.RankingPage{
		Rankings: []models.Ranking{
			{ID: "a", Name: "LuckyOwl", Score: 42, FirstFound: "🍕", LastFound: "🍔", CreatedAt: fixedNow},
		},
		Pagination: models.Pagination{Total: 6, Page: 2, Limit: 5, HasMore: false},
	}, nil)

	rec := f.do(http.MethodGet, "/rankings?page=2&limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"rankings": [{"name":"LuckyOwl","score":42,"createdAt":"2024-05-15T14:30:00Z"}],
		"pagination": {"total":6,"page":2,"limit":5,"hasMore":false}
	}`, rec.Body.String())
}

func TestListRankings_LenientParams(t *testing.T) {
	f := newFixture(t, nil)
	f.rankings.On("List", mock.Anything, 0, 0).Return(&models.RankingPage{Rankings: []models.Ranking{}}, nil)

	rec := f.do(http.MethodGet, "/rankings?page=abc&limit=", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rankings":[]`)
	f.rankings.AssertExpectations(t)
}

func TestHealthAndReadiness(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/readyz", "").Code)

	down := newFixture(t, stderrors.New("connection refused"))
	assert.Equal(t, http.StatusOK, down.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/readyz", "").Code)
}

func TestMiddleware(t *testing.T) {
	f := newFixture(t, nil)
	f.stats.On("MostFirst", mock.Anything, mock.Anything).Return([]models.CardCount{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats/first-found/most", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	generated := f.do(http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, generated.Header().Get("X-Request-ID"))

	metricsRec := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), `http_requests_total{method="GET",route="/stats/first-found/most",status="200"} 1`)
}

func TestRecovery(t *testing.T) {
	f := newFixture(t, nil)
	f.stats.On("Overview", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	})

	rec := f.do(http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errors.ErrCodeInternal, decodeError(t, rec).Error.Code)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/nope", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.ErrCodeNotFound, decodeError(t, rec).Error.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodDelete, "/rankings", "").Code)
}
