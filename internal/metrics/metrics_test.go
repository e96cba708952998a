package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardstats/cardstats/internal/metrics"
)

func TestObserveHTTP(t *testing.T) {
	m := metrics.New()
	m.ObserveHTTP("/stats", http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP("/stats", http.MethodGet, http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTP("/rankings", http.MethodPost, http.StatusUnprocessableEntity, time.Millisecond)

	expected := `
# HELP http_requests_total Total number of HTTP requests by route, method and status.
# TYPE http_requests_total counter
http_requests_total{method="GET",route="/stats",status="200"} 2
http_requests_total{method="POST",route="/rankings",status="422"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "http_requests_total"))
	n, err := testutil.GatherAndCount(m.Registry(), "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDomainCounters(t *testing.T) {
	m := metrics.New()
	m.CounterIncremented("first_count")
	m.CounterIncremented("last_count")
	m.CounterIncremented("last_count")
	m.RankingSubmitted()
	m.ObserveQuery("find", time.Now())

	expected := `
# HELP cardstats_counter_increments_total Card counter increments applied, by count field.
# TYPE cardstats_counter_increments_total counter
cardstats_counter_increments_total{field="first_count"} 1
cardstats_counter_increments_total{field="last_count"} 2
# HELP cardstats_rankings_submitted_total Rankings accepted and stored.
# TYPE cardstats_rankings_submitted_total counter
cardstats_rankings_submitted_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"cardstats_counter_increments_total", "cardstats_rankings_submitted_total"))
	n, err := testutil.GatherAndCount(m.Registry(), "cardstats_store_query_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.CounterIncremented("first_count")
		m.ObserveQuery("find", time.Now())
		m.RankingSubmitted()
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.RankingSubmitted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cardstats_rankings_submitted_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
