package api

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cardstats/cardstats/internal/errors"
	"github.com/cardstats/cardstats/internal/stats"
)

const dateOnly = "2006-01-02"

// parseStatsQuery reads the stats query parameters. Malformed values are
// rejected with a validation error; an out-of-range limit is clamped.
func (s *Server) parseStatsQuery(values url.Values) (stats.Query, error) {
	var q stats.Query
	def, ceiling := s.limits()

	q.Limit = def
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, errors.NewValidationError("limit", "must be an integer")
		}
		q.Limit = min(max(n, 1), ceiling)
	}

	var err error
	if q.StartDate, err = s.parseDateParam(values, "startDate", false); err != nil {
		return q, err
	}
	if q.EndDate, err = s.parseDateParam(values, "endDate", true); err != nil {
		return q, err
	}
	if q.MinScore, err = parseIntParam(values, "minScore"); err != nil {
		return q, err
	}
	if q.MaxScore, err = parseIntParam(values, "maxScore"); err != nil {
		return q, err
	}

	if q.SortBy, err = stats.ParseSortBy(values.Get("sortBy")); err != nil {
		return q, errors.NewValidationError("sortBy", err.Error())
	}
	if q.SortOrder, err = stats.ParseSortOrder(values.Get("sortOrder")); err != nil {
		return q, errors.NewValidationError("sortOrder", err.Error())
	}
	if q.ScoreField, err = stats.ParseScoreField(values.Get("scoreField")); err != nil {
		return q, errors.NewValidationError("scoreField", err.Error())
	}
	return q, nil
}

func parseIntParam(values url.Values, name string) (*int64, error) {
	v := values.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, errors.NewValidationError(name, "must be an integer")
	}
	return &n, nil
}

// parseDateParam accepts RFC 3339 timestamps and YYYY-MM-DD dates. A bare
// date means midnight in the server's zone, or the day's last millisecond
// when endOfDay is set so that an end date includes the whole day.
func (s *Server) parseDateParam(values url.Values, name string, endOfDay bool) (*time.Time, error) {
	v := strings.TrimSpace(values.Get(name))
	if v == "" {
		return nil, nil
	}
	t, dateOnlyValue, err := s.parseTime(v)
	if err != nil {
		return nil, errors.NewValidationError(name, "must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	}
	if endOfDay && dateOnlyValue {
		_, t = stats.DayWindow(t)
	}
	return &t, nil
}

// parseTime reports whether v was a bare date.
func (s *Server) parseTime(v string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateOnly, v, s.location()); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.In(s.location()), false, nil
}

// referenceInstant returns the date parameter or, when absent, now.
func (s *Server) referenceInstant(values url.Values) (time.Time, error) {
	v := strings.TrimSpace(values.Get("date"))
	if v == "" {
		return s.now(), nil
	}
	t, _, err := s.parseTime(v)
	if err != nil {
		return time.Time{}, errors.NewValidationError("date", "must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	}
	return t, nil
}

// page and limit fall back to their defaults when unparsable.
func parsePagination(values url.Values) (page, limit int) {
	page, _ = strconv.Atoi(values.Get("page"))
	limit, _ = strconv.Atoi(values.Get("limit"))
	return page, limit
}
