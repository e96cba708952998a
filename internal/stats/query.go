// Package stats implements the card statistics engine: applying finished
// games to counters and answering ranked and windowed queries over them.
package stats

import (
	"fmt"
	"time"

	"github.com/cardstats/cardstats/internal/models"
)

const (
	DefaultLimit = 5
	MaxLimit     = 10
)

type SortBy string

const (
	SortByFirstCount SortBy = "firstCount"
	SortByLastCount  SortBy = "lastCount"
	SortByDate       SortBy = "date"
	SortByScore      SortBy = "score"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Query describes a statistics request. The zero value asks for the default
// number of results over every counter.
type Query struct {
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
	MinScore  *int64
	MaxScore  *int64
	SortBy    SortBy
	SortOrder SortOrder
	// ScoreField picks the count MinScore and MaxScore apply to. Empty means
	// lastCount when sorting by lastCount and firstCount otherwise.
	ScoreField models.Field
}

// ClampLimit returns def for non-positive n and caps n at max.
func ClampLimit(n, def, max int) int {
	if n <= 0 {
		n = def
	}
	if n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}

func ParseSortBy(s string) (SortBy, error) {
	switch v := SortBy(s); v {
	case "", SortByFirstCount, SortByLastCount, SortByDate, SortByScore:
		return v, nil
	}
	return "", fmt.Errorf("must be one of firstCount, lastCount, date, score")
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch v := SortOrder(s); v {
	case "":
		return Desc, nil
	case Asc, Desc:
		return v, nil
	}
	return "", fmt.Errorf("must be asc or desc")
}

func ParseScoreField(s string) (models.Field, error) {
	switch v := models.Field(s); v {
	case "", models.FieldFirstCount, models.FieldLastCount:
		return v, nil
	}
	return "", fmt.Errorf("must be firstCount or lastCount")
}
