package models

import "time"

// Field names a sortable or filterable column of a Counter.
type Field string

const (
	FieldFirstCount Field = "firstCount"
	FieldLastCount  Field = "lastCount"
	FieldCreatedAt  Field = "createdAt"
)

// Counter tracks how often a card was found first and last across games.
type Counter struct {
	Value      string    `json:"value"`
	FirstCount int64     `json:"firstCount"`
	LastCount  int64     `json:"lastCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CardCount is one entry of a ranked list: a card and the count it was ranked by.
type CardCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type Totals struct {
	Cards      int64 `json:"cards"`
	FirstFinds int64 `json:"firstFinds"`
	LastFinds  int64 `json:"lastFinds"`
}

type Overview struct {
	MostFirstFound  []CardCount `json:"mostFirstFound"`
	LeastFirstFound []CardCount `json:"leastFirstFound"`
	MostLastFound   []CardCount `json:"mostLastFound"`
	LeastLastFound  []CardCount `json:"leastLastFound"`
	Totals          Totals      `json:"totals"`
}

// StatsFilter restricts the counters a query considers. Nil bounds are open.
type StatsFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	ScoreField  Field
	MinScore    *int64
	MaxScore    *int64
}

// SortKey is one ORDER BY term.
type SortKey struct {
	Field Field
	Desc  bool
}
