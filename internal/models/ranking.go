package models

import "time"

type Ranking struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Score      float64   `json:"score"`
	FirstFound string    `json:"firstFound"`
	LastFound  string    `json:"lastFound"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RankingInput is a finished game as submitted by a player.
type RankingInput struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	FirstFound string  `json:"firstFound"`
	LastFound  string  `json:"lastFound"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

type RankingPage struct {
	Rankings   []Ranking  `json:"rankings"`
	Pagination Pagination `json:"pagination"`
}
