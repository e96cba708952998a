package stats

import "github.com/cardstats/cardstats/internal/models"

// BuildFilter turns the restricting parts of q into a store filter. Date
// bounds apply to the creation time of a counter; score bounds apply to one
// of its counts. Bounds are inclusive and either side may be open.
func BuildFilter(q Query) models.StatsFilter {
	f := models.StatsFilter{
		CreatedFrom: q.StartDate,
		CreatedTo:   q.EndDate,
	}
	if q.MinScore != nil || q.MaxScore != nil {
		f.ScoreField = scoreField(q)
		f.MinScore = q.MinScore
		f.MaxScore = q.MaxScore
	}
	return f
}

func scoreField(q Query) models.Field {
	if q.ScoreField != "" {
		return q.ScoreField
	}
	if q.SortBy == SortByLastCount {
		return models.FieldLastCount
	}
	return models.FieldFirstCount
}

// ResolveSort maps q's sort options to ordering keys. fallback is the field
// used when q does not name one.
func ResolveSort(q Query, fallback models.Field) []models.SortKey {
	desc := q.SortOrder != Asc
	switch q.SortBy {
	case SortByFirstCount:
		return []models.SortKey{{Field: models.FieldFirstCount, Desc: desc}}
	case SortByLastCount:
		return []models.SortKey{{Field: models.FieldLastCount, Desc: desc}}
	case SortByDate:
		return []models.SortKey{{Field: models.FieldCreatedAt, Desc: desc}}
	case SortByScore:
		return []models.SortKey{
			{Field: models.FieldFirstCount, Desc: desc},
			{Field: models.FieldLastCount, Desc: desc},
		}
	}
	return []models.SortKey{{Field: fallback, Desc: desc}}
}
