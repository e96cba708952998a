// Package seed fills a database with plausible demo rankings and rebuilds
// card counters from whatever rankings are stored.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/repository"
)

// Emojis is the card deck used by the game.
var Emojis = []string{
	"🍕", "🍔", "🍟", "🌭", "🍿", "🧁", "🍩", "🍪",
	"🍦", "🍉", "🍓", "🍒", "🍍", "🥑", "🌮", "🍣",
}

var (
	namePrefixes = []string{"Swift", "Lucky", "Clever", "Sneaky", "Brave", "Sleepy", "Cosmic", "Turbo", "Mighty", "Fuzzy"}
	nameSuffixes = []string{"Fox", "Panda", "Otter", "Tiger", "Koala", "Falcon", "Llama", "Badger", "Gecko", "Moose"}
)

// Bounds of generated games. Scores are whole seconds.
const (
	DefaultCount = 30
	MinScore     = 40
	MaxScore     = 180
	MaxAge       = 7 * 24 * time.Hour
)

// ErrNoRankings is returned by Stats when there is nothing to count.
var ErrNoRankings = errors.New("no rankings found, seed rankings first")

// Generator produces random rankings. It is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

// NewGenerator returns a Generator drawing from rnd. A nil rnd uses a randomly
// seeded source.
func NewGenerator(rnd *rand.Rand, now func() time.Time) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rnd, now: now}
}

func (g *Generator) pick(values []string) string {
	return values[g.rnd.IntN(len(values))]
}

// Ranking returns one random finished game played within the last week.
func (g *Generator) Ranking() models.Ranking {
	age := time.Duration(g.rnd.Int64N(int64(MaxAge)))
	return models.Ranking{
		ID:         uuid.NewString(),
		Name:       g.pick(namePrefixes) + g.pick(nameSuffixes),
		Score:      float64(MinScore + g.rnd.IntN(MaxScore-MinScore+1)),
		FirstFound: g.pick(Emojis),
		LastFound:  g.pick(Emojis),
		CreatedAt:  g.now().Add(-age).UTC().Truncate(time.Millisecond),
	}
}

func (g *Generator) Rankings(n int) []models.Ranking {
	out := make([]models.Ranking, n)
	for i := range out {
		out[i] = g.Ranking()
	}
	return out
}

// Counters tallies first and last finds per card. Every deck card gets a
// counter, zero or not, followed by any unknown card seen in rankings in
// order of first appearance.
func Counters(rankings []models.Ranking) []models.Counter {
	index := make(map[string]int, len(Emojis))
	out := make([]models.Counter, 0, len(Emojis))
	add := func(value string) int {
		if i, ok := index[value]; ok {
			return i
		}
		index[value] = len(out)
		out = append(out, models.Counter{Value: value})
		return len(out) - 1
	}
	for _, e := range Emojis {
		add(e)
	}
	for _, r := range rankings {
		i := add(r.FirstFound)
		out[i].FirstCount++
		j := add(r.LastFound)
		out[j].LastCount++
	}
	return out
}

// Rankings replaces every stored ranking with n generated ones.
func Rankings(ctx context.Context, repo repository.RankingRepository, gen *Generator, n int) ([]models.Ranking, error) {
	log := logger.FromContext(ctx).WithPrefix("seed")
	if n < 1 {
		return nil, fmt.Errorf("count must be at least 1, got %d", n)
	}

	removed, err := repo.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear rankings: %w", err)
	}
	log.Info("cleared %d existing rankings", removed)

	rankings := gen.Rankings(n)
	if err := repo.InsertBatch(ctx, rankings); err != nil {
		return nil, fmt.Errorf("insert rankings: %w", err)
	}
	log.Info("inserted %d rankings", len(rankings))
	return rankings, nil
}

// Stats rebuilds card counters from the stored rankings and returns them
// with the number of games counted.
func Stats(ctx context.Context, rankings repository.RankingRepository, counters repository.StatsRepository) ([]models.Counter, int, error) {
	log := logger.FromContext(ctx).WithPrefix("seed")

	all, err := rankings.All(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load rankings: %w", err)
	}
	if len(all) == 0 {
		return nil, 0, ErrNoRankings
	}

	out := Counters(all)
	if err := counters.ReplaceAll(ctx, out); err != nil {
		return nil, 0, fmt.Errorf("replace stats: %w", err)
	}
	log.Info("rebuilt %d counters from %d rankings", len(out), len(all))
	return out, len(all), nil
}
