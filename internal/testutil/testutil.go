package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardstats/cardstats/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool holds a single connection, so every caller shares the same database.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Clock is a settable time source for repositories and handlers under test.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
