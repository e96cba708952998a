package api

import (
	"context"
	"time"

	"github.com/cardstats/cardstats/internal/metrics"
	"github.com/cardstats/cardstats/internal/services"
	"github.com/cardstats/cardstats/internal/stats"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Stats    stats.Service
	Rankings services.RankingService
	DB       Pinger
	Metrics  *metrics.Metrics

	// Location is the zone date-only parameters and default windows are
	// interpreted in. Nil means time.Local.
	Location *time.Location
	// Now supplies the reference instant for daily and weekly stats when the
	// request names no date. Nil means time.Now.
	Now func() time.Time

	StatsDefaultLimit int
	StatsMaxLimit     int
}

func (s *Server) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.location())
	}
	return s.Now().In(s.location())
}

func (s *Server) limits() (def, ceiling int) {
	ceiling = s.StatsMaxLimit
	if ceiling <= 0 {
		ceiling = stats.MaxLimit
	}
	return stats.ClampLimit(s.StatsDefaultLimit, stats.DefaultLimit, ceiling), ceiling
}
