package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardstats/cardstats/internal/api"
	"github.com/cardstats/cardstats/internal/config"
	"github.com/cardstats/cardstats/internal/db"
	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/metrics"
	"github.com/cardstats/cardstats/internal/repository/sqlrepo"
	"github.com/cardstats/cardstats/internal/services"
	"github.com/cardstats/cardstats/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(!cfg.LogJSON),
		logger.WithJSON(cfg.LogJSON),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	loc, _ := cfg.Location()

	log.Info("cardstats server starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("timezone=%s", loc)
	log.Debug("stats_limits=%d/%d", cfg.StatsDefaultLimit, cfg.StatsMaxLimit)
	log.Debug("rankings_max_limit=%d", cfg.RankingsMaxLimit)

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	m := metrics.New()
	statsService := stats.NewService(
		sqlrepo.NewStatsRepository(database, sqlrepo.WithMetrics(m)),
		stats.WithLimits(cfg.StatsDefaultLimit, cfg.StatsMaxLimit),
		stats.WithMetrics(m),
	)
	rankingService := services.NewRankingService(
		sqlrepo.NewRankingRepository(database, sqlrepo.WithMetrics(m)),
		statsService,
		services.WithRankingsMaxLimit(cfg.RankingsMaxLimit),
		services.WithRankingMetrics(m),
	)

	srv := &api.Server{
		Stats:             statsService,
		Rankings:          rankingService,
		DB:                database,
		Metrics:           m,
		Location:          loc,
		StatsDefaultLimit: cfg.StatsDefaultLimit,
		StatsMaxLimit:     cfg.StatsMaxLimit,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serverErr:
		log.Error("HTTP server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("cardstats server stopped")
}
