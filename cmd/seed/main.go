// Package main provides the seed CLI that fills a cardstats database with
// demo data.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardstats/cardstats/internal/config"
	"github.com/cardstats/cardstats/internal/db"
	"github.com/cardstats/cardstats/internal/logger"
	"github.com/cardstats/cardstats/internal/models"
	"github.com/cardstats/cardstats/internal/repository/sqlrepo"
	"github.com/cardstats/cardstats/internal/seed"
	"github.com/cardstats/cardstats/internal/stats"
)

const summaryLimit = 3

var rankingsCount int

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "seed",
		Short:        "Seed a cardstats database with demo data",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRankingsCmd())
	rootCmd.AddCommand(newStatsCmd())
	return rootCmd
}

func newRankingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Replace all rankings with random games",
		Args:  cobra.NoArgs,
		RunE:  runRankingsCmd,
	}
	cmd.Flags().IntVar(&rankingsCount, "count", seed.DefaultCount, "number of rankings to generate")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Rebuild card stats from stored rankings",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

// openDB loads configuration, installs the default logger and opens the
// configured database.
func openDB() (*db.DB, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, fmt.Errorf("invalid config: %w", err)
	}
	logger.SetDefault(logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(!cfg.LogJSON),
		logger.WithJSON(cfg.LogJSON),
		logger.WithOutput(os.Stderr),
	))

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to open db: %w", err)
	}
	return database, cfg, nil
}

func closeDB(database *db.DB) {
	if err := database.Close(); err != nil {
		logger.Error("failed to close db: %v", err)
	}
}

func runRankingsCmd(cmd *cobra.Command, _ []string) error {
	database, _, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	rankings, err := seed.Rankings(cmd.Context(), sqlrepo.NewRankingRepository(database), seed.NewGenerator(nil, nil), rankingsCount)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🧹 Cleared existing rankings")
	fmt.Fprintln(out, "✨ Seeded rankings:")
	for _, r := range rankings {
		fmt.Fprintf(out, "👤 %s: %gs (%s → %s)\n", r.Name, r.Score, r.FirstFound, r.LastFound)
	}
	return nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	database, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	ctx := cmd.Context()
	statsRepo := sqlrepo.NewStatsRepository(database)
	counters, games, err := seed.Stats(ctx, sqlrepo.NewRankingRepository(database), statsRepo)
	if err != nil {
		return err
	}

	svc := stats.NewService(statsRepo, stats.WithLimits(summaryLimit, cfg.StatsMaxLimit))
	overview, err := svc.Overview(ctx, stats.Query{Limit: summaryLimit})
	if err != nil {
		return fmt.Errorf("failed to summarize stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✨ Seeded stats for %d cards\n", len(counters))
	printCards(out, "Most First Found", overview.MostFirstFound)
	printCards(out, "Least First Found", overview.LeastFirstFound)
	printCards(out, "Most Last Found", overview.MostLastFound)
	printCards(out, "Least Last Found", overview.LeastLastFound)
	fmt.Fprintln(out, "\n📊 Totals:")
	fmt.Fprintf(out, "Total Cards: %d\n", overview.Totals.Cards)
	fmt.Fprintf(out, "Total Games: %d\n", games)
	return nil
}

func printCards(w io.Writer, title string, cards []models.CardCount) {
	fmt.Fprintf(w, "\n📊 %s:\n", title)
	for _, c := range cards {
		fmt.Fprintf(w, "%s: %d times\n", c.Value, c.Count)
	}
}
