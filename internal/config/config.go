package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cardstats/cardstats/internal/logger"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML file.
const ConfigFileEnv = "CARDSTATS_CONFIG"

type Config struct {
	Addr              string        `koanf:"addr"`
	DBDriver          string        `koanf:"db_driver"`
	DBDSN             string        `koanf:"db_dsn"`
	LogLevel          string        `koanf:"log_level"`
	LogJSON           bool          `koanf:"log_json"`
	Timezone          string        `koanf:"timezone"`
	StatsDefaultLimit int           `koanf:"stats_default_limit"`
	StatsMaxLimit     int           `koanf:"stats_max_limit"`
	RankingsMaxLimit  int           `koanf:"rankings_max_limit"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Addr:              ":3000",
		DBDriver:          DriverSQLite,
		DBDSN:             "file:cardstats.db",
		LogLevel:          "INFO",
		Timezone:          "Local",
		StatsDefaultLimit: 5,
		StatsMaxLimit:     10,
		RankingsMaxLimit:  50,
		ShutdownTimeout:   15 * time.Second,
	}
}

// Load reads configuration with increasing precedence from defaults, the YAML
// file named by CARDSTATS_CONFIG, a .env file (if present) and the environment.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	k := koanf.New(".")
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	known := map[string]bool{}
	for _, key := range keys {
		known[key] = true
	}
	// ADDR -> addr, DB_DSN -> db_dsn; anything not a config key is skipped.
	envProvider := env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !known[key] {
			return ""
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

var keys = []string{
	"addr", "db_driver", "db_dsn", "log_level", "log_json", "timezone",
	"stats_default_limit", "stats_max_limit", "rankings_max_limit", "shutdown_timeout",
}

// Validate checks the configuration and reports the first problem found.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN cannot be empty")
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	if c.StatsMaxLimit < 1 {
		return fmt.Errorf("STATS_MAX_LIMIT must be at least 1, got %d", c.StatsMaxLimit)
	}
	if c.StatsDefaultLimit < 1 || c.StatsDefaultLimit > c.StatsMaxLimit {
		return fmt.Errorf("STATS_DEFAULT_LIMIT must be between 1 and %d, got %d", c.StatsMaxLimit, c.StatsDefaultLimit)
	}
	if c.RankingsMaxLimit < 1 {
		return fmt.Errorf("RANKINGS_MAX_LIMIT must be at least 1, got %d", c.RankingsMaxLimit)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Location resolves Timezone. "Local" and "" mean the process zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
