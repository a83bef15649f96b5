package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	golobby "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
)

const (
	DefaultPremiumizeBaseURL = "https://www.premiumize.me/api"
	DefaultRPDBBaseURL       = "https://api.ratingposterdb.com"
)

var ErrMissingAPIKey = errors.New("PREMIUMIZE_API_KEY must be provided")

// Config is built once at startup and handed to everything that needs it.
// Nothing writes to it after Load returns.
type Config struct {
	Addon      AddonConfig
	History    HistoryConfig
	Log        LogConfig
	Premiumize PremiumizeConfig
	RPDB       RPDBConfig
}

type AddonConfig struct {
	Name         string `env:"ADDON_NAME"`
	Port         int    `env:"PORT"`
	SortEpisodes bool   `env:"SORT_EPISODES"`
}

type HistoryConfig struct {
	DbPath        string `env:"DB_PATH"`
	RetentionDays int    `env:"HISTORY_RETENTION_DAYS"`
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS"`
}

type PremiumizeConfig struct {
	APIKey         string `env:"PREMIUMIZE_API_KEY"`
	FolderID       string `env:"PREMIUMIZE_FOLDER_ID"`
	BaseURL        string `env:"PREMIUMIZE_BASE_URL"`
	TimeoutSeconds int    `env:"UPSTREAM_TIMEOUT_SECONDS"`
}

type RPDBConfig struct {
	APIKey  string `env:"RPDB_API_KEY"`
	BaseURL string `env:"RPDB_BASE_URL"`
}

func Defaults() Config {
	return Config{
		Addon: AddonConfig{
			Name:         "myfiles",
			Port:         8080,
			SortEpisodes: true,
		},
		History: HistoryConfig{
			RetentionDays: 30,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Premiumize: PremiumizeConfig{
			BaseURL:        DefaultPremiumizeBaseURL,
			TimeoutSeconds: 10,
		},
		RPDB: RPDBConfig{
			BaseURL: DefaultRPDBBaseURL,
		},
	}
}

// Load overlays environment variables on top of Defaults and validates the result.
// Any .env file should already have been loaded into the environment by the caller.
func Load() (Config, error) {
	cfg := Defaults()
	if err := golobby.New().AddFeeder(feeder.Env{}).AddStruct(&cfg).Feed(); err != nil {
		return Config{}, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Premiumize.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.Addon.Name) == "" {
		return errors.New("ADDON_NAME can not be blank")
	}
	if c.Premiumize.TimeoutSeconds <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive, got %d", c.Premiumize.TimeoutSeconds)
	}
	if c.Addon.Port <= 0 || c.Addon.Port > 65535 {
		return fmt.Errorf("PORT is out of range: %d", c.Addon.Port)
	}
	return nil
}

func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Premiumize.TimeoutSeconds) * time.Second
}

func (c Config) HistoryEnabled() bool {
	return c.History.DbPath != ""
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Log.Level)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" || logLevel == "warn" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
