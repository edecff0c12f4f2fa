package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type Config struct {
	DBPath           string
	ServerPort       string
	LogLevel         string
	GuestEmail       string
	GuestName        string
	MoxfieldBaseURL  string
	MoxfieldTimeout  time.Duration
	RecentGamesLimit int
	HistogramBucket  int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DB_PATH", "cedh.db")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("GUEST_EMAIL", "guest@cedh.local")
	v.SetDefault("GUEST_NAME", "Guest")
	v.SetDefault("MOXFIELD_BASE_URL", "https://api2.moxfield.com")
	v.SetDefault("MOXFIELD_TIMEOUT", 10*time.Second)
	v.SetDefault("RECENT_GAMES_LIMIT", 10)
	v.SetDefault("HISTOGRAM_BUCKET", 1)

	cfg := &Config{
		DBPath:           v.GetString("DB_PATH"),
		ServerPort:       v.GetString("SERVER_PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		GuestEmail:       v.GetString("GUEST_EMAIL"),
		GuestName:        v.GetString("GUEST_NAME"),
		MoxfieldBaseURL:  v.GetString("MOXFIELD_BASE_URL"),
		MoxfieldTimeout:  v.GetDuration("MOXFIELD_TIMEOUT"),
		RecentGamesLimit: v.GetInt("RECENT_GAMES_LIMIT"),
		HistogramBucket:  v.GetInt("HISTOGRAM_BUCKET"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("guest_email", cfg.GuestEmail).
		Dur("moxfield_timeout", cfg.MoxfieldTimeout).
		Int("recent_games_limit", cfg.RecentGamesLimit).
		Int("histogram_bucket", cfg.HistogramBucket).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.GuestEmail == "" {
		return fmt.Errorf("GUEST_EMAIL is required")
	}
	if c.HistogramBucket < 1 {
		return fmt.Errorf("HISTOGRAM_BUCKET must be >= 1, got %d", c.HistogramBucket)
	}
	if c.RecentGamesLimit < 1 {
		return fmt.Errorf("RECENT_GAMES_LIMIT must be >= 1, got %d", c.RecentGamesLimit)
	}
	return nil
}

var Module = fx.Provide(Load)
