package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/clientcheckin/checkin-web/config"
)

// InitLogger builds the process logger from LOG_LEVEL (debug, info, warn,
// error) and LOG_FORMAT (json or text) and installs it as the slog default.
func InitLogger() *slog.Logger {
	logger := slog.New(newLogHandler(os.Stdout, os.Getenv("LOG_FORMAT"), parseLogLevel(os.Getenv("LOG_LEVEL"))))
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel falls back to info for empty or unknown values.
func parseLogLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func newLogHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// LoadConfig reads ENV_FILE (default .env) when present, then parses and
// sanitizes the environment. Variables already set win over the file.
func LoadConfig() (config.AppConfig, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.AppConfig{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateServiceConfig validates the enabled services and the settings they depend on.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetEnabledServices returns the enabled service names sorted, or none when
// SERVICES is invalid; ValidateServiceConfig reports that case.
func GetEnabledServices(cfg *config.AppConfig) []string {
	if cfg == nil {
		return []string{}
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(services))
	for _, mode := range slices.Sorted(maps.Keys(services)) {
		names = append(names, string(mode))
	}
	return names
}
