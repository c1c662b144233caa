// Package server parses configuration for the taskdeck server command.
package server

import (
	"context"
	"flag"
	"strconv"
	"strings"

	"github.com/louisbranch/taskdeck/internal/app"
	"github.com/louisbranch/taskdeck/internal/platform/otel"
)

// Config holds server command configuration.
type Config struct {
	Port   int
	DBPath string
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses environment and flags into a Config. Flags win over
// environment values.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		Port:   envIntOrDefault(lookup, "TASKDECK_PORT", 8080),
		DBPath: envOrDefault(lookup, "TASKDECK_DB_PATH", ""),
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The HTTP server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The SQLite database path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the server with tracing configured.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "taskdeck")
	if err != nil {
		return err
	}
	defer func() {
		if shutdown != nil {
			_ = shutdown(context.Background())
		}
	}()
	return app.Run(ctx, cfg.Port, cfg.DBPath)
}

func envOrDefault(lookup EnvLookup, key string, fallback string) string {
	if lookup == nil {
		return fallback
	}
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func envIntOrDefault(lookup EnvLookup, key string, fallback int) int {
	raw := envOrDefault(lookup, key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
