// Package eventld parses eventld flags and launches the service.
package eventld

import (
	"context"
	"errors"
	"flag"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/eventld/internal/platform/cmd"
	server "github.com/louisbranch/eventld/internal/services/eventld/app"
)

// Config holds eventld command configuration.
type Config struct {
	HTTPAddr             string        `env:"HTTP_ADDR" envDefault:":8095"`
	DBPath               string        `env:"DB_PATH"`
	EventsFile           string        `env:"EVENTS_FILE"`
	DefaultEventDuration time.Duration `env:"DEFAULT_EVENT_DURATION" envDefault:"2h"`
	CacheTTL             time.Duration `env:"CACHE_TTL" envDefault:"0s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite event database path")
	fs.StringVar(&cfg.EventsFile, "events-file", cfg.EventsFile, "YAML events fixture path")
	fs.DurationVar(&cfg.DefaultEventDuration, "default-event-duration", cfg.DefaultEventDuration, "Duration added to startDate when an event has no end")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Maximum age of cached documents (0 disables expiry)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	hasDB := strings.TrimSpace(cfg.DBPath) != ""
	hasFile := strings.TrimSpace(cfg.EventsFile) != ""
	if hasDB == hasFile {
		return Config{}, errors.New("exactly one of -db-path or -events-file is required")
	}
	if cfg.DefaultEventDuration <= 0 {
		return Config{}, errors.New("default event duration must be positive")
	}
	if cfg.CacheTTL < 0 {
		return Config{}, errors.New("cache ttl must not be negative")
	}
	return cfg, nil
}

// Run starts the eventld HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEventLD, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			HTTPAddr:             cfg.HTTPAddr,
			DBPath:               cfg.DBPath,
			EventsFile:           cfg.EventsFile,
			DefaultEventDuration: cfg.DefaultEventDuration,
			CacheTTL:             cfg.CacheTTL,
		})
	})
}
