// Package cmd holds the startup plumbing shared by eventld commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/eventld/internal/platform/config"
	"github.com/louisbranch/eventld/internal/platform/otel"
	"github.com/louisbranch/eventld/internal/platform/timeouts"
)

// ServiceEventLD names the structured data service in telemetry and logs.
const ServiceEventLD = "eventld"

// setupTelemetry installs the tracer provider; tests replace it.
var setupTelemetry = otel.Setup

// ParseConfig loads EVENTLD_-prefixed environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnvWithPrefix(cfg, config.EnvPrefix)
}

// ParseArgs parses flags on top of the env defaults already bound to fs.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag set is required")
	}
	return fs.Parse(append([]string(nil), args...))
}

// RunWithTelemetry installs tracing for service, runs run, and flushes spans
// before returning run's error. Flushing outlives ctx cancellation.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	switch {
	case service == "":
		return errors.New("service name is required")
	case run == nil:
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := setupTelemetry(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	runErr := run(ctx)

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
	defer cancel()
	if err := shutdown(flushCtx); err != nil {
		log.Printf("telemetry shutdown: service=%s err=%v", service, err)
	}
	return runErr
}
