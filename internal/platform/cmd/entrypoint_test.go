package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Address string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Mode    string `env:"CMD_TEST_MODE" envDefault:"server"`
}

func TestParseConfigThenFlagsOverrideEnv(t *testing.T) {
	t.Setenv("EVENTLD_CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("EVENTLD_CMD_TEST_MODE", "env-mode")

	var cfg testConfig
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.StringVar(&cfg.Address, "address", cfg.Address, "address")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "mode")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if cfg.Address != "flag:9001" {
		t.Fatalf("address = %q, want flag:9001", cfg.Address)
	}
	if cfg.Mode != "env-mode" {
		t.Fatalf("mode = %q, want env-mode", cfg.Mode)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	var cfg testConfig
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Address != "127.0.0.1:8080" || cfg.Mode != "server" {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestParseRejectsNilInputs(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil config target error")
	}
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected nil flag set error")
	}
	if err := ParseArgs(flag.NewFlagSet("empty", flag.ContinueOnError), nil); err != nil {
		t.Fatalf("nil args: %v", err)
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), " ", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceEventLD, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryFlushesAfterRun(t *testing.T) {
	original := setupTelemetry
	t.Cleanup(func() { setupTelemetry = original })

	var events []string
	setupTelemetry = func(_ context.Context, service string) (func(context.Context) error, error) {
		events = append(events, "setup "+service)
		return func(ctx context.Context) error {
			if ctx.Err() != nil {
				t.Fatalf("flush context already done: %v", ctx.Err())
			}
			events = append(events, "flush")
			return errors.New("collector unreachable")
		}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	want := errors.New("boom")
	err := RunWithTelemetry(ctx, ServiceEventLD, func(context.Context) error {
		events = append(events, "run")
		cancel()
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if len(events) != 3 || events[0] != "setup eventld" || events[1] != "run" || events[2] != "flush" {
		t.Fatalf("events = %v", events)
	}
}

func TestRunWithTelemetrySetupFailure(t *testing.T) {
	original := setupTelemetry
	t.Cleanup(func() { setupTelemetry = original })

	setupTelemetry = func(context.Context, string) (func(context.Context) error, error) {
		return nil, errors.New("bad endpoint")
	}
	ran := false
	err := RunWithTelemetry(context.Background(), ServiceEventLD, func(context.Context) error {
		ran = true
		return nil
	})
	if err == nil || ran {
		t.Fatalf("err = %v ran = %v, want setup error before run", err, ran)
	}
}
