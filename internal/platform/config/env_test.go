package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Addr     string        `env:"EVENTLD_TEST_ADDR" envDefault:":8095"`
	Duration time.Duration `env:"EVENTLD_TEST_DURATION" envDefault:"2h"`
}

type prefixedTestConfig struct {
	Addr string `env:"TEST_ADDR" envDefault:":9000"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8095" {
		t.Fatalf("addr = %q, want %q", cfg.Addr, ":8095")
	}
	if cfg.Duration != 2*time.Hour {
		t.Fatalf("duration = %s, want %s", cfg.Duration, 2*time.Hour)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("EVENTLD_TEST_DURATION", "not-a-duration")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvWithPrefix(t *testing.T) {
	t.Setenv("EVENTLD_TEST_ADDR", "127.0.0.1:7000")

	var cfg prefixedTestConfig
	if err := ParseEnvWithPrefix(&cfg, EnvPrefix); err != nil {
		t.Fatalf("parse env with prefix: %v", err)
	}
	if cfg.Addr != "127.0.0.1:7000" {
		t.Fatalf("addr = %q, want %q", cfg.Addr, "127.0.0.1:7000")
	}
}

func TestParseEnvWithEmptyPrefixFallsBack(t *testing.T) {
	var cfg prefixedTestConfig
	if err := ParseEnvWithPrefix(&cfg, "  "); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("addr = %q, want %q", cfg.Addr, ":9000")
	}
}
