package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Addr    string `env:"RUNTIMEKIT_TEST_ADDR" envDefault:":8090"`
	Verbose bool   `env:"RUNTIMEKIT_TEST_VERBOSE"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8090" {
		t.Fatalf("expected default addr :8090, got %q", cfg.Addr)
	}
	if cfg.Verbose {
		t.Fatal("expected verbose to default to false")
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("RUNTIMEKIT_TEST_ADDR", "127.0.0.1:9000")
	t.Setenv("RUNTIMEKIT_TEST_VERBOSE", "true")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q, want 127.0.0.1:9000", cfg.Addr)
	}
	if !cfg.Verbose {
		t.Fatal("expected verbose override")
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("RUNTIMEKIT_TEST_VERBOSE", "not-a-bool")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
