package runtime

import (
	"context"
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("runtime", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":8090" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.AuditDBPath != "data/audit.db" {
		t.Fatalf("expected default audit path, got %q", cfg.AuditDBPath)
	}
	if cfg.Genesis != "" {
		t.Fatalf("expected empty genesis, got %q", cfg.Genesis)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("RUNTIMEKIT_RUNTIME_ADDR", "env:9000")
	t.Setenv("RUNTIMEKIT_GENESIS", "alice=100")

	fs := flag.NewFlagSet("runtime", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-audit-db", "", "-genesis", "bob=5"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "env:9000" {
		t.Fatalf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.AuditDBPath != "" {
		t.Fatalf("expected audit disabled by flag, got %q", cfg.AuditDBPath)
	}
	if cfg.Genesis != "bob=5" {
		t.Fatalf("expected flag genesis, got %q", cfg.Genesis)
	}
}

func TestRunRejectsBadGenesis(t *testing.T) {
	t.Setenv("RUNTIMEKIT_OTEL_ENABLED", "false")
	err := Run(context.Background(), Config{Addr: "127.0.0.1:0", Genesis: "alice"})
	if err == nil {
		t.Fatal("expected genesis error")
	}
}
