package scenario

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}
	if len(cfg.Paths()) != 0 {
		t.Fatalf("expected no paths, got %v", cfg.Paths())
	}
}

func TestParseConfigCollectsPaths(t *testing.T) {
	t.Setenv("RUNTIMEKIT_SCENARIO_VERBOSE", "true")

	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-scenario", "a.lua", "-assert=false", "b.lua", "c.lua"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Verbose || cfg.Assertions {
		t.Fatalf("cfg = %+v", cfg)
	}
	paths := cfg.Paths()
	if strings.Join(paths, ",") != "a.lua,b.lua,c.lua" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestRunRequiresPath(t *testing.T) {
	if err := Run(context.Background(), Config{Lang: "en"}, nil, nil); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestRunReportsEachScenario(t *testing.T) {
	dir := t.TempDir()
	pass := filepath.Join(dir, "pass.lua")
	fail := filepath.Join(dir, "fail.lua")
	writeFile(t, pass, `local s = Scenario.new("pass") s:genesis({alice = 5}) s:expect_balance("alice", 5) return s`)
	writeFile(t, fail, `local s = Scenario.new("fail") s:expect_balance("alice", 5) return s`)

	var out, errOut bytes.Buffer
	err := Run(context.Background(), Config{
		Assertions:  true,
		Lang:        "en",
		Files:       []string{pass, fail},
		AuditDBPath: filepath.Join(dir, "audit.db"),
	}, &out, &errOut)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 scenarios failed") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out.String(), "PASS pass:") || !strings.Contains(out.String(), "FAIL fail:") {
		t.Fatalf("out = %s", out.String())
	}
	if !strings.Contains(errOut.String(), "balance of alice = 0, want 5") {
		t.Fatalf("errOut = %s", errOut.String())
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
