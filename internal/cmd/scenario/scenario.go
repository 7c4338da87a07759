// Package scenario parses scenario command flags and runs Lua scenarios.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/runtimekit/internal/platform/cmd"
	"github.com/louisbranch/runtimekit/internal/services/runtime/storage/sqlite"
	"github.com/louisbranch/runtimekit/internal/tools/scenario"
	"golang.org/x/text/language"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario    string        `env:"RUNTIMEKIT_SCENARIO_FILE"`
	Assertions  bool          `env:"RUNTIMEKIT_SCENARIO_ASSERT"   envDefault:"true"`
	Verbose     bool          `env:"RUNTIMEKIT_SCENARIO_VERBOSE"`
	Timeout     time.Duration `env:"RUNTIMEKIT_SCENARIO_TIMEOUT"  envDefault:"10s"`
	AuditDBPath string        `env:"RUNTIMEKIT_SCENARIO_AUDIT_DB"`
	Lang        string        `env:"RUNTIMEKIT_SCENARIO_LANG"     envDefault:"en"`
	// Files lists scenario paths given as positional arguments.
	Files []string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.StringVar(&cfg.AuditDBPath, "audit-db", cfg.AuditDBPath, "optional SQLite path recording audit events")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "report language tag")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Files = fs.Args()
	return cfg, nil
}

// Paths returns every scenario path, flag first.
func (c Config) Paths() []string {
	var paths []string
	if strings.TrimSpace(c.Scenario) != "" {
		paths = append(paths, c.Scenario)
	}
	return append(paths, c.Files...)
}

// Run executes every configured scenario and prints one report line each.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	paths := cfg.Paths()
	if len(paths) == 0 {
		return errors.New("scenario path is required")
	}
	tag, err := language.Parse(cfg.Lang)
	if err != nil {
		return fmt.Errorf("parse report language: %w", err)
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	runCfg := scenario.Config{
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     log.New(errOut, "", 0),
	}
	if path := strings.TrimSpace(cfg.AuditDBPath); path != "" {
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return fmt.Errorf("open audit store: %w", err)
		}
		defer store.Close()
		runCfg.AuditStore = store
	}

	var failed []string
	for _, path := range paths {
		report, err := scenario.RunFile(ctx, runCfg, path)
		fmt.Fprintln(out, report.Format(tag))
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", path, err)
			failed = append(failed, path)
			continue
		}
		if !report.Passed() {
			failed = append(failed, path)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d scenarios failed: %s", len(failed), len(paths), strings.Join(failed, ", "))
	}
	return nil
}
