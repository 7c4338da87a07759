// Package scenario runs Lua-scripted block sequences against an in-process
// runtime node and checks the resulting state.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/louisbranch/runtimekit/internal/platform/timeouts"
	"github.com/louisbranch/runtimekit/internal/services/runtime/app"
	"github.com/louisbranch/runtimekit/internal/services/runtime/observability/audit"
	"github.com/louisbranch/runtimekit/internal/services/runtime/storage"
)

// Config controls scenario execution.
type Config struct {
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// AuditStore optionally records the audit events of every block.
	AuditStore storage.AuditEventStore
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    timeouts.ScenarioStep,
		Assertions: AssertionStrict,
	}
}

// Runner executes scenarios, each against a fresh node.
type Runner struct {
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
	emitter    *audit.Emitter
}

// NewRunner applies config defaults and returns a Runner.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.ScenarioStep
	}
	var emitter *audit.Emitter
	if cfg.AuditStore != nil {
		emitter = audit.NewEmitter(cfg.AuditStore)
	}
	return &Runner{
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
		emitter:    emitter,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) (Report, error) {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return Report{Scenario: path}, err
	}
	return NewRunner(cfg).RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps in order. The report is filled in
// even when a step fails.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) (Report, error) {
	if scenario == nil {
		return Report{}, errors.New("scenario is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{
		report:   Report{Scenario: scenario.Name, Steps: len(scenario.Steps)},
		failures: map[app.BlockNumber][]app.FailureView{},
	}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return state.report, fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return state.report, nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

// nodeLogger swallows the node's per-extrinsic failure log unless verbose.
func (r *Runner) nodeLogger() *log.Logger {
	if r.verbose {
		return r.logger
	}
	return log.New(io.Discard, "", 0)
}
