package scenario

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/app"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/module"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/runtime"
)

type scenarioState struct {
	node     *app.Node
	report   Report
	failures map[app.BlockNumber][]app.FailureView
}

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "genesis":
		return r.runGenesisStep(state, step)
	case "block":
		return r.runBlockStep(ctx, state, step)
	case "expect_balance":
		return r.runExpectBalanceStep(state, step)
	case "expect_nonce":
		return r.runExpectNonceStep(state, step)
	case "expect_claim":
		return r.runExpectClaimStep(state, step)
	case "expect_no_claim":
		return r.runExpectNoClaimStep(state, step)
	case "expect_failure":
		return r.runExpectFailureStep(state, step)
	case "expect_block_number":
		return r.runExpectBlockNumberStep(state, step)
	case "expect_total_issuance":
		return r.runExpectTotalIssuanceStep(state, step)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) assertf(state *scenarioState, format string, args ...any) error {
	state.report.Violations++
	return r.assertions.Assertf(format, args...)
}

func (r *Runner) ensureNode(state *scenarioState) (*app.Node, error) {
	if state.node != nil {
		return state.node, nil
	}
	node, err := app.NewNode(app.NodeOptions{Emitter: r.emitter, Logger: r.nodeLogger()})
	if err != nil {
		return nil, err
	}
	state.node = node
	return node, nil
}

func (r *Runner) runGenesisStep(state *scenarioState, step Step) error {
	if state.node != nil {
		return r.assertions.Failf("genesis must come before any block or expectation")
	}
	raw, _ := step.Args["balances"].(map[string]any)
	genesis := app.Genesis{Balances: make(map[app.AccountID]app.Balance, len(raw))}
	for account, value := range raw {
		balance, err := parseAmount(value)
		if err != nil {
			return fmt.Errorf("genesis balance for %s: %w", account, err)
		}
		genesis.Balances[account] = balance
	}
	node, err := app.NewNode(app.NodeOptions{Emitter: r.emitter, Logger: r.nodeLogger(), Genesis: genesis})
	if err != nil {
		return err
	}
	state.node = node
	return nil
}

func (r *Runner) runBlockStep(ctx context.Context, state *scenarioState, step Step) error {
	node, err := r.ensureNode(state)
	if err != nil {
		return err
	}
	number, err := parseBlockNumber(step.Args["number"])
	if err != nil {
		return err
	}
	env, err := blockEnvelope(number, step.Args["extrinsics"])
	if err != nil {
		return err
	}
	block, err := node.DecodeBlock(env)
	if err != nil {
		return fmt.Errorf("decode block %d: %w", number, err)
	}

	expectErr := strings.TrimSpace(optionalString(step.Args, "expect_error"))
	result, err := node.ExecuteBlock(ctx, block)
	if err != nil {
		state.report.Rejected++
		state.report.Checks++
		if expectErr == "" {
			return r.assertf(state, "block %d rejected: %v", number, err)
		}
		if code := apperrors.CodeOf(err); string(code) != expectErr {
			return r.assertf(state, "block %d rejected with %s, want %s", number, code, expectErr)
		}
		r.logf("block %d rejected as expected: %v", number, err)
		return nil
	}

	state.report.Blocks++
	state.report.Extrinsics += result.Extrinsics
	state.report.Failures += len(result.Failures)
	state.failures[result.BlockNumber] = result.Failures
	if expectErr != "" {
		state.report.Checks++
		return r.assertf(state, "block %d executed, want rejection with %s", number, expectErr)
	}
	for _, f := range result.Failures {
		r.logf("block %d extrinsic %d (%s by %s) failed: %s", number, f.Index, f.Call, f.Caller, f.Message)
	}
	return nil
}

func (r *Runner) runExpectBalanceStep(state *scenarioState, step Step) error {
	node, err := r.ensureNode(state)
	if err != nil {
		return err
	}
	account := optionalString(step.Args, "account")
	want, err := parseAmount(step.Args["balance"])
	if err != nil {
		return fmt.Errorf("expected balance for %s: %w", account, err)
	}
	state.report.Checks++
	if got := node.Account(account).Balance; got != want {
		return r.assertf(state, "balance of %s = %d, want %d", account, got, want)
	}
	return nil
}

func (r *Runner) runExpectNonceStep(state *scenarioState, step Step) error {
	node, err := r.ensureNode(state)
	if err != nil {
		return err
	}
	account := optionalString(step.Args, "account")
	raw, err := parseAmount(step.Args["nonce"])
	if err != nil {
		return fmt.Errorf("expected nonce for %s: %w", account, err)
	}
	if raw > math.MaxUint32 {
		return fmt.Errorf("expected nonce for %s: %d out of range", account, raw)
	}
	state.report.Checks++
	if got := node.Account(account).Nonce; got != app.Nonce(raw) {
		return r.assertf(state, "nonce of %s = %d, want %d", account, got, raw)
	}
	return nil
}

func (r *Runner) runExpectClaimStep(state *scenarioState, step Step) error {
	node, err := r.ensureNode(state)
	if err != nil {
		return err
	}
	claim := optionalString(step.Args, "claim")
	want := optionalString(step.Args, "owner")
	state.report.Checks++
	owner, ok := node.GetClaim(claim)
	if !ok {
		return r.assertf(state, "claim %q missing, want owner %s", claim, want)
	}
	if owner != want {
		return r.assertf(state, "claim %q owner = %s, want %s", claim, owner, want)
	}
	return nil
}

func (r *Runner) runExpectNoClaimStep(state *scenarioState, step Step) error {
	node, err := r.ensureNode(state)
	if err != nil {
		return err
	}
	claim := optionalString(step.Args, "claim")
	state.report.Checks++
	if owner, ok := node.GetClaim(claim); ok {
		return r.assertf(state, "claim %q owned by %s, want none", claim, owner)
	}
	return nil
}

func (r *Runner) runExpectFailureStep(state *scenarioState, step Step) error {
	number, err := parseBlockNumber(step.Args["block"])
	if err != nil {
		return err
	}
	failures, executed := state.failures[number]
	if !executed {
		return r.assertions.Failf("expect_failure: block %d was not executed", number)
	}
	state.report.Checks++

	if _, ok := step.Args["index"]; !ok {
		count, ok := step.Args["count"].(int)
		if !ok {
			return fmt.Errorf("expect_failure needs index or count")
		}
		if len(failures) != count {
			return r.assertf(state, "block %d failures = %d, want %d", number, len(failures), count)
		}
		return nil
	}

	index, ok := step.Args["index"].(int)
	if !ok {
		return fmt.Errorf("expect_failure index must be an integer")
	}
	for _, f := range failures {
		if f.Index != index {
			continue
		}
		if code := optionalString(step.Args, "code"); code != "" && f.Code != code {
			return r.assertf(state, "block %d extrinsic %d failed with %s, want %s", number, index, f.Code, code)
		}
		if message := optionalString(step.Args, "message"); message != "" && f.Message != message {
			return r.assertf(state, "block %d extrinsic %d message = %q, want %q", number, index, f.Message, message)
		}
		return nil
	}
	return r.assertf(state, "block %d extrinsic %d did not fail", number, index)
}

func (r *Runner) runExpectBlockNumberStep(state *scenarioState, step Step) error {
	node, err := r.ensureNode(state)
	if err != nil {
		return err
	}
	want, err := parseBlockNumber(step.Args["number"])
	if err != nil {
		return err
	}
	state.report.Checks++
	if got := node.BlockNumber(); got != want {
		return r.assertf(state, "block number = %d, want %d", got, want)
	}
	return nil
}

func (r *Runner) runExpectTotalIssuanceStep(state *scenarioState, step Step) error {
	node, err := r.ensureNode(state)
	if err != nil {
		return err
	}
	state.report.Checks++
	total, ok := node.TotalIssuance()
	if s, isString := step.Args["total"].(string); isString && s == "overflow" {
		if ok {
			return r.assertf(state, "total issuance = %d, want overflow", total)
		}
		return nil
	}
	want, err := parseAmount(step.Args["total"])
	if err != nil {
		return fmt.Errorf("expected total issuance: %w", err)
	}
	if !ok {
		return r.assertf(state, "total issuance overflowed, want %d", want)
	}
	if total != want {
		return r.assertf(state, "total issuance = %d, want %d", total, want)
	}
	return nil
}

// blockEnvelope converts DSL extrinsic tables into the block wire form.
func blockEnvelope(number app.BlockNumber, raw any) (app.BlockEnvelope, error) {
	list, _ := raw.([]any)
	env := app.BlockEnvelope{
		Header:     runtime.HeaderEnvelope[app.BlockNumber]{BlockNumber: number},
		Extrinsics: make([]runtime.ExtrinsicEnvelope[app.AccountID], 0, len(list)),
	}
	for i, item := range list {
		ext, ok := item.(map[string]any)
		if !ok {
			return app.BlockEnvelope{}, fmt.Errorf("extrinsic %d must be a Call table", i)
		}
		args, _ := ext["args"].(map[string]any)
		normalized := make(map[string]any, len(args))
		for key, value := range args {
			if key == "amount" {
				amount, err := parseAmount(value)
				if err != nil {
					return app.BlockEnvelope{}, fmt.Errorf("extrinsic %d amount: %w", i, err)
				}
				value = amount
			}
			normalized[key] = value
		}
		data, err := module.MarshalArgs(normalized)
		if err != nil {
			return app.BlockEnvelope{}, fmt.Errorf("extrinsic %d args: %w", i, err)
		}
		env.Extrinsics = append(env.Extrinsics, runtime.ExtrinsicEnvelope[app.AccountID]{
			Caller: optionalString(ext, "caller"),
			Call: module.Envelope{
				Module: optionalString(ext, "module"),
				Call:   optionalString(ext, "call"),
				Args:   data,
			},
		})
	}
	return env, nil
}

// parseAmount accepts integers, decimal strings and "max".
func parseAmount(value any) (app.Balance, error) {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return 0, fmt.Errorf("amount %d is negative", v)
		}
		return app.Balance(v), nil
	case string:
		if strings.EqualFold(strings.TrimSpace(v), "max") {
			return math.MaxUint64, nil
		}
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q: %w", v, err)
		}
		return parsed, nil
	case float64:
		return 0, fmt.Errorf("amount %v is not an exact integer; use a decimal string", v)
	default:
		return 0, fmt.Errorf("amount %v has unsupported type %T", value, value)
	}
}

func parseBlockNumber(value any) (app.BlockNumber, error) {
	raw, err := parseAmount(value)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	if raw > math.MaxUint32 {
		return 0, fmt.Errorf("block number %d out of range", raw)
	}
	return app.BlockNumber(raw), nil
}

func optionalString(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}
