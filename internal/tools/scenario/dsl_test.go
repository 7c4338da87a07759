package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadScenarioBuildsSteps(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new("steps")
scene:genesis({alice = 100, bob = "max"})
scene:block(1, {Call.transfer("alice", "bob", 5), Call.create_claim("bob", "doc")}, {expect_error = "X"})
scene:expect_claim("doc", "bob")
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "steps" {
		t.Fatalf("name = %q", scenario.Name)
	}
	if len(scenario.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(scenario.Steps))
	}

	genesis := scenario.Steps[0].Args["balances"].(map[string]any)
	if genesis["alice"] != 100 || genesis["bob"] != "max" {
		t.Fatalf("genesis = %v", genesis)
	}

	block := scenario.Steps[1]
	if block.Kind != "block" || block.Args["number"] != 1 || block.Args["expect_error"] != "X" {
		t.Fatalf("block step = %+v", block)
	}
	extrinsics := block.Args["extrinsics"].([]any)
	if len(extrinsics) != 2 {
		t.Fatalf("extrinsics = %v", extrinsics)
	}
	transfer := extrinsics[0].(map[string]any)
	if transfer["caller"] != "alice" || transfer["module"] != "balances" || transfer["call"] != "transfer" {
		t.Fatalf("transfer = %v", transfer)
	}
	args := transfer["args"].(map[string]any)
	if args["to"] != "bob" || args["amount"] != 5 {
		t.Fatalf("transfer args = %v", args)
	}
	claim := extrinsics[1].(map[string]any)
	if claim["call"] != "create_claim" || claim["args"].(map[string]any)["claim"] != "doc" {
		t.Fatalf("claim = %v", claim)
	}
}

func TestLoadScenarioDefaultsNameToFile(t *testing.T) {
	path := writeScenarioFixture(t, `return Scenario.new()`)
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "scenario" {
		t.Fatalf("name = %q, want file stem", scenario.Name)
	}
}

func TestLoadScenarioEmptyBlock(t *testing.T) {
	scenario, err := LoadScenario("empty", `local s = Scenario.new() s:block(1, {}) return s`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if scenario.Name != "empty" {
		t.Fatalf("name = %q", scenario.Name)
	}
	extrinsics, ok := scenario.Steps[0].Args["extrinsics"].([]any)
	if !ok || len(extrinsics) != 0 {
		t.Fatalf("extrinsics = %#v", scenario.Steps[0].Args["extrinsics"])
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "syntax", source: `local scene = `, want: "load lua"},
		{name: "not a scenario", source: `return 42`, want: "must return Scenario"},
		{name: "runtime error", source: `error("boom")`, want: "run lua"},
		{name: "bad argument", source: `local s = Scenario.new() s:expect_claim("doc") return s`, want: "run lua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(tt.name, tt.source)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	if got := normalizeNumber(42); got != 42 {
		t.Fatalf("normalizeNumber(42) = %#v", got)
	}
	if got := normalizeNumber(1.5); got != 1.5 {
		t.Fatalf("normalizeNumber(1.5) = %#v", got)
	}
	if _, ok := normalizeNumber(1e19).(float64); !ok {
		t.Fatal("expected large value to stay float64")
	}
}

func writeScenarioFixture(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.lua")
	if err := os.WriteFile(path, []byte(source), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
