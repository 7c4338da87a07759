package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is an ordered list of steps loaded from a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one DSL call with its normalized arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it builds.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source and returns the Scenario it builds.
func LoadScenario(name, source string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func newLuaState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerScenarioType(state)
	registerGlobal(state, "Scenario", scenarioConstructor)
	registerGlobal(state, "Call", callHelpers)
	return state
}

func runScript(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerGlobal(state *lua.State, name string, functions []lua.RegistryFunction) {
	state.NewTable()
	lua.SetFunctions(state, functions, 0)
	state.SetGlobal(name)
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "genesis", Function: scenarioGenesis},
	{Name: "block", Function: scenarioBlock},
	{Name: "expect_balance", Function: scenarioExpectBalance},
	{Name: "expect_nonce", Function: scenarioExpectNonce},
	{Name: "expect_claim", Function: scenarioExpectClaim},
	{Name: "expect_no_claim", Function: scenarioExpectNoClaim},
	{Name: "expect_failure", Function: scenarioExpectFailure},
	{Name: "expect_block_number", Function: scenarioExpectBlockNumber},
	{Name: "expect_total_issuance", Function: scenarioExpectTotalIssuance},
}

// scene:genesis({alice = 100, bob = "max"})
func scenarioGenesis(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "genesis", map[string]any{"balances": tableToMap(state, 2)})
	return 0
}

// scene:block(1, {Call.transfer("alice", "bob", 10)}, {expect_error = "BLOCK_NUMBER_MISMATCH"})
func scenarioBlock(state *lua.State) int {
	scenario := checkScenario(state)
	number := lua.CheckInteger(state, 2)
	if number < 0 {
		lua.ArgumentError(state, 2, "block number must not be negative")
		return 0
	}
	data := optionalTable(state, 4)
	data["number"] = number
	data["extrinsics"] = []any{}
	if state.TypeOf(3) == lua.TypeTable {
		if extrinsics, ok := tableToGo(state, 3).([]any); ok {
			data["extrinsics"] = extrinsics
		}
	}
	appendStep(scenario, "block", data)
	return 0
}

func scenarioExpectBalance(state *lua.State) int {
	scenario := checkScenario(state)
	account := lua.CheckString(state, 2)
	appendStep(scenario, "expect_balance", map[string]any{"account": account, "balance": luaToGo(state, 3)})
	return 0
}

func scenarioExpectNonce(state *lua.State) int {
	scenario := checkScenario(state)
	account := lua.CheckString(state, 2)
	appendStep(scenario, "expect_nonce", map[string]any{"account": account, "nonce": luaToGo(state, 3)})
	return 0
}

func scenarioExpectClaim(state *lua.State) int {
	scenario := checkScenario(state)
	claim := lua.CheckString(state, 2)
	owner := lua.CheckString(state, 3)
	appendStep(scenario, "expect_claim", map[string]any{"claim": claim, "owner": owner})
	return 0
}

func scenarioExpectNoClaim(state *lua.State) int {
	scenario := checkScenario(state)
	claim := lua.CheckString(state, 2)
	appendStep(scenario, "expect_no_claim", map[string]any{"claim": claim})
	return 0
}

// scene:expect_failure({block = 1, index = 0, code = "INSUFFICIENT_BALANCE"})
func scenarioExpectFailure(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "expect_failure", tableToMap(state, 2))
	return 0
}

func scenarioExpectBlockNumber(state *lua.State) int {
	scenario := checkScenario(state)
	number := lua.CheckInteger(state, 2)
	appendStep(scenario, "expect_block_number", map[string]any{"number": number})
	return 0
}

func scenarioExpectTotalIssuance(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_total_issuance", map[string]any{"total": luaToGo(state, 2)})
	return 0
}

var callHelpers = []lua.RegistryFunction{
	{Name: "transfer", Function: callTransfer},
	{Name: "create_claim", Function: callCreateClaim},
	{Name: "revoke_claim", Function: callRevokeClaim},
}

// Call.transfer(caller, to, amount)
func callTransfer(state *lua.State) int {
	caller := lua.CheckString(state, 1)
	to := lua.CheckString(state, 2)
	amount := luaToGo(state, 3)
	if amount == nil {
		lua.ArgumentError(state, 3, "amount expected")
		return 0
	}
	pushExtrinsic(state, caller, "balances", "transfer", map[string]any{"to": to, "amount": amount})
	return 1
}

// Call.create_claim(caller, claim)
func callCreateClaim(state *lua.State) int {
	caller := lua.CheckString(state, 1)
	claim := lua.CheckString(state, 2)
	pushExtrinsic(state, caller, "proof_of_existence", "create_claim", map[string]any{"claim": claim})
	return 1
}

// Call.revoke_claim(caller, claim)
func callRevokeClaim(state *lua.State) int {
	caller := lua.CheckString(state, 1)
	claim := lua.CheckString(state, 2)
	pushExtrinsic(state, caller, "proof_of_existence", "revoke_claim", map[string]any{"claim": claim})
	return 1
}

// pushExtrinsic leaves a table shaped like the block wire format on the stack.
func pushExtrinsic(state *lua.State, caller, module, call string, args map[string]any) {
	state.NewTable()
	state.PushString(caller)
	state.SetField(-2, "caller")
	state.PushString(module)
	state.SetField(-2, "module")
	state.PushString(call)
	state.SetField(-2, "call")
	state.NewTable()
	for key, value := range args {
		switch v := value.(type) {
		case string:
			state.PushString(v)
		case int:
			state.PushInteger(v)
		case float64:
			state.PushNumber(v)
		default:
			state.PushString(fmt.Sprint(v))
		}
		state.SetField(-2, key)
	}
	state.SetField(-2, "args")
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo returns a []any for sequence tables and a map otherwise.
func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				maxIndex = max(maxIndex, idx)
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	if isArray && count == 0 {
		return []any{}
	}
	return tableToMap(state, index)
}

// normalizeNumber keeps exact integers as int. Larger magnitudes stay
// float64 so callers can reject them instead of silently truncating.
func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) <= 1<<53 {
		return int(value)
	}
	return value
}
