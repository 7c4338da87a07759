package runtime

import (
	"bytes"
	"context"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/balances"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/proofofexistence"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/system"
)

type (
	testRuntime   = Runtime[string, uint32, uint32, uint64, string]
	testCall      = Call[string, uint64, string]
	testExtrinsic = Extrinsic[string, uint64, string]
	testBlock     = Block[string, uint32, uint64, string]
	testRecorder  = FailureRecorder[string, uint32]
)

func newTestRuntime(t *testing.T) (*testRuntime, *testRecorder) {
	t.Helper()
	recorder := &testRecorder{}
	return New[string, uint32, uint32, uint64, string](recorder), recorder
}

func transfer(to string, amount uint64) testCall {
	return BalancesCall[string, uint64, string]{Call: balances.Transfer[string, uint64]{To: to, Amount: amount}}
}

func createClaim(claim string) testCall {
	return ProofOfExistenceCall[string, uint64, string]{Call: proofofexistence.CreateClaim[string]{Claim: claim}}
}

func revokeClaim(claim string) testCall {
	return ProofOfExistenceCall[string, uint64, string]{Call: proofofexistence.RevokeClaim[string]{Claim: claim}}
}

func ext(caller string, call testCall) testExtrinsic {
	return testExtrinsic{Caller: caller, Call: call}
}

func block(number uint32, extrinsics ...testExtrinsic) testBlock {
	return testBlock{Header: Header[uint32]{BlockNumber: number}, Extrinsics: extrinsics}
}

func mustExecute(t *testing.T, rt *testRuntime, b testBlock) {
	t.Helper()
	if err := rt.ExecuteBlock(context.Background(), b); err != nil {
		t.Fatalf("execute block %d: %v", b.Header.BlockNumber, err)
	}
}

func TestDispatchRoutesToModules(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.SetBalance("alice", 10)

	if err := rt.Dispatch("alice", transfer("bob", 3)); err != nil {
		t.Fatalf("dispatch transfer: %v", err)
	}
	if got := rt.Balance("bob"); got != 3 {
		t.Fatalf("bob = %d, want 3", got)
	}
	if err := rt.Dispatch("bob", createClaim("doc")); err != nil {
		t.Fatalf("dispatch create claim: %v", err)
	}
	if owner, ok := rt.GetClaim("doc"); !ok || owner != "bob" {
		t.Fatalf("GetClaim = (%q, %v), want (bob, true)", owner, ok)
	}
	if got := rt.Nonce("alice"); got != 0 {
		t.Fatalf("dispatch changed nonce to %d", got)
	}
}

func TestDispatchPropagatesModuleErrors(t *testing.T) {
	rt, _ := newTestRuntime(t)

	err := rt.Dispatch("alice", transfer("bob", 1))
	if !errors.Is(err, balances.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err.Error() != "Insufficient balance" {
		t.Fatalf("message = %q", err.Error())
	}
	if err := rt.Dispatch("alice", nil); !errors.Is(err, support.ErrUnknownCall) {
		t.Fatalf("expected unknown call, got %v", err)
	}
	if err := rt.Dispatch("alice", BalancesCall[string, uint64, string]{}); !errors.Is(err, support.ErrUnknownCall) {
		t.Fatalf("expected unknown call for empty module call, got %v", err)
	}
}

func TestExecuteBlockTransfersScenario(t *testing.T) {
	rt, recorder := newTestRuntime(t)
	rt.SetBalance("alice", 100)

	mustExecute(t, rt, block(1,
		ext("alice", transfer("bob", 20)),
		ext("bob", transfer("charlie", 10)),
	))

	wantBalances := map[string]uint64{"alice": 80, "bob": 10, "charlie": 10}
	for who, want := range wantBalances {
		if got := rt.Balance(who); got != want {
			t.Fatalf("%s balance = %d, want %d", who, got, want)
		}
	}
	if rt.Nonce("alice") != 1 || rt.Nonce("bob") != 1 {
		t.Fatalf("nonces alice=%d bob=%d, want 1 and 1", rt.Nonce("alice"), rt.Nonce("bob"))
	}
	if got := rt.Nonce("charlie"); got != 0 {
		t.Fatalf("charlie nonce = %d, want 0", got)
	}
	if got := rt.BlockNumber(); got != 1 {
		t.Fatalf("block number = %d, want 1", got)
	}
	if recorder.Len() != 0 {
		t.Fatalf("unexpected failures: %+v", recorder.Failures())
	}
}

func TestExecuteBlockOverflowScenario(t *testing.T) {
	rt, recorder := newTestRuntime(t)
	rt.SetBalance("alice", 100)
	rt.SetBalance("bob", support.Max[uint64]())

	mustExecute(t, rt, block(1, ext("alice", transfer("bob", 10))))

	if got := rt.Balance("alice"); got != 100 {
		t.Fatalf("alice = %d, want 100", got)
	}
	if got := rt.Balance("bob"); got != support.Max[uint64]() {
		t.Fatalf("bob = %d, want max", got)
	}
	if got := rt.Nonce("alice"); got != 1 {
		t.Fatalf("alice nonce = %d, want 1", got)
	}
	failures := recorder.Failures()
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(failures))
	}
	if !errors.Is(failures[0].Err, balances.ErrBalanceOverflow) {
		t.Fatalf("failure = %v, want balance overflow", failures[0].Err)
	}
}

func TestExecuteBlockClaimsScenario(t *testing.T) {
	rt, recorder := newTestRuntime(t)
	mustExecute(t, rt, block(1))

	mustExecute(t, rt, block(2,
		ext("alice", createClaim("doc1")),
		ext("bob", revokeClaim("doc1")),
		ext("alice", revokeClaim("doc1")),
	))

	if _, ok := rt.GetClaim("doc1"); ok {
		t.Fatal("expected doc1 to be revoked")
	}
	failures := recorder.Failures()
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(failures))
	}
	got := failures[0]
	if got.BlockNumber != 2 || got.Index != 1 || got.Caller != "bob" || got.Call != "proof_of_existence.revoke_claim" {
		t.Fatalf("failure = %+v", got)
	}
	if got.Code() != apperrors.CodeNotClaimOwner {
		t.Fatalf("failure code = %s, want %s", got.Code(), apperrors.CodeNotClaimOwner)
	}
	if rt.Nonce("alice") != 2 || rt.Nonce("bob") != 1 {
		t.Fatalf("nonces alice=%d bob=%d, want 2 and 1", rt.Nonce("alice"), rt.Nonce("bob"))
	}
}

func TestExecuteBlockHeaderGate(t *testing.T) {
	rt, recorder := newTestRuntime(t)
	rt.SetBalance("alice", 100)
	mustExecute(t, rt, block(1, ext("alice", createClaim("doc"))))
	before := rt.Snapshot()

	for _, declared := range []uint32{0, 1, 3, 100} {
		err := rt.ExecuteBlock(context.Background(), block(declared,
			ext("alice", transfer("bob", 50)),
			ext("alice", revokeClaim("doc")),
		))
		if !errors.Is(err, ErrBlockNumberMismatch) {
			t.Fatalf("declared %d: expected block number mismatch, got %v", declared, err)
		}
		if !IsBlockAbort(err) {
			t.Fatalf("declared %d: expected block abort", declared)
		}
		if after := rt.Snapshot(); !reflect.DeepEqual(before, after) {
			t.Fatalf("declared %d: state changed\nbefore: %+v\nafter:  %+v", declared, before, after)
		}
	}
	if recorder.Len() != 0 {
		t.Fatalf("rejected blocks reported failures: %+v", recorder.Failures())
	}

	mustExecute(t, rt, block(2))
	if got := rt.BlockNumber(); got != 2 {
		t.Fatalf("block number = %d, want 2", got)
	}
}

func TestExecuteBlockMismatchMetadata(t *testing.T) {
	rt, _ := newTestRuntime(t)
	err := rt.ExecuteBlock(context.Background(), block(5))

	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %T", err)
	}
	if domainErr.Metadata["expected"] != "1" || domainErr.Metadata["declared"] != "5" {
		t.Fatalf("metadata = %v", domainErr.Metadata)
	}
	if !strings.Contains(err.Error(), "expected 1, got 5") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestExecuteBlockNonceMonotonicity(t *testing.T) {
	rt, recorder := newTestRuntime(t)
	rt.SetBalance("alice", 5)
	mustExecute(t, rt, block(1, ext("dave", createClaim("unrelated"))))

	mustExecute(t, rt, block(2,
		ext("alice", transfer("bob", 5)),
		ext("alice", transfer("bob", 1)),
		ext("bob", createClaim("x")),
		ext("charlie", revokeClaim("missing")),
		ext("bob", transfer("alice", 100)),
	))

	want := map[string]uint32{"alice": 2, "bob": 2, "charlie": 1, "dave": 1, "erin": 0}
	for who, n := range want {
		if got := rt.Nonce(who); got != n {
			t.Fatalf("%s nonce = %d, want %d", who, got, n)
		}
	}
	if got := recorder.Len(); got != 3 {
		t.Fatalf("failures = %d, want 3", got)
	}
}

func TestExecuteBlockNonceExhaustionAbortsBlock(t *testing.T) {
	recorder := &FailureRecorder[string, uint32]{}
	rt := New[string, uint32, uint8, uint64, string](recorder)
	rt.SetBalance("alice", 100)
	rt.system.SetNonce("bob", support.Max[uint8]()-1)
	before := rt.Snapshot()

	err := rt.ExecuteBlock(context.Background(), testBlock{
		Header: Header[uint32]{BlockNumber: 1},
		Extrinsics: []testExtrinsic{
			ext("alice", transfer("charlie", 10)),
			ext("bob", createClaim("a")),
			ext("bob", createClaim("b")),
		},
	})
	if !errors.Is(err, system.ErrNonceOverflow) {
		t.Fatalf("expected nonce overflow, got %v", err)
	}
	if !IsBlockAbort(err) {
		t.Fatal("expected nonce overflow to abort the block")
	}
	if after := rt.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed\nbefore: %+v\nafter:  %+v", before, after)
	}

	mustExecuteUint8Nonce(t, rt, 1, ext("bob", createClaim("a")))
	if got := rt.Nonce("bob"); got != support.Max[uint8]() {
		t.Fatalf("bob nonce = %d, want max", got)
	}
}

func mustExecuteUint8Nonce(t *testing.T, rt *Runtime[string, uint32, uint8, uint64, string], number uint32, extrinsics ...testExtrinsic) {
	t.Helper()
	if err := rt.ExecuteBlock(context.Background(), block(number, extrinsics...)); err != nil {
		t.Fatalf("execute block %d: %v", number, err)
	}
}

func TestExecuteBlockNumberOverflowAbortsBlock(t *testing.T) {
	rt := New[string, uint8, uint32, uint64, string](nil)
	rt.system.SetBlockNumber(support.Max[uint8]())

	err := rt.ExecuteBlock(context.Background(), Block[string, uint8, uint64, string]{
		Header: Header[uint8]{BlockNumber: 0},
	})
	if !errors.Is(err, system.ErrBlockNumberOverflow) {
		t.Fatalf("expected block number overflow, got %v", err)
	}
	if !IsBlockAbort(err) {
		t.Fatal("expected block abort")
	}
	if got := rt.BlockNumber(); got != support.Max[uint8]() {
		t.Fatalf("block number = %d, want max", got)
	}
}

func TestIsBlockAbort(t *testing.T) {
	if IsBlockAbort(nil) {
		t.Fatal("nil is not a block abort")
	}
	if IsBlockAbort(balances.ErrInsufficientBalance) {
		t.Fatal("module errors are not block aborts")
	}
	if abortBlock(nil) != nil {
		t.Fatal("expected abortBlock(nil) to be nil")
	}
}

func TestApplyGenesis(t *testing.T) {
	rt, _ := newTestRuntime(t)
	if err := rt.ApplyGenesis(Genesis[string, uint64]{Balances: map[string]uint64{"alice": 100, "bob": 50}}); err != nil {
		t.Fatalf("apply genesis: %v", err)
	}
	if rt.Balance("alice") != 100 || rt.Balance("bob") != 50 {
		t.Fatalf("balances alice=%d bob=%d", rt.Balance("alice"), rt.Balance("bob"))
	}
	if total, ok := rt.TotalIssuance(); !ok || total != 150 {
		t.Fatalf("TotalIssuance = (%d, %v), want (150, true)", total, ok)
	}

	mustExecute(t, rt, block(1))
	err := rt.ApplyGenesis(Genesis[string, uint64]{Balances: map[string]uint64{"alice": 1}})
	if !errors.Is(err, ErrGenesisAfterStart) {
		t.Fatalf("expected genesis after start error, got %v", err)
	}
	if got := rt.Balance("alice"); got != 100 {
		t.Fatalf("alice = %d, want 100", got)
	}
}

func TestSnapshotOrdered(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.SetBalance("charlie", 30)
	rt.SetBalance("alice", 100)
	mustExecute(t, rt, block(1,
		ext("charlie", createClaim("zeta")),
		ext("alice", createClaim("alpha")),
		ext("alice", transfer("bob", 1)),
	))

	got := rt.Snapshot()
	want := State[string, uint32, uint32, uint64, string]{
		BlockNumber: 1,
		Nonces: []system.AccountNonce[string, uint32]{
			{Account: "alice", Nonce: 2},
			{Account: "charlie", Nonce: 1},
		},
		Balances: []balances.Account[string, uint64]{
			{Account: "alice", Balance: 99},
			{Account: "bob", Balance: 1},
			{Account: "charlie", Balance: 30},
		},
		Claims: []proofofexistence.Claim[string, string]{
			{Content: "alpha", Owner: "alice"},
			{Content: "zeta", Owner: "charlie"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot = %+v, want %+v", got, want)
	}
}

func TestExecuteBlockConservesIssuance(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.SetBalance("alice", 500)
	rt.SetBalance("bob", support.Max[uint64]()-1000)
	before, ok := rt.TotalIssuance()
	if !ok {
		t.Fatal("expected issuance to fit")
	}

	mustExecute(t, rt, block(1,
		ext("alice", transfer("bob", 100)),
		ext("bob", transfer("charlie", 700)),
		ext("charlie", transfer("alice", 701)),
		ext("alice", transfer("bob", 10_000)),
		ext("charlie", transfer("bob", 300)),
	))

	after, ok := rt.TotalIssuance()
	if !ok || after != before {
		t.Fatalf("issuance = %d, want %d", after, before)
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink[string, uint32]{Logger: log.New(&buf, "", 0)}
	rt := New[string, uint32, uint32, uint64, string](sink)

	mustExecute(t, rt, block(1, ext("bob", revokeClaim("doc1"))))

	line := buf.String()
	for _, want := range []string{"block=1", "index=0", "caller=bob", "call=proof_of_existence.revoke_claim", "code=CLAIM_NOT_FOUND", "Claim does not exist"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestSinksFanOut(t *testing.T) {
	first := &testRecorder{}
	second := &testRecorder{}
	rt := New[string, uint32, uint32, uint64, string](Sinks[string, uint32]{first, nil, second})

	mustExecute(t, rt, block(1, ext("alice", transfer("bob", 1))))

	if first.Len() != 1 || second.Len() != 1 {
		t.Fatalf("fan out counts = %d, %d, want 1, 1", first.Len(), second.Len())
	}
	if drained := first.Drain(); len(drained) != 1 {
		t.Fatalf("drained = %d, want 1", len(drained))
	}
	if first.Len() != 0 {
		t.Fatalf("recorder len after drain = %d, want 0", first.Len())
	}
}
