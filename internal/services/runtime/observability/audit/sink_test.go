package audit

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/proofofexistence"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/runtime"
	"github.com/louisbranch/runtimekit/internal/services/runtime/observability/audit/events"
)

func TestFailureSinkRecordsEvent(t *testing.T) {
	store := &fakeAuditStore{}
	sink := FailureSink[string, uint32]{Emitter: NewEmitter(store)}

	sink.ExtrinsicFailed(context.Background(), runtime.ExtrinsicFailure[string, uint32]{
		BlockNumber: 2,
		Index:       1,
		Caller:      "bob",
		Call:        "proof_of_existence.revoke_claim",
		Err:         proofofexistence.ErrNotClaimOwner,
	})

	if len(store.events) != 1 {
		t.Fatalf("events = %d, want 1", len(store.events))
	}
	evt := store.events[0]
	if evt.EventName != events.ExtrinsicFailed || evt.Severity != string(SeverityWarn) {
		t.Fatalf("event = %+v", evt)
	}
	if evt.BlockNumber == nil || *evt.BlockNumber != 2 || evt.ExtrinsicIndex == nil || *evt.ExtrinsicIndex != 1 {
		t.Fatalf("position = %v/%v, want 2/1", evt.BlockNumber, evt.ExtrinsicIndex)
	}
	if evt.Caller != "bob" || evt.ErrorCode != "NOT_CLAIM_OWNER" || evt.Message != "Caller is not the owner of claim" {
		t.Fatalf("event = %+v", evt)
	}
}

func TestFailureSinkLogsStoreErrors(t *testing.T) {
	var buf bytes.Buffer
	sink := FailureSink[string, uint32]{
		Emitter: NewEmitter(&fakeAuditStore{err: errors.New("disk full")}),
		Logger:  log.New(&buf, "", 0),
	}

	sink.ExtrinsicFailed(context.Background(), runtime.ExtrinsicFailure[string, uint32]{BlockNumber: 1, Caller: "alice", Err: errors.New("boom")})

	if !strings.Contains(buf.String(), "disk full") {
		t.Fatalf("log = %q, want store error", buf.String())
	}
}

func TestFailureSinkWithoutEmitter(t *testing.T) {
	sink := FailureSink[string, uint32]{}
	sink.ExtrinsicFailed(context.Background(), runtime.ExtrinsicFailure[string, uint32]{BlockNumber: 1, Caller: "alice"})
}
