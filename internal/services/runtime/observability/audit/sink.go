package audit

import (
	"context"
	"fmt"
	"log"

	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/runtime"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
	"github.com/louisbranch/runtimekit/internal/services/runtime/observability/audit/events"
	"github.com/louisbranch/runtimekit/internal/services/runtime/storage"
)

// FailureSink records extrinsic failures as audit events. Write errors are
// logged and never reach the executor.
type FailureSink[A support.AccountID, B support.Unsigned] struct {
	Emitter *Emitter
	Logger  *log.Logger
}

// ExtrinsicFailed implements runtime.FailureSink.
func (s FailureSink[A, B]) ExtrinsicFailed(ctx context.Context, f runtime.ExtrinsicFailure[A, B]) {
	if err := s.Emitter.Emit(ctx, ExtrinsicFailedEvent(f)); err != nil {
		logger := s.Logger
		if logger == nil {
			logger = log.Default()
		}
		logger.Printf("audit: record extrinsic failure: %v", err)
	}
}

// ExtrinsicFailedEvent builds the audit record of one failed extrinsic.
func ExtrinsicFailedEvent[A support.AccountID, B support.Unsigned](f runtime.ExtrinsicFailure[A, B]) storage.AuditEvent {
	blockNumber := uint64(f.BlockNumber)
	index := f.Index
	evt := storage.AuditEvent{
		EventName:      events.ExtrinsicFailed,
		Severity:       string(SeverityWarn),
		BlockNumber:    &blockNumber,
		ExtrinsicIndex: &index,
		Caller:         fmt.Sprint(f.Caller),
		Call:           f.Call,
		ErrorCode:      string(f.Code()),
	}
	if f.Err != nil {
		evt.Message = f.Err.Error()
	}
	return evt
}
