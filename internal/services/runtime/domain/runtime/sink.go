package runtime

import (
	"context"
	"log"
	"slices"
	"sync"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
)

// ExtrinsicFailure describes one extrinsic whose call failed.
type ExtrinsicFailure[A support.AccountID, B support.Unsigned] struct {
	BlockNumber B
	Index       int
	Caller      A
	Call        string
	Err         error
}

// Code returns the error code of the failure.
func (f ExtrinsicFailure[A, B]) Code() apperrors.Code {
	return apperrors.CodeOf(f.Err)
}

// FailureSink receives per-extrinsic failures. Sinks cannot affect the block.
type FailureSink[A support.AccountID, B support.Unsigned] interface {
	ExtrinsicFailed(ctx context.Context, failure ExtrinsicFailure[A, B])
}

// LogSink writes failures to Logger, or the standard logger when nil.
type LogSink[A support.AccountID, B support.Unsigned] struct {
	Logger *log.Logger
}

// ExtrinsicFailed implements FailureSink.
func (s LogSink[A, B]) ExtrinsicFailed(_ context.Context, f ExtrinsicFailure[A, B]) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("extrinsic failed: block=%v index=%d caller=%v call=%s code=%s: %v",
		f.BlockNumber, f.Index, f.Caller, f.Call, f.Code(), f.Err)
}

// Sinks fans a failure out to every non-nil sink in order.
type Sinks[A support.AccountID, B support.Unsigned] []FailureSink[A, B]

// ExtrinsicFailed implements FailureSink.
func (s Sinks[A, B]) ExtrinsicFailed(ctx context.Context, f ExtrinsicFailure[A, B]) {
	for _, sink := range s {
		if sink != nil {
			sink.ExtrinsicFailed(ctx, f)
		}
	}
}

// FailureRecorder keeps failures in memory.
type FailureRecorder[A support.AccountID, B support.Unsigned] struct {
	mu       sync.Mutex
	failures []ExtrinsicFailure[A, B]
}

// ExtrinsicFailed implements FailureSink.
func (r *FailureRecorder[A, B]) ExtrinsicFailed(_ context.Context, f ExtrinsicFailure[A, B]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

// Failures returns a copy of every recorded failure in arrival order.
func (r *FailureRecorder[A, B]) Failures() []ExtrinsicFailure[A, B] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.failures)
}

// Drain returns every recorded failure and clears the recorder.
func (r *FailureRecorder[A, B]) Drain() []ExtrinsicFailure[A, B] {
	r.mu.Lock()
	defer r.mu.Unlock()
	failures := r.failures
	r.failures = nil
	return failures
}

// Len returns the number of recorded failures.
func (r *FailureRecorder[A, B]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}
