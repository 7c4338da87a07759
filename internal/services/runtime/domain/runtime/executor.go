package runtime

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
)

// ErrBlockNumberMismatch is returned when a header does not declare the next
// block number.
var ErrBlockNumberMismatch = apperrors.New(apperrors.CodeBlockNumberMismatch, "block number mismatch")

// blockAbortError marks an error that rejected a whole block before any state
// was written.
type blockAbortError struct {
	err error
}

func (e *blockAbortError) Error() string { return e.err.Error() }
func (e *blockAbortError) Unwrap() error { return e.err }

// BlockAbort returns true from IsBlockAbort checks.
func (e *blockAbortError) BlockAbort() bool { return true }

func abortBlock(err error) error {
	if err == nil {
		return nil
	}
	return &blockAbortError{err: err}
}

// IsBlockAbort reports whether err rejected a whole block. Callers can rely on
// the runtime state being exactly as it was before the rejected call.
func IsBlockAbort(err error) bool {
	var target interface{ BlockAbort() bool }
	if errors.As(err, &target) {
		return target.BlockAbort()
	}
	return false
}

// ExecuteBlock applies block.
//
// The block is rejected without any state change when its header does not
// declare the next block number, when the block number cannot advance, or when
// a caller's nonce cannot absorb one increment per extrinsic it signs.
// Otherwise the block number advances and every extrinsic runs in order: the
// caller's nonce increments first, then the call is dispatched. A failed call
// is reported to the failure sink and execution continues with the next
// extrinsic.
//
// ctx is only handed to the failure sink.
func (r *Runtime[A, B, N, V, C]) ExecuteBlock(ctx context.Context, block Block[A, B, V, C]) error {
	expected, err := r.system.NextBlockNumber()
	if err != nil {
		return abortBlock(err)
	}
	if declared := block.Header.BlockNumber; declared != expected {
		return abortBlock(apperrors.WithMetadata(
			apperrors.CodeBlockNumberMismatch,
			fmt.Sprintf("%s: expected %v, got %v", ErrBlockNumberMismatch.Message, expected, declared),
			map[string]string{
				"expected": fmt.Sprint(expected),
				"declared": fmt.Sprint(declared),
			},
		))
	}
	if err := r.checkNonceHeadroom(block.Extrinsics); err != nil {
		return abortBlock(err)
	}
	if err := r.system.AdvanceBlock(); err != nil {
		return abortBlock(err)
	}

	for i, ext := range block.Extrinsics {
		// Headroom was checked for every caller above.
		if err := r.system.IncrementNonce(ext.Caller); err != nil {
			return err
		}
		if err := r.Dispatch(ext.Caller, ext.Call); err != nil {
			r.sink.ExtrinsicFailed(ctx, ExtrinsicFailure[A, B]{
				BlockNumber: expected,
				Index:       i,
				Caller:      ext.Caller,
				Call:        CallName(ext.Call),
				Err:         err,
			})
		}
	}
	return nil
}

func (r *Runtime[A, B, N, V, C]) checkNonceHeadroom(extrinsics []Extrinsic[A, V, C]) error {
	counts := make(map[A]uint64, len(extrinsics))
	for _, ext := range extrinsics {
		counts[ext.Caller]++
	}
	for _, who := range support.SortedKeys(counts) {
		if err := r.system.NonceHeadroom(who, counts[who]); err != nil {
			return err
		}
	}
	return nil
}
