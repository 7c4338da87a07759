// Package events defines canonical runtime audit event names.
package events

const (
	// BlockExecuted records a block whose header was accepted.
	BlockExecuted = "runtime.block.executed"
	// BlockRejected records a block rejected before any state change.
	BlockRejected = "runtime.block.rejected"
	// ExtrinsicFailed records one extrinsic whose call failed.
	ExtrinsicFailed = "runtime.extrinsic.failed"
)
