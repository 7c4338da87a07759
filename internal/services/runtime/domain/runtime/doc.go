// Package runtime composes the system, balances and proof-of-existence
// modules into one state-transition engine.
//
// The runtime owns every module exclusively. Dispatch routes an outer Call to
// the module it wraps and returns that module's result unchanged. ExecuteBlock
// applies a block: the header must declare the next block number, every
// extrinsic consumes a caller nonce whether or not its call succeeds, and
// per-extrinsic failures are reported to a FailureSink instead of aborting
// the block.
package runtime
