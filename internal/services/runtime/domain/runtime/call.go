package runtime

import (
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/balances"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/proofofexistence"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
)

// Call is the outer union of dispatchable calls, one variant per module.
type Call[A support.AccountID, V support.Unsigned, C support.Content] interface {
	runtimeCall(A, V, C)
}

// BalancesCall wraps a balances module call.
type BalancesCall[A support.AccountID, V support.Unsigned, C support.Content] struct {
	Call balances.Call[A, V]
}

// ProofOfExistenceCall wraps a proof-of-existence module call.
type ProofOfExistenceCall[A support.AccountID, V support.Unsigned, C support.Content] struct {
	Call proofofexistence.Call[C]
}

func (BalancesCall[A, V, C]) runtimeCall(A, V, C) {}
func (ProofOfExistenceCall[A, V, C]) runtimeCall(A, V, C) {}

// Extrinsic is one caller-attributed call.
type Extrinsic[A support.AccountID, V support.Unsigned, C support.Content] struct {
	Caller A
	Call   Call[A, V, C]
}

// Header carries the block number a block declares.
type Header[B support.Unsigned] struct {
	BlockNumber B
}

// Block is a header plus extrinsics applied in order.
type Block[A support.AccountID, B support.Unsigned, V support.Unsigned, C support.Content] struct {
	Header     Header[B]
	Extrinsics []Extrinsic[A, V, C]
}
