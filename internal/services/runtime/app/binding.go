package app

import (
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/balances"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/module"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/proofofexistence"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/runtime"
)

// Concrete types the service binds the runtime to.
type (
	AccountID   = string
	BlockNumber = uint32
	Nonce       = uint32
	Balance     = uint64
	Claim       = string
)

type (
	Runtime          = runtime.Runtime[AccountID, BlockNumber, Nonce, Balance, Claim]
	Call             = runtime.Call[AccountID, Balance, Claim]
	Extrinsic        = runtime.Extrinsic[AccountID, Balance, Claim]
	Header           = runtime.Header[BlockNumber]
	Block            = runtime.Block[AccountID, BlockNumber, Balance, Claim]
	BlockEnvelope    = runtime.BlockEnvelope[AccountID, BlockNumber]
	Genesis          = runtime.Genesis[AccountID, Balance]
	State            = runtime.State[AccountID, BlockNumber, Nonce, Balance, Claim]
	ExtrinsicFailure = runtime.ExtrinsicFailure[AccountID, BlockNumber]
	FailureSink      = runtime.FailureSink[AccountID, BlockNumber]
	FailureRecorder  = runtime.FailureRecorder[AccountID, BlockNumber]
	CallRegistry     = module.Registry[Call]
)

// NewRuntime returns an empty runtime reporting failures to sink.
func NewRuntime(sink FailureSink) *Runtime {
	return runtime.New[AccountID, BlockNumber, Nonce, Balance, Claim](sink)
}

// NewCallRegistry returns the wire decoder for Call values.
func NewCallRegistry() (*CallRegistry, error) {
	return runtime.NewCallRegistry[AccountID, Balance, Claim]()
}

// Transfer builds a balances transfer call.
func Transfer(to AccountID, amount Balance) Call {
	return runtime.BalancesCall[AccountID, Balance, Claim]{
		Call: balances.Transfer[AccountID, Balance]{To: to, Amount: amount},
	}
}

// CreateClaim builds a claim registration call.
func CreateClaim(claim Claim) Call {
	return runtime.ProofOfExistenceCall[AccountID, Balance, Claim]{
		Call: proofofexistence.CreateClaim[Claim]{Claim: claim},
	}
}

// RevokeClaim builds a claim revocation call.
func RevokeClaim(claim Claim) Call {
	return runtime.ProofOfExistenceCall[AccountID, Balance, Claim]{
		Call: proofofexistence.RevokeClaim[Claim]{Claim: claim},
	}
}

// NewBlock builds a block declaring number.
func NewBlock(number BlockNumber, extrinsics ...Extrinsic) Block {
	return Block{Header: Header{BlockNumber: number}, Extrinsics: extrinsics}
}
