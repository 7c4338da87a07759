package runtime

import (
	"fmt"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/balances"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/module"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/proofofexistence"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
)

// Wire names of the modules and their calls.
const (
	ModuleBalances         = "balances"
	ModuleProofOfExistence = "proof_of_existence"

	CallTransfer    = "transfer"
	CallCreateClaim = "create_claim"
	CallRevokeClaim = "revoke_claim"
)

type transferArgs[A support.AccountID, V support.Unsigned] struct {
	To     A `json:"to"`
	Amount V `json:"amount"`
}

type claimArgs[C support.Content] struct {
	Claim C `json:"claim"`
}

// NewCallRegistry returns a registry decoding every dispatchable call.
func NewCallRegistry[A support.AccountID, V support.Unsigned, C support.Content]() (*module.Registry[Call[A, V, C]], error) {
	registry := module.NewRegistry[Call[A, V, C]]()

	registrations := []struct {
		moduleName string
		callName   string
		decoder    module.Decoder[Call[A, V, C]]
	}{
		{
			moduleName: ModuleBalances,
			callName:   CallTransfer,
			decoder: module.TypedDecoder[transferArgs[A, V], Call[A, V, C]]{
				Build: func(args transferArgs[A, V]) (Call[A, V, C], error) {
					if isZero(args.To) {
						return nil, apperrors.New(apperrors.CodeInvalidArgument, "to is required")
					}
					return BalancesCall[A, V, C]{Call: balances.Transfer[A, V]{To: args.To, Amount: args.Amount}}, nil
				},
			},
		},
		{
			moduleName: ModuleProofOfExistence,
			callName:   CallCreateClaim,
			decoder: module.TypedDecoder[claimArgs[C], Call[A, V, C]]{
				Build: func(args claimArgs[C]) (Call[A, V, C], error) {
					if isZero(args.Claim) {
						return nil, apperrors.New(apperrors.CodeInvalidArgument, "claim is required")
					}
					return ProofOfExistenceCall[A, V, C]{Call: proofofexistence.CreateClaim[C]{Claim: args.Claim}}, nil
				},
			},
		},
		{
			moduleName: ModuleProofOfExistence,
			callName:   CallRevokeClaim,
			decoder: module.TypedDecoder[claimArgs[C], Call[A, V, C]]{
				Build: func(args claimArgs[C]) (Call[A, V, C], error) {
					if isZero(args.Claim) {
						return nil, apperrors.New(apperrors.CodeInvalidArgument, "claim is required")
					}
					return ProofOfExistenceCall[A, V, C]{Call: proofofexistence.RevokeClaim[C]{Claim: args.Claim}}, nil
				},
			},
		},
	}
	for _, reg := range registrations {
		if err := registry.Register(reg.moduleName, reg.callName, reg.decoder); err != nil {
			return nil, fmt.Errorf("register %s.%s: %w", reg.moduleName, reg.callName, err)
		}
	}
	return registry, nil
}

// EncodeCall returns the wire envelope of call.
func EncodeCall[A support.AccountID, V support.Unsigned, C support.Content](call Call[A, V, C]) (module.Envelope, error) {
	var (
		key  module.Key
		args any
	)
	switch c := call.(type) {
	case BalancesCall[A, V, C]:
		switch inner := c.Call.(type) {
		case balances.Transfer[A, V]:
			key = module.Key{Module: ModuleBalances, Call: CallTransfer}
			args = transferArgs[A, V]{To: inner.To, Amount: inner.Amount}
		}
	case ProofOfExistenceCall[A, V, C]:
		switch inner := c.Call.(type) {
		case proofofexistence.CreateClaim[C]:
			key = module.Key{Module: ModuleProofOfExistence, Call: CallCreateClaim}
			args = claimArgs[C]{Claim: inner.Claim}
		case proofofexistence.RevokeClaim[C]:
			key = module.Key{Module: ModuleProofOfExistence, Call: CallRevokeClaim}
			args = claimArgs[C]{Claim: inner.Claim}
		}
	}
	if args == nil {
		return module.Envelope{}, support.ErrUnknownCall
	}
	data, err := module.MarshalArgs(args)
	if err != nil {
		return module.Envelope{}, err
	}
	return module.Envelope{Module: key.Module, Call: key.Call, Args: data}, nil
}

// CallName returns the dotted wire name of call, or "unknown".
func CallName[A support.AccountID, V support.Unsigned, C support.Content](call Call[A, V, C]) string {
	env, err := EncodeCall(call)
	if err != nil {
		return "unknown"
	}
	return env.Module + "." + env.Call
}

// HeaderEnvelope is the wire form of a header.
type HeaderEnvelope[B support.Unsigned] struct {
	BlockNumber B `json:"block_number"`
}

// ExtrinsicEnvelope is the wire form of an extrinsic.
type ExtrinsicEnvelope[A support.AccountID] struct {
	Caller A               `json:"caller"`
	Call   module.Envelope `json:"call"`
}

// BlockEnvelope is the wire form of a block.
type BlockEnvelope[A support.AccountID, B support.Unsigned] struct {
	Header     HeaderEnvelope[B]      `json:"header"`
	Extrinsics []ExtrinsicEnvelope[A] `json:"extrinsics"`
}

// DecodeBlock resolves every call of env through registry.
func DecodeBlock[A support.AccountID, B support.Unsigned, V support.Unsigned, C support.Content](
	registry *module.Registry[Call[A, V, C]],
	env BlockEnvelope[A, B],
) (Block[A, B, V, C], error) {
	block := Block[A, B, V, C]{
		Header:     Header[B]{BlockNumber: env.Header.BlockNumber},
		Extrinsics: make([]Extrinsic[A, V, C], 0, len(env.Extrinsics)),
	}
	for i, ext := range env.Extrinsics {
		if isZero(ext.Caller) {
			return Block[A, B, V, C]{}, apperrors.WithMetadata(
				apperrors.CodeInvalidArgument,
				fmt.Sprintf("extrinsic %d: caller is required", i),
				map[string]string{"index": fmt.Sprint(i)},
			)
		}
		call, err := registry.Decode(ext.Call)
		if err != nil {
			return Block[A, B, V, C]{}, fmt.Errorf("extrinsic %d: %w", i, err)
		}
		block.Extrinsics = append(block.Extrinsics, Extrinsic[A, V, C]{Caller: ext.Caller, Call: call})
	}
	return block, nil
}

// EncodeBlock returns the wire form of block.
func EncodeBlock[A support.AccountID, B support.Unsigned, V support.Unsigned, C support.Content](block Block[A, B, V, C]) (BlockEnvelope[A, B], error) {
	env := BlockEnvelope[A, B]{
		Header:     HeaderEnvelope[B]{BlockNumber: block.Header.BlockNumber},
		Extrinsics: make([]ExtrinsicEnvelope[A], 0, len(block.Extrinsics)),
	}
	for i, ext := range block.Extrinsics {
		call, err := EncodeCall(ext.Call)
		if err != nil {
			return BlockEnvelope[A, B]{}, fmt.Errorf("extrinsic %d: %w", i, err)
		}
		env.Extrinsics = append(env.Extrinsics, ExtrinsicEnvelope[A]{Caller: ext.Caller, Call: call})
	}
	return env, nil
}

func isZero[T comparable](v T) bool {
	var zero T
	return v == zero
}
