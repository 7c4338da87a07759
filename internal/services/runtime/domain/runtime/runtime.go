package runtime

import (
	"fmt"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/balances"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/proofofexistence"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/system"
)

// ErrGenesisAfterStart is returned when genesis is applied once blocks ran.
var ErrGenesisAfterStart = apperrors.New(apperrors.CodeInvalidArgument, "genesis can only be applied before block 1")

// Runtime aggregates the modules bound to one set of concrete types.
type Runtime[A support.AccountID, B support.Unsigned, N support.Unsigned, V support.Unsigned, C support.Content] struct {
	system           *system.Pallet[A, B, N]
	balances         *balances.Pallet[A, V]
	proofOfExistence *proofofexistence.Pallet[A, C]
	sink             FailureSink[A, B]
}

var _ support.Dispatcher[string, Call[string, uint64, string]] = (*Runtime[string, uint32, uint32, uint64, string])(nil)

// New returns an empty runtime at block zero. Per-extrinsic failures are
// reported to sink; a nil sink discards them.
func New[A support.AccountID, B support.Unsigned, N support.Unsigned, V support.Unsigned, C support.Content](sink FailureSink[A, B]) *Runtime[A, B, N, V, C] {
	if sink == nil {
		sink = Sinks[A, B]{}
	}
	return &Runtime[A, B, N, V, C]{
		system:           system.NewPallet[A, B, N](),
		balances:         balances.NewPallet[A, V](),
		proofOfExistence: proofofexistence.NewPallet[A, C](),
		sink:             sink,
	}
}

// Dispatch routes call to the module it wraps.
func (r *Runtime[A, B, N, V, C]) Dispatch(caller A, call Call[A, V, C]) error {
	switch c := call.(type) {
	case BalancesCall[A, V, C]:
		return r.balances.Dispatch(caller, c.Call)
	case ProofOfExistenceCall[A, V, C]:
		return r.proofOfExistence.Dispatch(caller, c.Call)
	default:
		return support.ErrUnknownCall
	}
}

// BlockNumber returns the number of the last executed block.
func (r *Runtime[A, B, N, V, C]) BlockNumber() B {
	return r.system.BlockNumber()
}

// Nonce returns the nonce of who.
func (r *Runtime[A, B, N, V, C]) Nonce(who A) N {
	return r.system.Nonce(who)
}

// Balance returns the balance of who.
func (r *Runtime[A, B, N, V, C]) Balance(who A) V {
	return r.balances.Balance(who)
}

// GetClaim returns the owner of claim.
func (r *Runtime[A, B, N, V, C]) GetClaim(claim C) (A, bool) {
	return r.proofOfExistence.GetClaim(claim)
}

// TotalIssuance sums every balance, reporting false on overflow.
func (r *Runtime[A, B, N, V, C]) TotalIssuance() (V, bool) {
	return r.balances.TotalIssuance()
}

// SetBalance overwrites a balance outside of dispatch.
func (r *Runtime[A, B, N, V, C]) SetBalance(who A, amount V) {
	r.balances.SetBalance(who, amount)
}

// Genesis is the initial state seeded before block 1.
type Genesis[A support.AccountID, V support.Unsigned] struct {
	Balances map[A]V
}

// ApplyGenesis seeds g. It fails once any block has executed.
func (r *Runtime[A, B, N, V, C]) ApplyGenesis(g Genesis[A, V]) error {
	if number := r.system.BlockNumber(); number != 0 {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidArgument,
			ErrGenesisAfterStart.Message,
			map[string]string{"block_number": fmt.Sprint(number)},
		)
	}
	for _, who := range support.SortedKeys(g.Balances) {
		r.balances.SetBalance(who, g.Balances[who])
	}
	return nil
}

// State is an ordered view of the whole runtime.
type State[A support.AccountID, B support.Unsigned, N support.Unsigned, V support.Unsigned, C support.Content] struct {
	BlockNumber B                              `json:"block_number"`
	Nonces      []system.AccountNonce[A, N]    `json:"nonces"`
	Balances    []balances.Account[A, V]       `json:"balances"`
	Claims      []proofofexistence.Claim[A, C] `json:"claims"`
}

// Snapshot returns the current state with every listing ordered by key, so
// equal states always render identically.
func (r *Runtime[A, B, N, V, C]) Snapshot() State[A, B, N, V, C] {
	return State[A, B, N, V, C]{
		BlockNumber: r.system.BlockNumber(),
		Nonces:      r.system.Nonces(),
		Balances:    r.balances.Accounts(),
		Claims:      r.proofOfExistence.Claims(),
	}
}
