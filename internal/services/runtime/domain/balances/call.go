package balances

import "github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"

// Call is the closed set of dispatchable balances operations.
type Call[A support.AccountID, V support.Unsigned] interface {
	balancesCall(A, V)
}

// Transfer moves Amount from the caller to To.
type Transfer[A support.AccountID, V support.Unsigned] struct {
	To     A
	Amount V
}

func (Transfer[A, V]) balancesCall(A, V) {}

// Dispatch routes call to the matching ledger operation.
func (p *Pallet[A, V]) Dispatch(caller A, call Call[A, V]) error {
	switch c := call.(type) {
	case Transfer[A, V]:
		return p.Transfer(caller, c.To, c.Amount)
	default:
		return support.ErrUnknownCall
	}
}
