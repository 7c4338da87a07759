package proofofexistence

import "github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"

// Call is the closed set of dispatchable claim operations.
type Call[C support.Content] interface {
	claimCall(C)
}

// CreateClaim registers Claim under the caller.
type CreateClaim[C support.Content] struct {
	Claim C
}

// RevokeClaim removes the caller's Claim.
type RevokeClaim[C support.Content] struct {
	Claim C
}

func (CreateClaim[C]) claimCall(C) {}
func (RevokeClaim[C]) claimCall(C) {}

// Dispatch routes call to the matching claim operation.
func (p *Pallet[A, C]) Dispatch(caller A, call Call[C]) error {
	switch c := call.(type) {
	case CreateClaim[C]:
		return p.CreateClaim(caller, c.Claim)
	case RevokeClaim[C]:
		return p.RevokeClaim(caller, c.Claim)
	default:
		return support.ErrUnknownCall
	}
}
