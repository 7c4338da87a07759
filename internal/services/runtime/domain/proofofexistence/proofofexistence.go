// Package proofofexistence registers claims: content values owned by exactly
// one account until the owner revokes them.
package proofofexistence

import (
	"fmt"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
)

var (
	// ErrClaimAlreadyExists is returned when content is already claimed.
	ErrClaimAlreadyExists = apperrors.New(apperrors.CodeClaimAlreadyExists, "Claim already exists")
	// ErrClaimNotFound is returned when revoking unclaimed content.
	ErrClaimNotFound = apperrors.New(apperrors.CodeClaimNotFound, "Claim does not exist")
	// ErrNotClaimOwner is returned when a non-owner revokes a claim.
	ErrNotClaimOwner = apperrors.New(apperrors.CodeNotClaimOwner, "Caller is not the owner of claim")
)

// Claim pairs claimed content with its owner.
type Claim[A support.AccountID, C support.Content] struct {
	Content C `json:"claim"`
	Owner   A `json:"owner"`
}

// Pallet maps claimed content to its owner.
type Pallet[A support.AccountID, C support.Content] struct {
	claims map[C]A
}

// NewPallet returns a pallet with no claims.
func NewPallet[A support.AccountID, C support.Content]() *Pallet[A, C] {
	return &Pallet[A, C]{claims: make(map[C]A)}
}

// GetClaim returns the owner of claim.
func (p *Pallet[A, C]) GetClaim(claim C) (A, bool) {
	owner, ok := p.claims[claim]
	return owner, ok
}

// CreateClaim registers claim under caller.
func (p *Pallet[A, C]) CreateClaim(caller A, claim C) error {
	if owner, ok := p.claims[claim]; ok {
		return claimError(apperrors.CodeClaimAlreadyExists, ErrClaimAlreadyExists.Message, claim, map[string]string{
			"owner": fmt.Sprint(owner),
		})
	}
	p.claims[claim] = caller
	return nil
}

// RevokeClaim removes claim when caller owns it.
func (p *Pallet[A, C]) RevokeClaim(caller A, claim C) error {
	owner, ok := p.claims[claim]
	if !ok {
		return claimError(apperrors.CodeClaimNotFound, ErrClaimNotFound.Message, claim, nil)
	}
	if owner != caller {
		return claimError(apperrors.CodeNotClaimOwner, ErrNotClaimOwner.Message, claim, map[string]string{
			"caller": fmt.Sprint(caller),
		})
	}
	delete(p.claims, claim)
	return nil
}

// Claims returns every claim ordered by content.
func (p *Pallet[A, C]) Claims() []Claim[A, C] {
	keys := support.SortedKeys(p.claims)
	out := make([]Claim[A, C], 0, len(keys))
	for _, content := range keys {
		out = append(out, Claim[A, C]{Content: content, Owner: p.claims[content]})
	}
	return out
}

func claimError[C support.Content](code apperrors.Code, message string, claim C, extra map[string]string) error {
	metadata := map[string]string{"claim": fmt.Sprint(claim)}
	for k, v := range extra {
		metadata[k] = v
	}
	return apperrors.WithMetadata(code, message, metadata)
}
