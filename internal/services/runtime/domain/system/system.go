// Package system tracks chain-wide bookkeeping: the current block number and
// a per-account nonce counting executed extrinsics.
package system

import (
	"fmt"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
)

var (
	// ErrBlockNumberOverflow is returned when the block number cannot advance.
	ErrBlockNumberOverflow = apperrors.New(apperrors.CodeBlockNumberOverflow, "block number overflow")
	// ErrNonceOverflow is returned when an account nonce cannot advance.
	ErrNonceOverflow = apperrors.New(apperrors.CodeNonceOverflow, "nonce overflow")
)

// AccountNonce pairs an account with its nonce.
type AccountNonce[A support.AccountID, N support.Unsigned] struct {
	Account A `json:"account"`
	Nonce   N `json:"nonce"`
}

// Pallet holds the block number and the nonce map. Absent accounts read as
// nonce zero.
type Pallet[A support.AccountID, B support.Unsigned, N support.Unsigned] struct {
	blockNumber B
	nonces      map[A]N
}

// NewPallet returns a system pallet at block zero with no nonces.
func NewPallet[A support.AccountID, B support.Unsigned, N support.Unsigned]() *Pallet[A, B, N] {
	return &Pallet[A, B, N]{nonces: make(map[A]N)}
}

// BlockNumber returns the number of the last executed block.
func (p *Pallet[A, B, N]) BlockNumber() B {
	return p.blockNumber
}

// NextBlockNumber returns the number the next block must declare.
func (p *Pallet[A, B, N]) NextBlockNumber() (B, error) {
	next, ok := support.CheckedNext(p.blockNumber)
	if !ok {
		return 0, ErrBlockNumberOverflow
	}
	return next, nil
}

// AdvanceBlock increases the block number by one.
func (p *Pallet[A, B, N]) AdvanceBlock() error {
	next, err := p.NextBlockNumber()
	if err != nil {
		return err
	}
	p.blockNumber = next
	return nil
}

// Nonce returns the nonce of who, zero when the account was never seen.
func (p *Pallet[A, B, N]) Nonce(who A) N {
	return p.nonces[who]
}

// IncrementNonce increases the nonce of who by one. The nonce is left
// unchanged when it is already at its maximum.
func (p *Pallet[A, B, N]) IncrementNonce(who A) error {
	next, ok := support.CheckedNext(p.nonces[who])
	if !ok {
		return nonceOverflow(who)
	}
	p.nonces[who] = next
	return nil
}

// NonceHeadroom returns ErrNonceOverflow unless who can absorb n more
// increments.
func (p *Pallet[A, B, N]) NonceHeadroom(who A, n uint64) error {
	if !support.Headroom(p.nonces[who], n) {
		return nonceOverflow(who)
	}
	return nil
}

// SetNonce overwrites the nonce of who. Used by genesis and tests.
func (p *Pallet[A, B, N]) SetNonce(who A, nonce N) {
	p.nonces[who] = nonce
}

// SetBlockNumber overwrites the block number. Used by genesis and tests.
func (p *Pallet[A, B, N]) SetBlockNumber(number B) {
	p.blockNumber = number
}

// Nonces returns every recorded nonce ordered by account.
func (p *Pallet[A, B, N]) Nonces() []AccountNonce[A, N] {
	keys := support.SortedKeys(p.nonces)
	out := make([]AccountNonce[A, N], 0, len(keys))
	for _, who := range keys {
		out = append(out, AccountNonce[A, N]{Account: who, Nonce: p.nonces[who]})
	}
	return out
}

func nonceOverflow[A support.AccountID](who A) error {
	return apperrors.WithMetadata(
		apperrors.CodeNonceOverflow,
		fmt.Sprintf("Nonce overflow for %v", who),
		map[string]string{"account": fmt.Sprint(who)},
	)
}
