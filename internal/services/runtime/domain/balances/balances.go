// Package balances keeps the account to balance ledger and its checked
// transfer.
package balances

import (
	"fmt"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
)

var (
	// ErrInsufficientBalance is returned when the caller cannot cover a transfer.
	ErrInsufficientBalance = apperrors.New(apperrors.CodeInsufficientBalance, "Insufficient balance")
	// ErrBalanceOverflow is returned when crediting the receiver would wrap.
	ErrBalanceOverflow = apperrors.New(apperrors.CodeBalanceOverflow, "Overflow when adding to balance")
)

// Account pairs an account with its balance.
type Account[A support.AccountID, V support.Unsigned] struct {
	Account A `json:"account"`
	Balance V `json:"balance"`
}

// Pallet holds balances keyed by account. Absent accounts read as zero.
type Pallet[A support.AccountID, V support.Unsigned] struct {
	balances map[A]V
}

// NewPallet returns an empty ledger.
func NewPallet[A support.AccountID, V support.Unsigned]() *Pallet[A, V] {
	return &Pallet[A, V]{balances: make(map[A]V)}
}

// SetBalance overwrites the balance of who. It is not dispatchable.
func (p *Pallet[A, V]) SetBalance(who A, amount V) {
	p.balances[who] = amount
}

// Balance returns the balance of who, zero when unknown.
func (p *Pallet[A, V]) Balance(who A) V {
	return p.balances[who]
}

// Transfer moves amount from caller to to. Both checks run before either
// balance is written.
//
// A transfer to oneself is validated against the caller's balance and then
// leaves the ledger unchanged.
func (p *Pallet[A, V]) Transfer(caller, to A, amount V) error {
	callerBalance := p.balances[caller]
	newCallerBalance, ok := support.CheckedSub(callerBalance, amount)
	if !ok {
		return apperrors.WithMetadata(
			apperrors.CodeInsufficientBalance,
			ErrInsufficientBalance.Message,
			map[string]string{
				"account": fmt.Sprint(caller),
				"balance": fmt.Sprint(callerBalance),
				"amount":  fmt.Sprint(amount),
			},
		)
	}
	if caller == to {
		return nil
	}

	newToBalance, ok := support.CheckedAdd(p.balances[to], amount)
	if !ok {
		return apperrors.WithMetadata(
			apperrors.CodeBalanceOverflow,
			ErrBalanceOverflow.Message,
			map[string]string{
				"account": fmt.Sprint(to),
				"amount":  fmt.Sprint(amount),
			},
		)
	}

	p.balances[caller] = newCallerBalance
	p.balances[to] = newToBalance
	return nil
}

// Accounts returns every recorded balance ordered by account.
func (p *Pallet[A, V]) Accounts() []Account[A, V] {
	keys := support.SortedKeys(p.balances)
	out := make([]Account[A, V], 0, len(keys))
	for _, who := range keys {
		out = append(out, Account[A, V]{Account: who, Balance: p.balances[who]})
	}
	return out
}

// TotalIssuance sums every balance. It reports false when the sum does not
// fit in V.
func (p *Pallet[A, V]) TotalIssuance() (V, bool) {
	var total V
	for _, amount := range p.balances {
		next, ok := support.CheckedAdd(total, amount)
		if !ok {
			return 0, false
		}
		total = next
	}
	return total, true
}
