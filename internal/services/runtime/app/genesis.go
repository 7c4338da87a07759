package app

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
)

// ParseGenesis parses a comma separated account=balance list, for example
// "alice=100,bob=50". An empty string yields an empty genesis.
func ParseGenesis(value string) (Genesis, error) {
	genesis := Genesis{Balances: make(map[AccountID]Balance)}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		account, amount, ok := strings.Cut(entry, "=")
		account = strings.TrimSpace(account)
		if !ok || account == "" {
			return Genesis{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("genesis entry %q must be account=balance", entry))
		}
		if _, exists := genesis.Balances[account]; exists {
			return Genesis{}, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("genesis account %q listed twice", account))
		}
		balance, err := strconv.ParseUint(strings.TrimSpace(amount), 10, 64)
		if err != nil {
			return Genesis{}, apperrors.Wrap(apperrors.CodeInvalidArgument, fmt.Sprintf("genesis balance for %q: %v", account, err), err)
		}
		genesis.Balances[account] = balance
	}
	return genesis, nil
}
