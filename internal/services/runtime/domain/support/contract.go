package support

import (
	"cmp"
	"maps"
	"slices"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
)

// AccountID constrains opaque, totally ordered account identities.
type AccountID interface {
	cmp.Ordered
}

// Content constrains claim content values.
type Content interface {
	cmp.Ordered
}

// Unsigned constrains the counter and quantity types: block numbers, nonces
// and balances.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// ErrUnknownCall is returned when a dispatcher receives a call value outside
// its closed set of variants.
var ErrUnknownCall = apperrors.New(apperrors.CodeUnknownCall, "unknown call")

// Dispatcher routes a caller-attributed call to the module operation it names.
type Dispatcher[Caller any, Call any] interface {
	Dispatch(caller Caller, call Call) error
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
