package module

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
)

var (
	// ErrModuleRequired indicates a missing module name.
	ErrModuleRequired = apperrors.New(apperrors.CodeInvalidArgument, "module is required")
	// ErrCallRequired indicates a missing call name.
	ErrCallRequired = apperrors.New(apperrors.CodeInvalidArgument, "call is required")
	// ErrDecoderRequired indicates a registration without a decoder.
	ErrDecoderRequired = errors.New("call decoder is required")
	// ErrCallAlreadyRegistered indicates a duplicate registration.
	ErrCallAlreadyRegistered = errors.New("call already registered")
	// ErrRegistryRequired indicates a missing registry.
	ErrRegistryRequired = errors.New("registry is required")
	// ErrCallNotRegistered indicates an envelope naming no registered call.
	ErrCallNotRegistered = apperrors.New(apperrors.CodeUnknownCall, "call is not registered")
)

// Key identifies one call of one module.
type Key struct {
	Module string
	Call   string
}

// String returns the dotted wire name, for example "balances.transfer".
func (k Key) String() string {
	return k.Module + "." + k.Call
}

// ParseKey splits a dotted wire name into its key.
func ParseKey(name string) (Key, error) {
	moduleName, callName, _ := strings.Cut(strings.TrimSpace(name), ".")
	return normalizeKey(moduleName, callName)
}

func normalizeKey(moduleName, callName string) (Key, error) {
	moduleName = strings.TrimSpace(moduleName)
	if moduleName == "" {
		return Key{}, ErrModuleRequired
	}
	callName = strings.TrimSpace(callName)
	if callName == "" {
		return Key{}, ErrCallRequired
	}
	return Key{Module: moduleName, Call: callName}, nil
}

// Envelope is the wire form of a call.
type Envelope struct {
	Module string          `json:"module"`
	Call   string          `json:"call"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Key returns the envelope's normalized key.
func (e Envelope) Key() (Key, error) {
	return normalizeKey(e.Module, e.Call)
}

// Decoder builds a typed call from its JSON arguments.
type Decoder[T any] interface {
	Decode(args json.RawMessage) (T, error)
}

// Registry holds the decoders for every known call.
type Registry[T any] struct {
	mu       sync.RWMutex
	decoders map[Key]Decoder[T]
}

// NewRegistry creates an empty call registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{decoders: make(map[Key]Decoder[T])}
}

// Register adds the decoder for moduleName.callName.
func (r *Registry[T]) Register(moduleName, callName string, decoder Decoder[T]) error {
	if r == nil {
		return ErrRegistryRequired
	}
	if decoder == nil {
		return ErrDecoderRequired
	}
	key, err := normalizeKey(moduleName, callName)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.decoders == nil {
		r.decoders = make(map[Key]Decoder[T])
	}
	if _, exists := r.decoders[key]; exists {
		return fmt.Errorf("%w: %s", ErrCallAlreadyRegistered, key)
	}
	r.decoders[key] = decoder
	return nil
}

// Decode resolves env to a typed call.
func (r *Registry[T]) Decode(env Envelope) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrRegistryRequired
	}
	key, err := env.Key()
	if err != nil {
		return zero, err
	}
	r.mu.RLock()
	decoder := r.decoders[key]
	r.mu.RUnlock()
	if decoder == nil {
		return zero, apperrors.WithMetadata(
			apperrors.CodeUnknownCall,
			fmt.Sprintf("%s: %s", ErrCallNotRegistered.Message, key),
			map[string]string{"call": key.String()},
		)
	}
	call, err := decoder.Decode(env.Args)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", key, err)
	}
	return call, nil
}

// Keys returns every registered key ordered by module then call.
func (r *Registry[T]) Keys() []Key {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]Key, 0, len(r.decoders))
	for key := range r.decoders {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}
