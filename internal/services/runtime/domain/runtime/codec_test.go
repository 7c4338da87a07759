package runtime

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/module"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/support"
)

func newTestRegistry(t *testing.T) *module.Registry[testCall] {
	t.Helper()
	registry, err := NewCallRegistry[string, uint64, string]()
	if err != nil {
		t.Fatalf("new call registry: %v", err)
	}
	return registry
}

func TestNewCallRegistryKeys(t *testing.T) {
	keys := newTestRegistry(t).Keys()
	want := []string{"balances.transfer", "proof_of_existence.create_claim", "proof_of_existence.revoke_claim"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i].String() != want[i] {
			t.Fatalf("keys[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestDecodeCalls(t *testing.T) {
	registry := newTestRegistry(t)

	tests := []struct {
		name string
		env  module.Envelope
		want testCall
	}{
		{
			name: "transfer",
			env:  module.Envelope{Module: "balances", Call: "transfer", Args: json.RawMessage(`{"to":"bob","amount":18446744073709551615}`)},
			want: transfer("bob", support.Max[uint64]()),
		},
		{
			name: "create claim",
			env:  module.Envelope{Module: "proof_of_existence", Call: "create_claim", Args: json.RawMessage(`{"claim":"doc1"}`)},
			want: createClaim("doc1"),
		},
		{
			name: "revoke claim",
			env:  module.Envelope{Module: "proof_of_existence", Call: "revoke_claim", Args: json.RawMessage(`{"claim":"doc1"}`)},
			want: revokeClaim("doc1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Decode(tt.env)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("decoded = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeCallRejectsInvalidArguments(t *testing.T) {
	registry := newTestRegistry(t)

	tests := []struct {
		name string
		env  module.Envelope
		code apperrors.Code
	}{
		{name: "missing recipient", env: module.Envelope{Module: "balances", Call: "transfer", Args: json.RawMessage(`{"amount":1}`)}, code: apperrors.CodeInvalidArgument},
		{name: "negative amount", env: module.Envelope{Module: "balances", Call: "transfer", Args: json.RawMessage(`{"to":"bob","amount":-1}`)}, code: apperrors.CodeInvalidArgument},
		{name: "missing claim", env: module.Envelope{Module: "proof_of_existence", Call: "create_claim"}, code: apperrors.CodeInvalidArgument},
		{name: "unknown call", env: module.Envelope{Module: "balances", Call: "mint"}, code: apperrors.CodeUnknownCall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Decode(tt.env)
			if got := apperrors.CodeOf(err); got != tt.code {
				t.Fatalf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestEncodeCall(t *testing.T) {
	env, err := EncodeCall(transfer("bob", 20))
	if err != nil {
		t.Fatalf("encode call: %v", err)
	}
	if env.Module != "balances" || env.Call != "transfer" {
		t.Fatalf("envelope = %+v", env)
	}
	if string(env.Args) != `{"to":"bob","amount":20}` {
		t.Fatalf("args = %s", env.Args)
	}

	if _, err := EncodeCall[string, uint64, string](nil); !errors.Is(err, support.ErrUnknownCall) {
		t.Fatalf("expected unknown call, got %v", err)
	}
	if got := CallName[string, uint64, string](nil); got != "unknown" {
		t.Fatalf("CallName(nil) = %q", got)
	}
}

func TestBlockEnvelopeRoundTrip(t *testing.T) {
	registry := newTestRegistry(t)
	original := block(3,
		ext("alice", transfer("bob", 20)),
		ext("bob", createClaim("doc1")),
		ext("bob", revokeClaim("doc1")),
	)

	env, err := EncodeBlock(original)
	if err != nil {
		t.Fatalf("encode block: %v", err)
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal block: %v", err)
	}
	var decodedEnv BlockEnvelope[string, uint32]
	if err := json.Unmarshal(data, &decodedEnv); err != nil {
		t.Fatalf("unmarshal block: %v", err)
	}
	decoded, err := DecodeBlock(registry, decodedEnv)
	if err != nil {
		t.Fatalf("decode block: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Fatalf("decoded = %#v, want %#v", decoded, original)
	}
}

func TestDecodeBlockErrors(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := DecodeBlock(registry, BlockEnvelope[string, uint32]{
		Header:     HeaderEnvelope[uint32]{BlockNumber: 1},
		Extrinsics: []ExtrinsicEnvelope[string]{{Call: module.Envelope{Module: "balances", Call: "transfer"}}},
	})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("missing caller error = %v", err)
	}

	_, err = DecodeBlock(registry, BlockEnvelope[string, uint32]{
		Header: HeaderEnvelope[uint32]{BlockNumber: 1},
		Extrinsics: []ExtrinsicEnvelope[string]{
			{Caller: "alice", Call: module.Envelope{Module: "balances", Call: "burn"}},
		},
	})
	if !errors.Is(err, module.ErrCallNotRegistered) {
		t.Fatalf("expected call not registered, got %v", err)
	}
}
