package module

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
)

// TypedDecoder decodes JSON arguments into P and converts them to T.
// Call authors provide the typed conversion; the wrapper handles strict
// JSON decoding so unknown fields are rejected.
type TypedDecoder[P any, T any] struct {
	// Build converts the decoded arguments into a call.
	Build func(P) (T, error)
}

// Decode satisfies Decoder.
func (d TypedDecoder[P, T]) Decode(args json.RawMessage) (T, error) {
	var zero T
	if d.Build == nil {
		return zero, fmt.Errorf("typed decoder: Build function is nil")
	}
	var payload P
	if len(bytes.TrimSpace(args)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(args))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&payload); err != nil {
			return zero, apperrors.Wrap(apperrors.CodeInvalidArgument, fmt.Sprintf("invalid call arguments: %v", err), err)
		}
	}
	return d.Build(payload)
}

// MarshalArgs encodes call arguments for an Envelope.
func MarshalArgs(args any) (json.RawMessage, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal call arguments: %w", err)
	}
	return data, nil
}
