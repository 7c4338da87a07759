// Package errors provides structured, code-carrying domain errors.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Balance errors
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeBalanceOverflow     Code = "BALANCE_OVERFLOW"

	// Claim errors
	CodeClaimAlreadyExists Code = "CLAIM_ALREADY_EXISTS"
	CodeClaimNotFound      Code = "CLAIM_NOT_FOUND"
	CodeNotClaimOwner      Code = "NOT_CLAIM_OWNER"

	// Block and counter errors
	CodeBlockNumberMismatch Code = "BLOCK_NUMBER_MISMATCH"
	CodeBlockNumberOverflow Code = "BLOCK_NUMBER_OVERFLOW"
	CodeNonceOverflow       Code = "NONCE_OVERFLOW"

	// Dispatch errors
	CodeUnknownCall Code = "UNKNOWN_CALL"

	// Transport errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeUnknownCall,
		CodeInvalidArgument:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeInsufficientBalance,
		CodeNotClaimOwner,
		CodeBlockNumberMismatch:
		return codes.FailedPrecondition

	// OutOfRange - counter or balance arithmetic exhausted
	case CodeBalanceOverflow,
		CodeBlockNumberOverflow,
		CodeNonceOverflow:
		return codes.OutOfRange

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeClaimNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeClaimAlreadyExists:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes through their gRPC class.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition, codes.AlreadyExists:
		return http.StatusConflict
	case codes.OutOfRange:
		return http.StatusUnprocessableEntity
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
