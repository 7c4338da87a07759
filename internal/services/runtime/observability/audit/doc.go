// Package audit contains durable operational audit writes for the runtime
// service: executed blocks, rejected blocks and failed extrinsics.
//
// For distributed tracing, this service still uses package `internal/platform/otel`.
package audit
