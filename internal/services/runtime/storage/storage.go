// Package storage defines the persistence contracts of the runtime service.
//
// Runtime state itself lives in memory; the only durable record is the
// operational audit log of executed and rejected blocks and failed
// extrinsics.
package storage

import (
	"context"
	"time"
)

// AuditEvent is one append-only operational record.
type AuditEvent struct {
	ID        int64
	Timestamp time.Time
	EventName string
	Severity  string

	BlockNumber    *uint64
	ExtrinsicIndex *int
	Caller         string
	Call           string
	ErrorCode      string
	Message        string

	TraceID string
	SpanID  string

	Attributes     map[string]any
	AttributesJSON []byte
}

// AuditEventQuery selects a page of audit events.
type AuditEventQuery struct {
	// Filter is an AIP-160 expression over the audit fields.
	Filter    string
	PageSize  int
	PageToken string
}

// AuditEventPage is a paged set of audit events ordered by ID.
type AuditEventPage struct {
	Events        []AuditEvent
	NextPageToken string
}

// AuditEventStore persists audit events.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
}

// AuditEventReader lists persisted audit events.
type AuditEventReader interface {
	ListAuditEvents(ctx context.Context, query AuditEventQuery) (AuditEventPage, error)
}
