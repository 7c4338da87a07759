package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/services/runtime/core/filter"
	"github.com/louisbranch/runtimekit/internal/services/runtime/storage"
)

// AppendAuditEvent records an operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(evt.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(evt.AttributesJSON) == 0 && len(evt.Attributes) > 0 {
		payload, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal audit attributes: %w", err)
		}
		evt.AttributesJSON = payload
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_events (
	timestamp, event_name, severity, block_number, extrinsic_index, caller, call_name,
	error_code, message, trace_id, span_id, attributes_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		toMillis(evt.Timestamp),
		strings.TrimSpace(evt.EventName),
		strings.TrimSpace(evt.Severity),
		toNullInt64(evt.BlockNumber),
		toNullInt64(evt.ExtrinsicIndex),
		toNullString(evt.Caller),
		toNullString(evt.Call),
		toNullString(evt.ErrorCode),
		toNullString(evt.Message),
		toNullString(evt.TraceID),
		toNullString(evt.SpanID),
		evt.AttributesJSON,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns a page of audit events matching query.Filter,
// ordered by insertion.
func (s *Store) ListAuditEvents(ctx context.Context, query storage.AuditEventQuery) (storage.AuditEventPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.AuditEventPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AuditEventPage{}, fmt.Errorf("storage is not configured")
	}
	if query.PageSize <= 0 {
		return storage.AuditEventPage{}, apperrors.New(apperrors.CodeInvalidArgument, "page size must be greater than zero")
	}

	cond, err := filter.ParseAuditFilter(query.Filter)
	if err != nil {
		return storage.AuditEventPage{}, err
	}

	var (
		whereParts []string
		args       []any
	)
	if cond.Clause != "" {
		whereParts = append(whereParts, cond.Clause)
		args = append(args, cond.Params...)
	}
	if pageToken := strings.TrimSpace(query.PageToken); pageToken != "" {
		tokenValue, parseErr := strconv.ParseInt(pageToken, 10, 64)
		if parseErr != nil || tokenValue < 0 {
			return storage.AuditEventPage{}, apperrors.New(apperrors.CodeInvalidArgument, "invalid page token")
		}
		whereParts = append(whereParts, "id > ?")
		args = append(args, tokenValue)
	}
	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}
	args = append(args, query.PageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, fmt.Sprintf(`
SELECT id, timestamp, event_name, severity, block_number, extrinsic_index, caller, call_name,
	error_code, message, trace_id, span_id, attributes_json
FROM audit_events
%s
ORDER BY id
LIMIT ?
`, where), args...)
	if err != nil {
		return storage.AuditEventPage{}, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	page := storage.AuditEventPage{Events: make([]storage.AuditEvent, 0, query.PageSize)}
	for rows.Next() {
		evt, err := scanAuditEvent(rows)
		if err != nil {
			return storage.AuditEventPage{}, err
		}
		page.Events = append(page.Events, evt)
	}
	if err := rows.Err(); err != nil {
		return storage.AuditEventPage{}, fmt.Errorf("iterate audit event rows: %w", err)
	}
	if len(page.Events) > query.PageSize {
		page.NextPageToken = strconv.FormatInt(page.Events[query.PageSize-1].ID, 10)
		page.Events = page.Events[:query.PageSize]
	}
	return page, nil
}

func scanAuditEvent(rows *sql.Rows) (storage.AuditEvent, error) {
	var (
		evt            storage.AuditEvent
		timestamp      int64
		blockNumber    sql.NullInt64
		extrinsicIndex sql.NullInt64
		caller         sql.NullString
		callName       sql.NullString
		errorCode      sql.NullString
		message        sql.NullString
		traceID        sql.NullString
		spanID         sql.NullString
	)
	if err := rows.Scan(
		&evt.ID, &timestamp, &evt.EventName, &evt.Severity, &blockNumber, &extrinsicIndex,
		&caller, &callName, &errorCode, &message, &traceID, &spanID, &evt.AttributesJSON,
	); err != nil {
		return storage.AuditEvent{}, fmt.Errorf("scan audit event row: %w", err)
	}
	evt.Timestamp = fromMillis(timestamp)
	if blockNumber.Valid {
		value := uint64(blockNumber.Int64)
		evt.BlockNumber = &value
	}
	if extrinsicIndex.Valid {
		value := int(extrinsicIndex.Int64)
		evt.ExtrinsicIndex = &value
	}
	evt.Caller = caller.String
	evt.Call = callName.String
	evt.ErrorCode = errorCode.String
	evt.Message = message.String
	evt.TraceID = traceID.String
	evt.SpanID = spanID.String
	if len(evt.AttributesJSON) > 0 {
		if err := json.Unmarshal(evt.AttributesJSON, &evt.Attributes); err != nil {
			return storage.AuditEvent{}, fmt.Errorf("decode audit attributes: %w", err)
		}
	}
	return evt, nil
}
