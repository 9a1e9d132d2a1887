package secondary

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/atelier/internal/core/effects"
)

// AuditSink receives committed audit events. Implementations may fail; the
// dispatcher logs and counts failures but never reports them to the caller
// of the audited operation.
type AuditSink interface {
	Record(ctx context.Context, event effects.AuditEffect) error
}

// AuditLogReader reads back the persisted audit trail.
type AuditLogReader interface {
	List(ctx context.Context, filters AuditLogFilters) ([]*AuditLogRecord, error)
}

// AuditLogRecord is one stored audit event.
type AuditLogRecord struct {
	ID         int64
	EventID    string
	Actor      string
	Action     string
	Table      string
	RowID      int64
	Before     json.RawMessage
	After      json.RawMessage
	IP         string
	UserAgent  string
	RecordedAt time.Time
}

// AuditLogFilters contains filter options for querying the audit trail.
type AuditLogFilters struct {
	Table string
	RowID int64
	Actor string
	Limit int
}
