package primary

import (
	"context"
	"encoding/json"
	"time"
)

// AuditService defines the primary port for reading the audit trail.
type AuditService interface {
	// ListEvents lists audit events, newest first.
	ListEvents(ctx context.Context, filters AuditFilters) ([]*AuditEvent, error)
}

// AuditFilters contains filter options for listing audit events.
type AuditFilters struct {
	Table string
	RowID int64
	Actor string
	Limit int
}

// AuditEvent represents a stored audit event at the port boundary.
type AuditEvent struct {
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
