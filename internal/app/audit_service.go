package app

import (
	"context"

	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/ports/secondary"
)

// AuditServiceImpl implements the AuditService interface.
type AuditServiceImpl struct {
	reader secondary.AuditLogReader
}

// NewAuditService creates a new AuditService.
func NewAuditService(reader secondary.AuditLogReader) *AuditServiceImpl {
	return &AuditServiceImpl{reader: reader}
}

var _ primary.AuditService = (*AuditServiceImpl)(nil)

// ListEvents lists audit events, newest first.
func (s *AuditServiceImpl) ListEvents(ctx context.Context, filters primary.AuditFilters) ([]*primary.AuditEvent, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	records, err := s.reader.List(ctx, secondary.AuditLogFilters{
		Table: filters.Table,
		RowID: filters.RowID,
		Actor: filters.Actor,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	events := make([]*primary.AuditEvent, len(records))
	for i, r := range records {
		events[i] = &primary.AuditEvent{
			ID:         r.ID,
			EventID:    r.EventID,
			Actor:      r.Actor,
			Action:     r.Action,
			Table:      r.Table,
			RowID:      r.RowID,
			Before:     r.Before,
			After:      r.After,
			IP:         r.IP,
			UserAgent:  r.UserAgent,
			RecordedAt: r.RecordedAt,
		}
	}
	return events, nil
}
