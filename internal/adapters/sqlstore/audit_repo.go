package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/ports/secondary"
)

// AuditRepository stores audit events in the audit_log table. It is both the
// default audit sink and the reader behind `atelier audit list`.
type AuditRepository struct {
	db sqlx.ExtContext
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db sqlx.ExtContext) *AuditRepository {
	return &AuditRepository{db: db}
}

var (
	_ secondary.AuditSink      = (*AuditRepository)(nil)
	_ secondary.AuditLogReader = (*AuditRepository)(nil)
)

// Record writes one event. Replaying an event ID is a no-op.
func (r *AuditRepository) Record(ctx context.Context, event effects.AuditEffect) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO audit_log (event_id, actor, action, table_name, row_id, before_image, after_image, ip, user_agent, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (event_id) DO NOTHING`),
		event.EventID, event.Actor, event.Action, event.Table, event.RowID,
		image(event.Before), image(event.After),
		event.Provenance.IP, event.Provenance.UserAgent, formatInstant(event.At),
	)
	if err != nil {
		return fmt.Errorf("failed to record audit event %s: %w", event.EventID, err)
	}
	return nil
}

// List reads audit events, newest first.
func (r *AuditRepository) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	query := `SELECT id, event_id, actor, action, table_name, row_id, before_image, after_image, ip, user_agent, recorded_at
		FROM audit_log WHERE 1=1`
	args := []any{}

	if filters.Table != "" {
		query += " AND table_name = ?"
		args = append(args, filters.Table)
	}
	if filters.RowID != 0 {
		query += " AND row_id = ?"
		args = append(args, filters.RowID)
	}
	if filters.Actor != "" {
		query += " AND actor = ?"
		args = append(args, filters.Actor)
	}

	query += " ORDER BY id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var records []*secondary.AuditLogRecord
	for rows.Next() {
		var (
			rec           secondary.AuditLogRecord
			before, after sql.NullString
			recordedAt    string
		)
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Actor, &rec.Action, &rec.Table, &rec.RowID,
			&before, &after, &rec.IP, &rec.UserAgent, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if before.Valid {
			rec.Before = json.RawMessage(before.String)
		}
		if after.Valid {
			rec.After = json.RawMessage(after.String)
		}
		if rec.RecordedAt, err = parseInstant(recordedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func image(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
