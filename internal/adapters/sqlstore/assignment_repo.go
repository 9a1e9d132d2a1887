package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/example/atelier/internal/ports/secondary"
)

const assignmentColumns = "id, operator_id, order_id, workstation_id, article_id, week_id, started_at, ended_at, duration_seconds, quantity_produced, overtime_hours, comment"

// AssignmentRepository implements secondary.AssignmentRepository.
type AssignmentRepository struct {
	db sqlx.ExtContext
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db sqlx.ExtContext) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

var _ secondary.AssignmentRepository = (*AssignmentRepository)(nil)

type assignmentRow struct {
	ID               int64               `db:"id"`
	OperatorID       int64               `db:"operator_id"`
	OrderID          int64               `db:"order_id"`
	WorkstationID    int64               `db:"workstation_id"`
	ArticleID        int64               `db:"article_id"`
	WeekID           sql.NullInt64       `db:"week_id"`
	StartedAt        string              `db:"started_at"`
	EndedAt          sql.NullString      `db:"ended_at"`
	DurationSeconds  sql.NullInt64       `db:"duration_seconds"`
	QuantityProduced sql.NullInt64       `db:"quantity_produced"`
	OvertimeHours    decimal.NullDecimal `db:"overtime_hours"`
	Comment          string              `db:"comment"`
}

func (row *assignmentRow) record() (*secondary.AssignmentRecord, error) {
	if row.EndedAt.Valid != row.DurationSeconds.Valid {
		return nil, fmt.Errorf("assignment %d has an end instant without a duration or the reverse", row.ID)
	}

	startedAt, err := parseInstant(row.StartedAt)
	if err != nil {
		return nil, err
	}

	record := &secondary.AssignmentRecord{
		ID:            row.ID,
		OperatorID:    row.OperatorID,
		OrderID:       row.OrderID,
		WorkstationID: row.WorkstationID,
		ArticleID:     row.ArticleID,
		StartedAt:     startedAt,
		OvertimeHours: row.OvertimeHours,
		Comment:       row.Comment,
	}
	if row.WeekID.Valid {
		week := row.WeekID.Int64
		record.WeekID = &week
	}
	if row.QuantityProduced.Valid {
		qty := row.QuantityProduced.Int64
		record.QuantityProduced = &qty
	}
	if row.EndedAt.Valid {
		endedAt, err := parseInstant(row.EndedAt.String)
		if err != nil {
			return nil, err
		}
		record.Closure = &secondary.AssignmentClosure{
			EndedAt:         endedAt,
			DurationSeconds: row.DurationSeconds.Int64,
		}
	}
	return record, nil
}

// Create persists a new open assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *secondary.AssignmentRecord) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO assignments (operator_id, order_id, workstation_id, article_id, week_id, started_at, quantity_produced, overtime_hours, comment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		a.OperatorID, a.OrderID, a.WorkstationID, a.ArticleID, a.WeekID,
		formatInstant(a.StartedAt), a.QuantityProduced, a.OvertimeHours, a.Comment,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("%w: operator %d already has an open assignment on order %d",
			secondary.ErrDuplicate, a.OperatorID, a.OrderID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create assignment: %w", err)
	}
	return id, nil
}

// GetByID retrieves an assignment by its ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*secondary.AssignmentRecord, error) {
	var row assignmentRow
	err := sqlx.GetContext(ctx, r.db, &row,
		r.db.Rebind("SELECT "+assignmentColumns+" FROM assignments WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: assignment %d", secondary.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return row.record()
}

// List retrieves assignments matching the given filters.
func (r *AssignmentRepository) List(ctx context.Context, filters secondary.AssignmentFilters) ([]*secondary.AssignmentRecord, error) {
	query := "SELECT " + assignmentColumns + " FROM assignments WHERE 1=1"
	args := []any{}

	if filters.OperatorID != 0 {
		query += " AND operator_id = ?"
		args = append(args, filters.OperatorID)
	}
	if filters.OrderID != 0 {
		query += " AND order_id = ?"
		args = append(args, filters.OrderID)
	}
	if filters.OpenOnly {
		query += " AND ended_at IS NULL"
	}

	query += " ORDER BY started_at, id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	var rows []assignmentRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	records := make([]*secondary.AssignmentRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].record()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Close writes the closure of an open assignment.
func (r *AssignmentRepository) Close(ctx context.Context, id int64, closure secondary.AssignmentClosure, quantity *int64, comment string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE assignments
		 SET ended_at = ?, duration_seconds = ?, comment = ?, quantity_produced = COALESCE(?, quantity_produced)
		 WHERE id = ? AND ended_at IS NULL`),
		formatInstant(closure.EndedAt), closure.DurationSeconds, comment, quantity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to close assignment: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close assignment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: open assignment %d", secondary.ErrNotFound, id)
	}
	return nil
}

// Update writes the editable fields of an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a *secondary.AssignmentRecord) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE assignments SET quantity_produced = ?, overtime_hours = ?, comment = ? WHERE id = ?"),
		a.QuantityProduced, a.OvertimeHours, a.Comment, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: assignment %d", secondary.ErrNotFound, a.ID)
	}
	return nil
}
