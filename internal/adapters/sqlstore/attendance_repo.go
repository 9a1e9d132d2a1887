package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/ports/secondary"
)

// AttendanceRepository implements secondary.AttendanceRepository.
type AttendanceRepository struct {
	db sqlx.ExtContext
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db sqlx.ExtContext) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

var _ secondary.AttendanceRepository = (*AttendanceRepository)(nil)

// Create persists a new attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, rec *secondary.AttendanceRecord) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		"INSERT INTO attendance (operator_id, day, absent, reason) VALUES (?, ?, ?, ?) RETURNING id"),
		rec.OperatorID, formatDate(rec.Date), rec.Absent, rec.Reason,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return id, nil
}

// GetByID retrieves an attendance record by its ID.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*secondary.AttendanceRecord, error) {
	var row struct {
		ID         int64  `db:"id"`
		OperatorID int64  `db:"operator_id"`
		Day        string `db:"day"`
		Absent     bool   `db:"absent"`
		Reason     string `db:"reason"`
	}
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(
		"SELECT id, operator_id, day, absent, reason FROM attendance WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: attendance record %d", secondary.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	date, err := calendar.ParseDate(row.Day)
	if err != nil {
		return nil, err
	}
	return &secondary.AttendanceRecord{
		ID:         row.ID,
		OperatorID: row.OperatorID,
		Date:       date,
		Absent:     row.Absent,
		Reason:     row.Reason,
	}, nil
}
