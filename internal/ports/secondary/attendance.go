package secondary

import (
	"context"
	"time"
)

// AttendanceRepository defines the secondary port for attendance records.
type AttendanceRepository interface {
	// Create persists a new attendance record and returns its ID.
	Create(ctx context.Context, r *AttendanceRecord) (int64, error)

	// GetByID retrieves an attendance record by its ID.
	GetByID(ctx context.Context, id int64) (*AttendanceRecord, error)
}

// AttendanceRecord states whether an operator was present on a date.
type AttendanceRecord struct {
	ID         int64     `json:"id"`
	OperatorID int64     `json:"operator_id"`
	Date       time.Time `json:"date"`
	Absent     bool      `json:"absent"`
	Reason     string    `json:"reason,omitempty"`
}
