package primary

import (
	"context"
	"time"
)

// AbsenceService defines the primary port for attendance and absence handling.
type AbsenceService interface {
	// ReportAttendance records an attendance entry. An absent entry triggers
	// HandleAbsence once the record is committed.
	ReportAttendance(ctx context.Context, req ReportAttendanceRequest) (*ReportAttendanceResponse, error)

	// HandleAbsence closes every open assignment of the absent operator as of
	// the last worked instant before the absence. Closures succeed or fail
	// one by one; failures are reported in the result, not as an error.
	HandleAbsence(ctx context.Context, attendanceID int64) (*AbsenceResult, error)
}

// ReportAttendanceRequest contains parameters for an attendance entry.
type ReportAttendanceRequest struct {
	OperatorID int64
	Date       time.Time
	Absent     bool
	Reason     string
}

// ReportAttendanceResponse contains the stored record and, for absences, the cascade result.
type ReportAttendanceResponse struct {
	AttendanceID int64
	Absence      *AbsenceResult
}

// AbsenceResult summarises an absence cascade.
type AbsenceResult struct {
	AttendanceID        int64
	OperatorID          int64
	ClosedAt            time.Time
	ClosedAssignmentIDs []int64
	Failures            []AbsenceFailure
	Skipped             bool // record was not an absence
}

// Closed returns the number of assignments closed.
func (r *AbsenceResult) Closed() int {
	return len(r.ClosedAssignmentIDs)
}

// AbsenceFailure is one assignment the cascade could not close.
type AbsenceFailure struct {
	AssignmentID int64
	Err          error
}
