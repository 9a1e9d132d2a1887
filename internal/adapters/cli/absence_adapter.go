package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/atelier/internal/ports/primary"
)

// AbsenceAdapter translates CLI operations to AbsenceService calls.
type AbsenceAdapter struct {
	service primary.AbsenceService
	out     io.Writer
}

// NewAbsenceAdapter creates a new AbsenceAdapter with the given service.
func NewAbsenceAdapter(service primary.AbsenceService, out io.Writer) *AbsenceAdapter {
	return &AbsenceAdapter{
		service: service,
		out:     out,
	}
}

// Report records an attendance entry and prints the cascade result.
func (a *AbsenceAdapter) Report(ctx context.Context, req primary.ReportAttendanceRequest) error {
	resp, err := a.service.ReportAttendance(ctx, req)
	if err != nil {
		return err
	}

	kind := "presence"
	if req.Absent {
		kind = "absence"
	}
	fmt.Fprintf(a.out, "✓ Recorded %s %d for operator %d on %s\n", kind, resp.AttendanceID, req.OperatorID, req.Date.Format("2006-01-02"))
	if resp.Absence != nil {
		a.printResult(resp.Absence)
	}
	return nil
}

// Handle reruns the cascade for an existing attendance record.
func (a *AbsenceAdapter) Handle(ctx context.Context, attendanceID int64) error {
	result, err := a.service.HandleAbsence(ctx, attendanceID)
	if err != nil {
		return err
	}
	if result.Skipped {
		fmt.Fprintf(a.out, "Attendance %d is not an absence, nothing to close\n", attendanceID)
		return nil
	}
	a.printResult(result)
	return nil
}

func (a *AbsenceAdapter) printResult(r *primary.AbsenceResult) {
	if r.Closed() == 0 && len(r.Failures) == 0 {
		fmt.Fprintf(a.out, "  No open assignments for operator %d\n", r.OperatorID)
		return
	}
	if r.Closed() > 0 {
		fmt.Fprintf(a.out, "  Closed %d assignment(s) at %s: %v\n", r.Closed(), r.ClosedAt.Format(instantFormat), r.ClosedAssignmentIDs)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(a.out, "  %s assignment %d: %v\n", color.New(color.FgRed).Sprint("FAILED"), f.AssignmentID, f.Err)
	}
}
