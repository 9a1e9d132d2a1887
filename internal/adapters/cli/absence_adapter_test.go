package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/atelier/internal/ports/primary"
)

func TestAbsenceAdapter_Report_WithFailures(t *testing.T) {
	mock := &mockAbsenceService{
		reportFn: func(ctx context.Context, req primary.ReportAttendanceRequest) (*primary.ReportAttendanceResponse, error) {
			return &primary.ReportAttendanceResponse{
				AttendanceID: 21,
				Absence: &primary.AbsenceResult{
					AttendanceID:        21,
					OperatorID:          req.OperatorID,
					ClosedAt:            at("2026-03-04 17:00"),
					ClosedAssignmentIDs: []int64{5},
					Failures:            []primary.AbsenceFailure{{AssignmentID: 6, Err: errors.New("assignment 6 is already closed")}},
				},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewAbsenceAdapter(mock, &buf)

	err := adapter.Report(context.Background(), primary.ReportAttendanceRequest{
		OperatorID: 7,
		Date:       at("2026-03-05 00:00"),
		Absent:     true,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	for _, want := range []string{
		"Recorded absence 21 for operator 7 on 2026-03-05",
		"Closed 1 assignment(s) at 2026-03-04 17:00: [5]",
		"FAILED assignment 6: assignment 6 is already closed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}

func TestAbsenceAdapter_Report_Presence(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewAbsenceAdapter(&mockAbsenceService{}, &buf)

	err := adapter.Report(context.Background(), primary.ReportAttendanceRequest{OperatorID: 7, Date: at("2026-03-05 00:00")})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Recorded presence 1") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestAbsenceAdapter_Handle_Skipped(t *testing.T) {
	mock := &mockAbsenceService{
		handleFn: func(ctx context.Context, attendanceID int64) (*primary.AbsenceResult, error) {
			return &primary.AbsenceResult{AttendanceID: attendanceID, Skipped: true}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewAbsenceAdapter(mock, &buf)

	if err := adapter.Handle(context.Background(), 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Attendance 3 is not an absence") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestAbsenceAdapter_Handle_NothingOpen(t *testing.T) {
	mock := &mockAbsenceService{
		handleFn: func(ctx context.Context, attendanceID int64) (*primary.AbsenceResult, error) {
			return &primary.AbsenceResult{AttendanceID: attendanceID, OperatorID: 7}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewAbsenceAdapter(mock, &buf)

	if err := adapter.Handle(context.Background(), 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No open assignments for operator 7") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
