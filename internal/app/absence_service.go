package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	coreassignment "github.com/example/atelier/internal/core/assignment"
	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/core/guard"
	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/ports/secondary"
)

const attendanceTable = "attendance"

// AbsenceServiceImpl implements the AbsenceService interface.
//
// Unlike order completion, an absence cascade is best effort: each closure
// runs under its own savepoint and a failing assignment is reported without
// undoing the others.
type AbsenceServiceImpl struct {
	store  secondary.Store
	closer AssignmentCloser
	audit  AuditPublisher
	logger *zap.Logger
	dayEnd calendar.Clock
	now    func() time.Time
}

// NewAbsenceService creates a new AbsenceService. dayEnd is the close time
// used when the day before an absence has no calendar row.
func NewAbsenceService(
	store secondary.Store,
	closer AssignmentCloser,
	audit AuditPublisher,
	logger *zap.Logger,
	dayEnd calendar.Clock,
) *AbsenceServiceImpl {
	return &AbsenceServiceImpl{
		store:  store,
		closer: closer,
		audit:  audit,
		logger: logger,
		dayEnd: dayEnd,
		now:    wallNow,
	}
}

var _ primary.AbsenceService = (*AbsenceServiceImpl)(nil)

// ReportAttendance stores an attendance record and handles it when absent.
// The record and its cascade commit together, so a failed cascade leaves no
// attendance row behind and the report can be retried.
func (s *AbsenceServiceImpl) ReportAttendance(ctx context.Context, req primary.ReportAttendanceRequest) (*primary.ReportAttendanceResponse, error) {
	if req.OperatorID <= 0 {
		return nil, guard.Deny(guard.KindValidation, "missing operator").Error()
	}
	if req.Date.IsZero() {
		return nil, guard.Deny(guard.KindValidation, "missing attendance date").Error()
	}

	var (
		resp   *primary.ReportAttendanceResponse
		events []effects.AuditEffect
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		rec := &secondary.AttendanceRecord{
			OperatorID: req.OperatorID,
			Date:       calendar.DateOf(req.Date),
			Absent:     req.Absent,
			Reason:     req.Reason,
		}
		id, err := tx.Attendance().Create(ctx, rec)
		if err != nil {
			return err
		}
		rec.ID = id
		events = []effects.AuditEffect{newAuditEffect(ctx, s.now(), effects.ActionCreate, attendanceTable, id, nil, rec)}
		resp = &primary.ReportAttendanceResponse{AttendanceID: id}
		if !rec.Absent {
			return nil
		}

		result, closed, err := s.cascade(ctx, tx, rec)
		if err != nil {
			return err
		}
		resp.Absence = result
		events = append(events, closed...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Dispatch(ctx, events)
	if resp.Absence != nil {
		s.logHandled(resp.Absence)
	}
	return resp, nil
}

// HandleAbsence closes the open assignments of the absent operator.
func (s *AbsenceServiceImpl) HandleAbsence(ctx context.Context, attendanceID int64) (*primary.AbsenceResult, error) {
	var (
		result *primary.AbsenceResult
		events []effects.AuditEffect
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		rec, err := tx.Attendance().GetByID(ctx, attendanceID)
		if err != nil {
			return err
		}
		if !rec.Absent {
			result = &primary.AbsenceResult{AttendanceID: attendanceID, OperatorID: rec.OperatorID, Skipped: true}
			return nil
		}
		result, events, err = s.cascade(ctx, tx, rec)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Dispatch(ctx, events)
	if !result.Skipped {
		s.logHandled(result)
	}
	return result, nil
}

// cascade closes every open assignment of the absent operator inside tx.
// Each closure runs under its own savepoint; a failing closure is recorded
// in the result and does not abort the others.
func (s *AbsenceServiceImpl) cascade(ctx context.Context, tx secondary.Tx, rec *secondary.AttendanceRecord) (*primary.AbsenceResult, []effects.AuditEffect, error) {
	result := &primary.AbsenceResult{AttendanceID: rec.ID, OperatorID: rec.OperatorID}

	open, err := tx.Assignments().List(ctx, secondary.AssignmentFilters{OperatorID: rec.OperatorID, OpenOnly: true})
	if err != nil {
		return nil, nil, err
	}
	if len(open) == 0 {
		return result, nil, nil
	}

	result.ClosedAt = s.lastWorkingInstant(ctx, tx, rec.Date)
	note := coreassignment.AbsenceNote(rec.Date)

	var events []effects.AuditEffect
	for _, a := range open {
		endedAt := result.ClosedAt
		if endedAt.Before(a.StartedAt) {
			endedAt = a.StartedAt
		}

		var event effects.AuditEffect
		err := tx.Savepoint(ctx, func(ctx context.Context) error {
			var err error
			_, event, err = s.closer.CloseWithinTx(ctx, tx, a, CloseParams{
				EndedAt: endedAt,
				Note:    note,
				Reason:  reasonAbsence,
			})
			return err
		})
		if err != nil {
			absenceFailuresTotal.Inc()
			s.logger.Error("absence closure failed",
				zap.Int64("attendance_id", rec.ID),
				zap.Int64("assignment_id", a.ID),
				zap.Error(err))
			result.Failures = append(result.Failures, primary.AbsenceFailure{AssignmentID: a.ID, Err: err})
			continue
		}
		result.ClosedAssignmentIDs = append(result.ClosedAssignmentIDs, a.ID)
		events = append(events, event)
	}
	return result, events, nil
}

func (s *AbsenceServiceImpl) logHandled(result *primary.AbsenceResult) {
	s.logger.Info("absence handled",
		zap.Int64("attendance_id", result.AttendanceID),
		zap.Int64("operator_id", result.OperatorID),
		zap.Int("closed", result.Closed()),
		zap.Int("failed", len(result.Failures)))
}

// lastWorkingInstant reads the calendar row of the day before date. A read
// failure is logged and treated as a missing row.
func (s *AbsenceServiceImpl) lastWorkingInstant(ctx context.Context, tx secondary.Tx, date time.Time) time.Time {
	var prior *calendar.Day
	err := tx.Savepoint(ctx, func(ctx context.Context) error {
		var err error
		prior, err = tx.Calendar().GetDay(ctx, calendar.DateOf(date).AddDate(0, 0, -1))
		return err
	})
	if err != nil {
		s.logger.Warn("calendar unavailable for absence, using default day end",
			zap.Time("date", date), zap.Error(err))
		prior = nil
	}
	return calendar.LastWorkingInstant(prior, date, s.dayEnd)
}
