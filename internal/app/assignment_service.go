// Package app contains the application layer: service implementations and
// post-commit delivery of audit effects.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	coreassignment "github.com/example/atelier/internal/core/assignment"
	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/ports/secondary"
)

const assignmentsTable = "assignments"

// AssignmentCloser closes one assignment inside a unit of work opened by
// someone else. The order and absence cascades close through it.
type AssignmentCloser interface {
	CloseWithinTx(ctx context.Context, tx secondary.Tx, rec *secondary.AssignmentRecord, p CloseParams) (*secondary.AssignmentRecord, effects.AuditEffect, error)
}

// CloseParams describes one closure.
type CloseParams struct {
	EndedAt          time.Time
	QuantityProduced *int64
	Note             string // appended to the comment, empty for none
	Reason           string // metric label
}

// AssignmentServiceImpl implements the AssignmentService interface.
type AssignmentServiceImpl struct {
	store     secondary.Store
	durations *DurationCalculator
	audit     AuditPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssignmentService creates a new AssignmentService with injected dependencies.
func NewAssignmentService(
	store secondary.Store,
	durations *DurationCalculator,
	audit AuditPublisher,
	logger *zap.Logger,
) *AssignmentServiceImpl {
	return &AssignmentServiceImpl{
		store:     store,
		durations: durations,
		audit:     audit,
		logger:    logger,
		now:       wallNow,
	}
}

var (
	_ primary.AssignmentService = (*AssignmentServiceImpl)(nil)
	_ AssignmentCloser          = (*AssignmentServiceImpl)(nil)
)

func wallNow() time.Time {
	return calendar.Wall(time.Now())
}

// StartAssignment opens a new assignment.
func (s *AssignmentServiceImpl) StartAssignment(ctx context.Context, req primary.StartAssignmentRequest) (*primary.Assignment, error) {
	guardCtx := coreassignment.StartContext{
		OperatorID:    req.OperatorID,
		OrderID:       req.OrderID,
		WorkstationID: req.WorkstationID,
		ArticleID:     req.ArticleID,
		StartedAt:     calendar.Wall(req.StartedAt),
	}
	if r := coreassignment.ValidateStart(guardCtx); !r.Allowed {
		return nil, r.Error()
	}

	var (
		created *secondary.AssignmentRecord
		event   effects.AuditEffect
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		if _, err := tx.Orders().GetByID(ctx, req.OrderID); err != nil {
			return err
		}

		open, err := tx.Assignments().List(ctx, secondary.AssignmentFilters{
			OperatorID: req.OperatorID,
			OrderID:    req.OrderID,
			OpenOnly:   true,
			Limit:      1,
		})
		if err != nil {
			return err
		}
		if len(open) > 0 {
			guardCtx.OpenAssignmentID = open[0].ID
		}
		if r := coreassignment.CanStart(guardCtx); !r.Allowed {
			return r.Error()
		}

		id, err := tx.Assignments().Create(ctx, &secondary.AssignmentRecord{
			OperatorID:    req.OperatorID,
			OrderID:       req.OrderID,
			WorkstationID: req.WorkstationID,
			ArticleID:     req.ArticleID,
			WeekID:        req.WeekID,
			StartedAt:     guardCtx.StartedAt,
			Comment:       req.Comment,
		})
		if err != nil {
			return err
		}

		created, err = tx.Assignments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		event = newAuditEffect(ctx, s.now(), effects.ActionCreate, assignmentsTable, id, nil, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Dispatch(ctx, []effects.AuditEffect{event})
	s.logger.Info("assignment started",
		zap.Int64("assignment_id", created.ID),
		zap.Int64("operator_id", created.OperatorID),
		zap.Int64("order_id", created.OrderID))
	return recordToAssignment(created), nil
}

// CloseAssignment closes an open assignment.
func (s *AssignmentServiceImpl) CloseAssignment(ctx context.Context, req primary.CloseAssignmentRequest) (*primary.Assignment, error) {
	var (
		closed *secondary.AssignmentRecord
		event  effects.AuditEffect
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		rec, err := tx.Assignments().GetByID(ctx, req.AssignmentID)
		if err != nil {
			return err
		}
		closed, event, err = s.CloseWithinTx(ctx, tx, rec, CloseParams{
			EndedAt:          req.EndedAt,
			QuantityProduced: req.QuantityProduced,
			Reason:           reasonManual,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Dispatch(ctx, []effects.AuditEffect{event})
	return recordToAssignment(closed), nil
}

// CloseWithinTx closes rec inside tx and returns the closed row with its
// audit effect. The effect must only be published once tx has committed.
func (s *AssignmentServiceImpl) CloseWithinTx(ctx context.Context, tx secondary.Tx, rec *secondary.AssignmentRecord, p CloseParams) (*secondary.AssignmentRecord, effects.AuditEffect, error) {
	endedAt := calendar.Wall(p.EndedAt)
	if r := coreassignment.CanClose(coreassignment.CloseContext{
		AssignmentID:     rec.ID,
		IsClosed:         !rec.IsOpen(),
		StartedAt:        rec.StartedAt,
		EndedAt:          endedAt,
		QuantityProduced: p.QuantityProduced,
	}); !r.Allowed {
		return nil, effects.AuditEffect{}, r.Error()
	}

	seconds, degraded := s.durations.Compute(ctx, tx, rec.StartedAt, endedAt)
	closure := secondary.AssignmentClosure{EndedAt: endedAt, DurationSeconds: seconds}
	comment := coreassignment.AppendNote(rec.Comment, p.Note)

	if err := tx.Assignments().Close(ctx, rec.ID, closure, p.QuantityProduced, comment); err != nil {
		return nil, effects.AuditEffect{}, fmt.Errorf("failed to close assignment %d: %w", rec.ID, err)
	}

	after, err := tx.Assignments().GetByID(ctx, rec.ID)
	if err != nil {
		return nil, effects.AuditEffect{}, err
	}

	assignmentsClosedTotal.WithLabelValues(p.Reason).Inc()
	s.logger.Info("assignment closed",
		zap.Int64("assignment_id", rec.ID),
		zap.String("reason", p.Reason),
		zap.Int64("duration_seconds", seconds),
		zap.Bool("calendar_fallback", degraded))

	return after, newAuditEffect(ctx, s.now(), effects.ActionUpdate, assignmentsTable, rec.ID, rec, after), nil
}

// UpdateAssignment edits the mutable fields of an assignment.
func (s *AssignmentServiceImpl) UpdateAssignment(ctx context.Context, req primary.UpdateAssignmentRequest) (*primary.Assignment, error) {
	if r := coreassignment.CanUpdate(coreassignment.UpdateContext{
		AssignmentID:     req.AssignmentID,
		QuantityProduced: req.QuantityProduced,
		OvertimeHours:    req.OvertimeHours,
	}); !r.Allowed {
		return nil, r.Error()
	}

	var (
		updated *secondary.AssignmentRecord
		event   effects.AuditEffect
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		before, err := tx.Assignments().GetByID(ctx, req.AssignmentID)
		if err != nil {
			return err
		}

		next := *before
		if req.QuantityProduced != nil {
			next.QuantityProduced = req.QuantityProduced
		}
		if req.OvertimeHours != nil {
			next.OvertimeHours.Decimal = *req.OvertimeHours
			next.OvertimeHours.Valid = true
		}
		if req.Comment != nil {
			next.Comment = coreassignment.AppendNote(before.Comment, *req.Comment)
		}

		if err := tx.Assignments().Update(ctx, &next); err != nil {
			return err
		}
		updated, err = tx.Assignments().GetByID(ctx, req.AssignmentID)
		if err != nil {
			return err
		}
		event = newAuditEffect(ctx, s.now(), effects.ActionUpdate, assignmentsTable, req.AssignmentID, before, updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Dispatch(ctx, []effects.AuditEffect{event})
	return recordToAssignment(updated), nil
}

// GetAssignment retrieves an assignment by ID.
func (s *AssignmentServiceImpl) GetAssignment(ctx context.Context, id int64) (*primary.Assignment, error) {
	var rec *secondary.AssignmentRecord
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		var err error
		rec, err = tx.Assignments().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recordToAssignment(rec), nil
}

// ListAssignments lists assignments with optional filters.
func (s *AssignmentServiceImpl) ListAssignments(ctx context.Context, filters primary.AssignmentFilters) ([]*primary.Assignment, error) {
	var records []*secondary.AssignmentRecord
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		var err error
		records, err = tx.Assignments().List(ctx, secondary.AssignmentFilters{
			OperatorID: filters.OperatorID,
			OrderID:    filters.OrderID,
			OpenOnly:   filters.OpenOnly,
			Limit:      filters.Limit,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	assignments := make([]*primary.Assignment, len(records))
	for i, rec := range records {
		assignments[i] = recordToAssignment(rec)
	}
	return assignments, nil
}

func recordToAssignment(rec *secondary.AssignmentRecord) *primary.Assignment {
	a := &primary.Assignment{
		ID:               rec.ID,
		OperatorID:       rec.OperatorID,
		OrderID:          rec.OrderID,
		WorkstationID:    rec.WorkstationID,
		ArticleID:        rec.ArticleID,
		WeekID:           rec.WeekID,
		StartedAt:        rec.StartedAt,
		QuantityProduced: rec.QuantityProduced,
		Comment:          rec.Comment,
	}
	if rec.OvertimeHours.Valid {
		hours := rec.OvertimeHours.Decimal
		a.OvertimeHours = &hours
	}
	if rec.Closure != nil {
		a.Closure = &primary.Closure{
			EndedAt:         rec.Closure.EndedAt,
			DurationSeconds: rec.Closure.DurationSeconds,
		}
	}
	return a
}
