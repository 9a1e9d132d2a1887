// Package assignment contains the pure rules of the assignment lifecycle.
// Guards are pure functions that evaluate preconditions without side effects.
package assignment

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/core/guard"
)

// Comment markers appended by automatic closures.
const (
	OrderCompletedNote = "closed automatically: order completed"
	noteSeparator      = " | "
)

// AbsenceNote is the marker appended when an absence closes an assignment.
func AbsenceNote(date time.Time) string {
	return fmt.Sprintf("closed automatically: operator absent on %s", date.Format(calendar.DateLayout))
}

// AppendNote appends a marker to an existing comment without losing it.
func AppendNote(comment, note string) string {
	comment = strings.TrimSpace(comment)
	if note == "" {
		return comment
	}
	if comment == "" {
		return note
	}
	return comment + noteSeparator + note
}

// StartContext provides context for assignment start guards.
type StartContext struct {
	OperatorID       int64
	OrderID          int64
	WorkstationID    int64
	ArticleID        int64
	StartedAt        time.Time
	OpenAssignmentID int64 // open assignment for the same operator and order, 0 if none
}

// CloseContext provides context for assignment close guards.
type CloseContext struct {
	AssignmentID     int64
	IsClosed         bool
	StartedAt        time.Time
	EndedAt          time.Time
	QuantityProduced *int64
}

// UpdateContext provides context for assignment edit guards.
type UpdateContext struct {
	AssignmentID     int64
	QuantityProduced *int64
	OvertimeHours    *decimal.Decimal
}

// ValidateStart checks that every reference needed to open an assignment is set.
func ValidateStart(ctx StartContext) guard.Result {
	var missing []string
	if ctx.OperatorID <= 0 {
		missing = append(missing, "operator")
	}
	if ctx.OrderID <= 0 {
		missing = append(missing, "order")
	}
	if ctx.WorkstationID <= 0 {
		missing = append(missing, "workstation")
	}
	if ctx.ArticleID <= 0 {
		missing = append(missing, "article")
	}
	if ctx.StartedAt.IsZero() {
		missing = append(missing, "start instant")
	}
	if len(missing) > 0 {
		return guard.Deny(guard.KindValidation, "missing %s", strings.Join(missing, ", "))
	}
	return guard.Allow()
}

// CanStart evaluates whether a new assignment can be opened.
// Rules:
// - All references must be set
// - The operator must not already have an open assignment on the same order
func CanStart(ctx StartContext) guard.Result {
	if r := ValidateStart(ctx); !r.Allowed {
		return r
	}
	if ctx.OpenAssignmentID != 0 {
		return guard.Deny(guard.KindConflict,
			"operator %d already has open assignment %d on order %d",
			ctx.OperatorID, ctx.OpenAssignmentID, ctx.OrderID)
	}
	return guard.Allow()
}

// CanClose evaluates whether an assignment can be closed.
// Rules:
// - The assignment must still be open (re-closure is rejected)
// - The end instant must be set and not precede the start
// - A produced quantity, when given, must not be negative
func CanClose(ctx CloseContext) guard.Result {
	if ctx.IsClosed {
		return guard.Deny(guard.KindConflict, "assignment %d is already closed", ctx.AssignmentID)
	}
	if ctx.EndedAt.IsZero() {
		return guard.Deny(guard.KindValidation, "missing end instant")
	}
	if ctx.EndedAt.Before(ctx.StartedAt) {
		return guard.Deny(guard.KindValidation,
			"end %s is before start %s",
			ctx.EndedAt.Format(calendar.InstantLayout), ctx.StartedAt.Format(calendar.InstantLayout))
	}
	if ctx.QuantityProduced != nil && *ctx.QuantityProduced < 0 {
		return guard.Deny(guard.KindValidation, "produced quantity %d is negative", *ctx.QuantityProduced)
	}
	return guard.Allow()
}

// CanUpdate evaluates an edit of the mutable fields of an assignment.
func CanUpdate(ctx UpdateContext) guard.Result {
	if ctx.QuantityProduced != nil && *ctx.QuantityProduced < 0 {
		return guard.Deny(guard.KindValidation, "produced quantity %d is negative", *ctx.QuantityProduced)
	}
	if ctx.OvertimeHours != nil && ctx.OvertimeHours.IsNegative() {
		return guard.Deny(guard.KindValidation, "overtime hours %s is negative", ctx.OvertimeHours.String())
	}
	return guard.Allow()
}
