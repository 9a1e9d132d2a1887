package primary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AssignmentService defines the primary port for the assignment lifecycle.
type AssignmentService interface {
	// StartAssignment opens an assignment of an operator on an order.
	// Fails with ErrConflict when the operator already has an open
	// assignment on the same order.
	StartAssignment(ctx context.Context, req StartAssignmentRequest) (*Assignment, error)

	// CloseAssignment closes an open assignment and computes its duration
	// against the work calendar. Closing a closed assignment fails with ErrConflict.
	CloseAssignment(ctx context.Context, req CloseAssignmentRequest) (*Assignment, error)

	// UpdateAssignment edits quantity, overtime and comment.
	UpdateAssignment(ctx context.Context, req UpdateAssignmentRequest) (*Assignment, error)

	// GetAssignment retrieves an assignment by ID.
	GetAssignment(ctx context.Context, id int64) (*Assignment, error)

	// ListAssignments lists assignments with optional filters.
	ListAssignments(ctx context.Context, filters AssignmentFilters) ([]*Assignment, error)
}

// StartAssignmentRequest contains parameters for opening an assignment.
type StartAssignmentRequest struct {
	OperatorID    int64
	OrderID       int64
	WorkstationID int64
	ArticleID     int64
	WeekID        *int64 // Optional planning week
	StartedAt     time.Time
	Comment       string
}

// CloseAssignmentRequest contains parameters for closing an assignment.
type CloseAssignmentRequest struct {
	AssignmentID     int64
	EndedAt          time.Time
	QuantityProduced *int64 // Optional, left unchanged when nil
}

// UpdateAssignmentRequest contains the editable fields. Nil fields are left unchanged.
type UpdateAssignmentRequest struct {
	AssignmentID     int64
	QuantityProduced *int64
	OvertimeHours    *decimal.Decimal
	Comment          *string
}

// AssignmentState is the lifecycle state of an assignment.
type AssignmentState string

const (
	AssignmentOpen   AssignmentState = "open"
	AssignmentClosed AssignmentState = "closed"
)

// Assignment represents an assignment at the port boundary.
// Closure is nil while the assignment is open.
type Assignment struct {
	ID               int64
	OperatorID       int64
	OrderID          int64
	WorkstationID    int64
	ArticleID        int64
	WeekID           *int64
	StartedAt        time.Time
	Closure          *Closure
	QuantityProduced *int64
	OvertimeHours    *decimal.Decimal
	Comment          string
}

// Closure holds the end instant and the calendar-aware duration.
type Closure struct {
	EndedAt         time.Time
	DurationSeconds int64
}

// State derives the lifecycle state from the closure.
func (a *Assignment) State() AssignmentState {
	if a.Closure == nil {
		return AssignmentOpen
	}
	return AssignmentClosed
}

// Duration returns the worked duration.
func (c Closure) Duration() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}

// AssignmentFilters contains filter options for listing assignments.
type AssignmentFilters struct {
	OperatorID int64
	OrderID    int64
	OpenOnly   bool
	Limit      int
}
