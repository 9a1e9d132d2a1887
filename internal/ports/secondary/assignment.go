package secondary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AssignmentRepository defines the secondary port for assignment persistence.
type AssignmentRepository interface {
	// Create persists a new open assignment and returns its ID.
	// A second open assignment for the same operator and order fails with ErrDuplicate.
	Create(ctx context.Context, a *AssignmentRecord) (int64, error)

	// GetByID retrieves an assignment by its ID.
	GetByID(ctx context.Context, id int64) (*AssignmentRecord, error)

	// List retrieves assignments matching the given filters, oldest first.
	List(ctx context.Context, filters AssignmentFilters) ([]*AssignmentRecord, error)

	// Close sets the closure, the comment and, when given, the produced quantity.
	// Only open rows are touched; closing a closed row returns ErrNotFound.
	Close(ctx context.Context, id int64, closure AssignmentClosure, quantity *int64, comment string) error

	// Update writes the editable fields: quantity, overtime and comment.
	Update(ctx context.Context, a *AssignmentRecord) error
}

// AssignmentRecord represents an assignment as stored in persistence.
type AssignmentRecord struct {
	ID               int64               `json:"id"`
	OperatorID       int64               `json:"operator_id"`
	OrderID          int64               `json:"order_id"`
	WorkstationID    int64               `json:"workstation_id"`
	ArticleID        int64               `json:"article_id"`
	WeekID           *int64              `json:"week_id,omitempty"`
	StartedAt        time.Time           `json:"started_at"`
	Closure          *AssignmentClosure  `json:"closure,omitempty"`
	QuantityProduced *int64              `json:"quantity_produced,omitempty"`
	OvertimeHours    decimal.NullDecimal `json:"overtime_hours"`
	Comment          string              `json:"comment"`
}

// AssignmentClosure is present exactly when the assignment is closed.
type AssignmentClosure struct {
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// IsOpen reports whether the assignment has no closure yet.
func (a *AssignmentRecord) IsOpen() bool {
	return a.Closure == nil
}

// AssignmentFilters contains filter options for querying assignments.
type AssignmentFilters struct {
	OperatorID int64
	OrderID    int64
	OpenOnly   bool
	Limit      int
}
