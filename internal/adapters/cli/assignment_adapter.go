// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/atelier/internal/ports/primary"
)

// AssignmentAdapter translates CLI operations to AssignmentService calls.
type AssignmentAdapter struct {
	service primary.AssignmentService
	out     io.Writer
}

// NewAssignmentAdapter creates a new AssignmentAdapter with the given service.
func NewAssignmentAdapter(service primary.AssignmentService, out io.Writer) *AssignmentAdapter {
	return &AssignmentAdapter{
		service: service,
		out:     out,
	}
}

// Start opens an assignment.
func (a *AssignmentAdapter) Start(ctx context.Context, req primary.StartAssignmentRequest) error {
	assignment, err := a.service.StartAssignment(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Started assignment %d: operator %d on order %d at %s\n",
		assignment.ID, assignment.OperatorID, assignment.OrderID, assignment.StartedAt.Format(instantFormat))
	return nil
}

// Close closes an assignment and reports the computed duration.
func (a *AssignmentAdapter) Close(ctx context.Context, req primary.CloseAssignmentRequest) error {
	assignment, err := a.service.CloseAssignment(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Closed assignment %d at %s (%s worked)\n",
		assignment.ID, assignment.Closure.EndedAt.Format(instantFormat), formatSeconds(assignment.Closure.DurationSeconds))
	return nil
}

// Update edits quantity, overtime or comment.
func (a *AssignmentAdapter) Update(ctx context.Context, req primary.UpdateAssignmentRequest) error {
	if req.QuantityProduced == nil && req.OvertimeHours == nil && req.Comment == nil {
		return fmt.Errorf("must specify at least --quantity, --overtime or --comment")
	}

	if _, err := a.service.UpdateAssignment(ctx, req); err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Assignment %d updated\n", req.AssignmentID)
	return nil
}

// Show displays details for a single assignment.
func (a *AssignmentAdapter) Show(ctx context.Context, id int64) (*primary.Assignment, error) {
	assignment, err := a.service.GetAssignment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	fmt.Fprintf(a.out, "\nAssignment: %d\n", assignment.ID)
	fmt.Fprintf(a.out, "State:       %s\n", stateBadge(assignment))
	fmt.Fprintf(a.out, "Operator:    %d\n", assignment.OperatorID)
	fmt.Fprintf(a.out, "Order:       %d\n", assignment.OrderID)
	fmt.Fprintf(a.out, "Workstation: %d\n", assignment.WorkstationID)
	fmt.Fprintf(a.out, "Article:     %d\n", assignment.ArticleID)
	if assignment.WeekID != nil {
		fmt.Fprintf(a.out, "Week:        %d\n", *assignment.WeekID)
	}
	fmt.Fprintf(a.out, "Started:     %s\n", assignment.StartedAt.Format(instantFormat))
	if assignment.Closure != nil {
		fmt.Fprintf(a.out, "Ended:       %s\n", assignment.Closure.EndedAt.Format(instantFormat))
		fmt.Fprintf(a.out, "Duration:    %s (%ds)\n", formatSeconds(assignment.Closure.DurationSeconds), assignment.Closure.DurationSeconds)
	}
	fmt.Fprintf(a.out, "Quantity:    %s\n", formatOptional(assignment.QuantityProduced))
	if assignment.OvertimeHours != nil {
		fmt.Fprintf(a.out, "Overtime:    %sh\n", assignment.OvertimeHours.String())
	}
	if assignment.Comment != "" {
		fmt.Fprintf(a.out, "Comment:     %s\n", assignment.Comment)
	}
	fmt.Fprintln(a.out)

	return assignment, nil
}

// List lists assignments.
func (a *AssignmentAdapter) List(ctx context.Context, filters primary.AssignmentFilters) error {
	assignments, err := a.service.ListAssignments(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list assignments: %w", err)
	}

	if len(assignments) == 0 {
		fmt.Fprintln(a.out, "No assignments found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-8s %-8s %-9s %-8s %-17s %-9s %s\n", "ID", "STATE", "OPERATOR", "ORDER", "STARTED", "WORKED", "QTY")
	fmt.Fprintln(a.out, rule)
	for _, as := range assignments {
		worked := "-"
		if as.Closure != nil {
			worked = formatSeconds(as.Closure.DurationSeconds)
		}
		fmt.Fprintf(a.out, "%-8d %s   %-9d %-8d %-17s %-9s %s\n",
			as.ID, stateBadge(as), as.OperatorID, as.OrderID, as.StartedAt.Format(instantFormat), worked, formatOptional(as.QuantityProduced))
	}
	fmt.Fprintln(a.out)

	return nil
}
