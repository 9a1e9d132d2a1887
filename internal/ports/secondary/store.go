// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/atelier/internal/core/guard"
)

// Errors returned by repositories. They alias the domain error kinds so that
// errors.Is works the same on both sides of the port.
var (
	ErrNotFound  = guard.ErrNotFound
	ErrDuplicate = guard.ErrConflict
)

// Store opens units of work. Every mutation happens inside one.
type Store interface {
	// WithinTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned unchanged.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the scoped handle of an open unit of work. Repositories obtained from
// it read and write through the same transaction.
type Tx interface {
	Assignments() AssignmentRepository
	Orders() OrderRepository
	WeeklyPlans() WeeklyPlanRepository
	Calendar() CalendarRepository
	Attendance() AttendanceRepository

	// Savepoint runs fn under a nested savepoint. When fn fails only its own
	// writes are undone and the enclosing transaction stays usable.
	Savepoint(ctx context.Context, fn func(ctx context.Context) error) error
}
