package secondary

import (
	"context"
	"time"
)

// OrderRepository defines the secondary port for manufacturing order persistence.
type OrderRepository interface {
	// Create persists a new order and returns its ID.
	Create(ctx context.Context, o *OrderRecord) (int64, error)

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id int64) (*OrderRecord, error)

	// SetPacked overwrites the packed quantity.
	SetPacked(ctx context.Context, id int64, packed int64) error

	// MarkTerminated sets the terminal status and completion instant.
	MarkTerminated(ctx context.Context, id int64, at time.Time) error
}

// OrderRecord represents an order as stored in persistence.
type OrderRecord struct {
	ID             int64      `json:"id"`
	Reference      string     `json:"reference"`
	Quantity       int64      `json:"quantity"`
	PackedQuantity int64      `json:"packed_quantity"`
	Status         string     `json:"status"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// WeeklyPlanRepository defines the secondary port for weekly billing plans.
type WeeklyPlanRepository interface {
	// SumBilledQuantity returns the billed quantity summed over all weeks of
	// an order, 0 when the order has no plan.
	SumBilledQuantity(ctx context.Context, orderID int64) (int64, error)

	// Upsert sets the billed quantity of one week.
	Upsert(ctx context.Context, p *WeeklyPlanRecord) error

	// ListByOrder returns the weekly plans of an order ordered by week.
	ListByOrder(ctx context.Context, orderID int64) ([]*WeeklyPlanRecord, error)
}

// WeeklyPlanRecord is the billed quantity of one order for one week.
type WeeklyPlanRecord struct {
	OrderID        int64 `json:"order_id"`
	WeekID         int64 `json:"week_id"`
	BilledQuantity int64 `json:"billed_quantity"`
}
