package primary

import (
	"context"
	"time"
)

// OrderService defines the primary port for order fulfilment.
type OrderService interface {
	// CreateOrder registers a manufacturing order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// GetOrder retrieves an order with its effective target.
	GetOrder(ctx context.Context, id int64) (*Order, error)

	// AddPackedQuantity records delta packed units. Reaching the effective
	// target terminates the order and closes every open assignment on it,
	// all or nothing.
	AddPackedQuantity(ctx context.Context, req AddPackedQuantityRequest) (*AddPackedQuantityResponse, error)

	// SetBilledQuantity sets the billed quantity of one planning week.
	SetBilledQuantity(ctx context.Context, req SetBilledQuantityRequest) error
}

// CreateOrderRequest contains parameters for creating an order.
type CreateOrderRequest struct {
	Reference string
	Quantity  int64
}

// AddPackedQuantityRequest contains parameters for recording packed units.
type AddPackedQuantityRequest struct {
	OrderID int64
	Delta   int64
}

// AddPackedQuantityResponse contains the result of recording packed units.
type AddPackedQuantityResponse struct {
	Order               *Order
	Terminated          bool
	ClosedAssignmentIDs []int64
}

// SetBilledQuantityRequest contains parameters for a weekly plan entry.
type SetBilledQuantityRequest struct {
	OrderID        int64
	WeekID         int64
	BilledQuantity int64
}

// Order represents a manufacturing order at the port boundary.
type Order struct {
	ID              int64
	Reference       string
	Quantity        int64
	PackedQuantity  int64
	EffectiveTarget int64
	Status          string // open, terminated
	CompletedAt     *time.Time
}
