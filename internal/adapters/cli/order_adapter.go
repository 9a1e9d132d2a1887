package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/atelier/internal/ports/primary"
)

// OrderAdapter translates CLI operations to OrderService calls.
type OrderAdapter struct {
	service primary.OrderService
	out     io.Writer
}

// NewOrderAdapter creates a new OrderAdapter with the given service.
func NewOrderAdapter(service primary.OrderService, out io.Writer) *OrderAdapter {
	return &OrderAdapter{
		service: service,
		out:     out,
	}
}

// Create registers an order.
func (a *OrderAdapter) Create(ctx context.Context, reference string, quantity int64) error {
	order, err := a.service.CreateOrder(ctx, primary.CreateOrderRequest{
		Reference: reference,
		Quantity:  quantity,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created order %d: %s (quantity %d)\n", order.ID, order.Reference, order.Quantity)
	return nil
}

// Pack records packed units and reports a completion cascade.
func (a *OrderAdapter) Pack(ctx context.Context, orderID, delta int64) error {
	resp, err := a.service.AddPackedQuantity(ctx, primary.AddPackedQuantityRequest{
		OrderID: orderID,
		Delta:   delta,
	})
	if err != nil {
		return err
	}

	order := resp.Order
	fmt.Fprintf(a.out, "✓ Order %d: %d of %d packed\n", order.ID, order.PackedQuantity, order.EffectiveTarget)
	if resp.Terminated {
		fmt.Fprintf(a.out, "  Order %s, closed %d open assignment(s)", orderBadge(order.Status), len(resp.ClosedAssignmentIDs))
		if len(resp.ClosedAssignmentIDs) > 0 {
			fmt.Fprintf(a.out, ": %v", resp.ClosedAssignmentIDs)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

// SetBilled sets a week's billed quantity.
func (a *OrderAdapter) SetBilled(ctx context.Context, orderID, weekID, billed int64) error {
	err := a.service.SetBilledQuantity(ctx, primary.SetBilledQuantityRequest{
		OrderID:        orderID,
		WeekID:         weekID,
		BilledQuantity: billed,
	})
	if err != nil {
		return fmt.Errorf("failed to set billed quantity: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Order %d week %d billed quantity set to %d\n", orderID, weekID, billed)
	return nil
}

// Show displays an order.
func (a *OrderAdapter) Show(ctx context.Context, orderID int64) (*primary.Order, error) {
	order, err := a.service.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	fmt.Fprintf(a.out, "\nOrder: %d\n", order.ID)
	fmt.Fprintf(a.out, "Reference: %s\n", order.Reference)
	fmt.Fprintf(a.out, "Status:    %s\n", orderBadge(order.Status))
	fmt.Fprintf(a.out, "Quantity:  %d\n", order.Quantity)
	fmt.Fprintf(a.out, "Target:    %d\n", order.EffectiveTarget)
	fmt.Fprintf(a.out, "Packed:    %d\n", order.PackedQuantity)
	if order.CompletedAt != nil {
		fmt.Fprintf(a.out, "Completed: %s\n", order.CompletedAt.Format(instantFormat))
	}
	fmt.Fprintln(a.out)

	return order, nil
}
