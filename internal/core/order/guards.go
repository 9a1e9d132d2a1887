// Package order contains the pure rules for order fulfilment.
package order

import (
	"math"

	"github.com/example/atelier/internal/core/guard"
)

// Order statuses.
const (
	StatusOpen       = "open"
	StatusTerminated = "terminated"
)

// EffectiveTarget is the quantity an order must reach to be fulfilled: the
// sum billed across weekly plans, or the raw order quantity when nothing has
// been billed.
func EffectiveTarget(billed, quantity int64) int64 {
	if billed > 0 {
		return billed
	}
	return quantity
}

// PackContext provides context for packed-quantity guards.
type PackContext struct {
	OrderID int64
	Packed  int64
	Delta   int64
	Target  int64
}

// CanAddPacked evaluates whether delta units can be packed on the order.
// Rules:
// - Delta must be positive
// - Packed quantity may not exceed a positive effective target
// - Packed quantity may not overflow
func CanAddPacked(ctx PackContext) guard.Result {
	if ctx.Delta <= 0 {
		return guard.Deny(guard.KindValidation, "packed delta must be positive, got %d", ctx.Delta)
	}
	if ctx.Target > 0 && ctx.Delta > ctx.Target-ctx.Packed {
		return guard.Deny(guard.KindValidation,
			"order %d: packing %d would exceed target (%d of %d packed)",
			ctx.OrderID, ctx.Delta, ctx.Packed, ctx.Target)
	}
	if ctx.Delta > math.MaxInt64-ctx.Packed {
		return guard.Deny(guard.KindValidation,
			"order %d: packing %d would overflow the packed quantity %d",
			ctx.OrderID, ctx.Delta, ctx.Packed)
	}
	return guard.Allow()
}

// ShouldTerminate reports whether reaching packed triggers order completion.
// An order is terminated once, and only when it has a positive target.
func ShouldTerminate(status string, packed, target int64) bool {
	return status != StatusTerminated && target > 0 && packed >= target
}
