package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	coreassignment "github.com/example/atelier/internal/core/assignment"
	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/core/guard"
	coreorder "github.com/example/atelier/internal/core/order"
	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/ports/secondary"
)

const (
	ordersTable      = "orders"
	weeklyPlansTable = "weekly_plans"
)

// OrderServiceImpl implements the OrderService interface.
type OrderServiceImpl struct {
	store  secondary.Store
	closer AssignmentCloser
	audit  AuditPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderService creates a new OrderService with injected dependencies.
func NewOrderService(
	store secondary.Store,
	closer AssignmentCloser,
	audit AuditPublisher,
	logger *zap.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		store:  store,
		closer: closer,
		audit:  audit,
		logger: logger,
		now:    wallNow,
	}
}

var _ primary.OrderService = (*OrderServiceImpl)(nil)

// CreateOrder registers a manufacturing order.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req primary.CreateOrderRequest) (*primary.Order, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, guard.Deny(guard.KindValidation, "missing order reference").Error()
	}
	if req.Quantity < 0 {
		return nil, guard.Deny(guard.KindValidation, "order quantity %d is negative", req.Quantity).Error()
	}

	var (
		order *primary.Order
		event effects.AuditEffect
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		id, err := tx.Orders().Create(ctx, &secondary.OrderRecord{
			Reference: reference,
			Quantity:  req.Quantity,
			Status:    coreorder.StatusOpen,
		})
		if err != nil {
			return err
		}
		rec, err := tx.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		order = recordToOrder(rec, coreorder.EffectiveTarget(0, rec.Quantity))
		event = newAuditEffect(ctx, s.now(), effects.ActionCreate, ordersTable, id, nil, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Dispatch(ctx, []effects.AuditEffect{event})
	return order, nil
}

// GetOrder retrieves an order with its effective target.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id int64) (*primary.Order, error) {
	var order *primary.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		rec, err := tx.Orders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		billed, err := tx.WeeklyPlans().SumBilledQuantity(ctx, id)
		if err != nil {
			return err
		}
		order = recordToOrder(rec, coreorder.EffectiveTarget(billed, rec.Quantity))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AddPackedQuantity records packed units and runs the completion cascade
// when the effective target is reached. The order update and every closure
// commit together or not at all.
func (s *OrderServiceImpl) AddPackedQuantity(ctx context.Context, req primary.AddPackedQuantityRequest) (*primary.AddPackedQuantityResponse, error) {
	var (
		resp   = &primary.AddPackedQuantityResponse{}
		events []effects.AuditEffect
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		before, err := tx.Orders().GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		billed, err := tx.WeeklyPlans().SumBilledQuantity(ctx, req.OrderID)
		if err != nil {
			return err
		}
		target := coreorder.EffectiveTarget(billed, before.Quantity)

		if r := coreorder.CanAddPacked(coreorder.PackContext{
			OrderID: req.OrderID,
			Packed:  before.PackedQuantity,
			Delta:   req.Delta,
			Target:  target,
		}); !r.Allowed {
			return r.Error()
		}

		packed := before.PackedQuantity + req.Delta
		if err := tx.Orders().SetPacked(ctx, req.OrderID, packed); err != nil {
			return err
		}

		if coreorder.ShouldTerminate(before.Status, packed, target) {
			closedIDs, closeEvents, err := s.terminate(ctx, tx, req.OrderID)
			if err != nil {
				return err
			}
			resp.Terminated = true
			resp.ClosedAssignmentIDs = closedIDs
			events = append(events, closeEvents...)
		}

		after, err := tx.Orders().GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		resp.Order = recordToOrder(after, target)
		events = append([]effects.AuditEffect{
			newAuditEffect(ctx, s.now(), effects.ActionUpdate, ordersTable, req.OrderID, before, after),
		}, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Dispatch(ctx, events)
	if resp.Terminated {
		ordersTerminatedTotal.Inc()
		s.logger.Info("order completed",
			zap.Int64("order_id", req.OrderID),
			zap.Int64("packed_quantity", resp.Order.PackedQuantity),
			zap.Int("assignments_closed", len(resp.ClosedAssignmentIDs)))
	}
	return resp, nil
}

// terminate marks the order terminated and closes the assignments open on
// it right now. Any failure aborts the whole cascade.
func (s *OrderServiceImpl) terminate(ctx context.Context, tx secondary.Tx, orderID int64) ([]int64, []effects.AuditEffect, error) {
	at := s.now()
	if err := tx.Orders().MarkTerminated(ctx, orderID, at); err != nil {
		return nil, nil, err
	}

	open, err := tx.Assignments().List(ctx, secondary.AssignmentFilters{OrderID: orderID, OpenOnly: true})
	if err != nil {
		return nil, nil, err
	}

	var (
		ids    []int64
		events []effects.AuditEffect
	)
	for _, rec := range open {
		endedAt := at
		if endedAt.Before(rec.StartedAt) {
			endedAt = rec.StartedAt
		}
		_, event, err := s.closer.CloseWithinTx(ctx, tx, rec, CloseParams{
			EndedAt: endedAt,
			Note:    coreassignment.OrderCompletedNote,
			Reason:  reasonOrderCompleted,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("order %d completion aborted: %w", orderID, err)
		}
		ids = append(ids, rec.ID)
		events = append(events, event)
	}
	return ids, events, nil
}

// SetBilledQuantity sets the billed quantity of one planning week.
func (s *OrderServiceImpl) SetBilledQuantity(ctx context.Context, req primary.SetBilledQuantityRequest) error {
	if req.BilledQuantity < 0 {
		return guard.Deny(guard.KindValidation, "billed quantity %d is negative", req.BilledQuantity).Error()
	}
	if req.WeekID <= 0 {
		return guard.Deny(guard.KindValidation, "missing week").Error()
	}

	var event effects.AuditEffect
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		if _, err := tx.Orders().GetByID(ctx, req.OrderID); err != nil {
			return err
		}
		beforeSum, err := tx.WeeklyPlans().SumBilledQuantity(ctx, req.OrderID)
		if err != nil {
			return err
		}
		plan := &secondary.WeeklyPlanRecord{OrderID: req.OrderID, WeekID: req.WeekID, BilledQuantity: req.BilledQuantity}
		if err := tx.WeeklyPlans().Upsert(ctx, plan); err != nil {
			return err
		}
		event = newAuditEffect(ctx, s.now(), effects.ActionUpdate, weeklyPlansTable, req.OrderID,
			map[string]int64{"billed_total": beforeSum}, plan)
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Dispatch(ctx, []effects.AuditEffect{event})
	return nil
}

func recordToOrder(rec *secondary.OrderRecord, target int64) *primary.Order {
	return &primary.Order{
		ID:              rec.ID,
		Reference:       rec.Reference,
		Quantity:        rec.Quantity,
		PackedQuantity:  rec.PackedQuantity,
		EffectiveTarget: target,
		Status:          rec.Status,
		CompletedAt:     rec.CompletedAt,
	}
}
