package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/atelier/internal/ports/secondary"
)

// OrderRepository implements secondary.OrderRepository.
type OrderRepository struct {
	db sqlx.ExtContext
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db sqlx.ExtContext) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ secondary.OrderRepository = (*OrderRepository)(nil)

type orderRow struct {
	ID             int64          `db:"id"`
	Reference      string         `db:"reference"`
	Quantity       int64          `db:"quantity"`
	PackedQuantity int64          `db:"packed_quantity"`
	Status         string         `db:"status"`
	CompletedAt    sql.NullString `db:"completed_at"`
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *secondary.OrderRecord) (int64, error) {
	status := o.Status
	if status == "" {
		status = "open"
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		"INSERT INTO orders (reference, quantity, packed_quantity, status) VALUES (?, ?, ?, ?) RETURNING id"),
		o.Reference, o.Quantity, o.PackedQuantity, status,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("%w: order reference %q already exists", secondary.ErrDuplicate, o.Reference)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*secondary.OrderRecord, error) {
	var row orderRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(
		"SELECT id, reference, quantity, packed_quantity, status, completed_at FROM orders WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %d", secondary.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	record := &secondary.OrderRecord{
		ID:             row.ID,
		Reference:      row.Reference,
		Quantity:       row.Quantity,
		PackedQuantity: row.PackedQuantity,
		Status:         row.Status,
	}
	if row.CompletedAt.Valid {
		completedAt, err := parseInstant(row.CompletedAt.String)
		if err != nil {
			return nil, err
		}
		record.CompletedAt = &completedAt
	}
	return record, nil
}

// SetPacked overwrites the packed quantity.
func (r *OrderRepository) SetPacked(ctx context.Context, id int64, packed int64) error {
	return r.exec(ctx, id, "UPDATE orders SET packed_quantity = ? WHERE id = ?", packed, id)
}

// MarkTerminated moves the order to its terminal status.
func (r *OrderRepository) MarkTerminated(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, id, "UPDATE orders SET status = 'terminated', completed_at = ? WHERE id = ?", formatInstant(at), id)
}

func (r *OrderRepository) exec(ctx context.Context, id int64, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: order %d", secondary.ErrNotFound, id)
	}
	return nil
}

// WeeklyPlanRepository implements secondary.WeeklyPlanRepository.
type WeeklyPlanRepository struct {
	db sqlx.ExtContext
}

// NewWeeklyPlanRepository creates a new weekly plan repository.
func NewWeeklyPlanRepository(db sqlx.ExtContext) *WeeklyPlanRepository {
	return &WeeklyPlanRepository{db: db}
}

var _ secondary.WeeklyPlanRepository = (*WeeklyPlanRepository)(nil)

// SumBilledQuantity returns the billed quantity over every week of an order.
func (r *WeeklyPlanRepository) SumBilledQuantity(ctx context.Context, orderID int64) (int64, error) {
	var sum int64
	err := sqlx.GetContext(ctx, r.db, &sum, r.db.Rebind(
		"SELECT COALESCE(SUM(billed_quantity), 0) FROM weekly_plans WHERE order_id = ?"), orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum billed quantity: %w", err)
	}
	return sum, nil
}

// Upsert sets the billed quantity of one week.
func (r *WeeklyPlanRepository) Upsert(ctx context.Context, p *secondary.WeeklyPlanRecord) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO weekly_plans (order_id, week_id, billed_quantity) VALUES (?, ?, ?)
		 ON CONFLICT (order_id, week_id) DO UPDATE SET billed_quantity = excluded.billed_quantity`),
		p.OrderID, p.WeekID, p.BilledQuantity,
	)
	if err != nil {
		return fmt.Errorf("failed to save weekly plan: %w", err)
	}
	return nil
}

// ListByOrder returns the weekly plans of an order.
func (r *WeeklyPlanRepository) ListByOrder(ctx context.Context, orderID int64) ([]*secondary.WeeklyPlanRecord, error) {
	var plans []*secondary.WeeklyPlanRecord
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(
		"SELECT order_id, week_id, billed_quantity FROM weekly_plans WHERE order_id = ? ORDER BY week_id"), orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &secondary.WeeklyPlanRecord{}
		if err := rows.Scan(&p.OrderID, &p.WeekID, &p.BilledQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan weekly plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
