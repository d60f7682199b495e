package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rivermark/aqualink/internal/domain"
)

// DB is the subset of pgxpool.Pool the repository needs. Taking the
// interface instead of the concrete pool lets tests drive the SQL paths
// with a mock connection.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements Repository on a pgx connection pool.
type Postgres struct {
	pool DB
}

// Compile-time check that Postgres implements Repository.
var _ Repository = (*Postgres)(nil)

// NewPostgres creates a PostgreSQL-backed repository.
func NewPostgres(pool DB) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, branch_name, location, contact_name, contact_phone,
			priority, expected_date, status, source, created_at, accepted_at, accepted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		order.ID, order.OrderNumber, order.BranchName, order.Location, order.ContactName,
		order.ContactPhone, order.Priority, order.ExpectedDate, order.Status, order.Source,
		order.CreatedAt, order.AcceptedAt, order.AcceptedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, item_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			order.ID, item.ItemName, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func (p *Postgres) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return p.getOrder(ctx, `WHERE id = $1`, orderID)
}

func (p *Postgres) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return p.getOrder(ctx, `WHERE order_number = $1`, orderNumber)
}

func (p *Postgres) getOrder(ctx context.Context, where string, arg any) (*domain.Order, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, order_number, branch_name, location, contact_name, contact_phone,
			priority, expected_date, status, source, created_at, accepted_at, accepted_by
		FROM orders `+where, arg)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := p.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (p *Postgres) ListOrders(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	query := `
		SELECT id, order_number, branch_name, location, contact_name, contact_phone,
			priority, expected_date, status, source, created_at, accepted_at, accepted_by
		FROM orders`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	for i := range orders {
		if err := p.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	tag, err := p.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return p.GetOrder(ctx, orderID)
}

func (p *Postgres) DeleteOrder(ctx context.Context, orderID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// AcceptOrder runs the whole accept transition in one transaction. The
// order row is locked first so concurrent accepts serialize on it; the
// loser re-reads a non-Pending status and fails with ErrInvalidTransition.
// Line items are reserved with a conditional decrement, so a shortfall on
// any item aborts the transaction with no inventory changes.
func (p *Postgres) AcceptOrder(ctx context.Context, orderID, actor string, at time.Time) (*domain.Order, []domain.InventoryAdjustment, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status domain.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if status != domain.StatusPending {
		return nil, nil, domain.ErrInvalidTransition
	}

	// Deterministic item order avoids lock cycles between concurrent accepts.
	rows, err := tx.Query(ctx, `
		SELECT item_name, quantity FROM order_items
		WHERE order_id = $1 ORDER BY item_name`, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load order items: %w", err)
	}

	type reservation struct {
		name string
		qty  int32
	}
	var reservations []reservation
	for rows.Next() {
		var r reservation
		if err := rows.Scan(&r.name, &r.qty); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		reservations = append(reservations, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read order items: %w", err)
	}

	var adjustments []domain.InventoryAdjustment
	for _, r := range reservations {
		var onHand int32
		err := tx.QueryRow(ctx, `
			UPDATE inventory_items
			SET quantity = quantity - $1, updated_at = $3
			WHERE name = $2 AND quantity >= $1
			RETURNING quantity`, r.qty, r.name, at).Scan(&onHand)
		if err == nil {
			adjustments = append(adjustments, domain.InventoryAdjustment{
				ItemName: r.name,
				Reserved: r.qty,
				OnHand:   onHand,
			})
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("failed to reserve %q: %w", r.name, err)
		}

		// No row matched: either the item does not exist or stock is short.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE name = $1)`, r.name).Scan(&exists); err != nil {
			return nil, nil, fmt.Errorf("failed to check inventory for %q: %w", r.name, err)
		}
		if !exists {
			return nil, nil, domain.ErrItemNotFound
		}
		return nil, nil, domain.ErrInsufficientStock
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET status = $2, accepted_at = $3, accepted_by = $4
		WHERE id = $1`, orderID, domain.StatusAccepted, at, actor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to mark order accepted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit acceptance: %w", err)
	}

	order, err := p.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, adjustments, nil
}

func (p *Postgres) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	return p.listInventory(ctx, `SELECT name, quantity, updated_at FROM inventory_items ORDER BY name`)
}

func (p *Postgres) ListLowStock(ctx context.Context, threshold int32) ([]domain.InventoryItem, error) {
	return p.listInventory(ctx,
		`SELECT name, quantity, updated_at FROM inventory_items WHERE quantity <= $1 ORDER BY name`, threshold)
}

func (p *Postgres) listInventory(ctx context.Context, query string, args ...any) ([]domain.InventoryItem, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.Name, &item.Quantity, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	return items, nil
}

func (p *Postgres) GetInventoryItem(ctx context.Context, name string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := p.pool.QueryRow(ctx,
		`SELECT name, quantity, updated_at FROM inventory_items WHERE name = $1`, name).
		Scan(&item.Name, &item.Quantity, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

func (p *Postgres) UpsertInventoryItem(ctx context.Context, name string, quantity int32) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := p.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (name, quantity, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING name, quantity, updated_at`, name, quantity).
		Scan(&item.Name, &item.Quantity, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert inventory item: %w", err)
	}
	return &item, nil
}

func (p *Postgres) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := p.pool.Query(ctx, `
		SELECT item_name, quantity, unit_price FROM order_items
		WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	order.Items = nil
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ItemName, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read order items: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.BranchName, &order.Location,
		&order.ContactName, &order.ContactPhone, &order.Priority, &order.ExpectedDate,
		&order.Status, &order.Source, &order.CreatedAt, &order.AcceptedAt, &order.AcceptedBy,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
