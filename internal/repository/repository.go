// Package repository defines the persistence contract for orders and
// inventory, with PostgreSQL and in-memory drivers.
package repository

import (
	"context"
	"time"

	"github.com/rivermark/aqualink/internal/domain"
)

// Repository is the storage surface consumed by the order and inventory
// services. Drivers return the domain sentinel errors (ErrOrderNotFound,
// ErrItemNotFound, ErrInvalidTransition, ErrInsufficientStock) for
// business-rule failures and plain wrapped errors for infrastructure ones.
type Repository interface {
	// CreateOrder persists a new order with its line items.
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder retrieves an order by ID.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// GetOrderByNumber retrieves an order by its server-assigned number.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)

	// ListOrders returns orders newest first, optionally filtered by status.
	ListOrders(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error)

	// UpdateOrderStatus unconditionally overwrites the order's status.
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)

	// DeleteOrder permanently removes an order.
	DeleteOrder(ctx context.Context, orderID string) error

	// AcceptOrder atomically transitions a Pending order to Accepted,
	// reserving inventory for every line item or changing nothing at all.
	// Concurrent accepts on the same order yield at most one success.
	AcceptOrder(ctx context.Context, orderID, actor string, at time.Time) (*domain.Order, []domain.InventoryAdjustment, error)

	// ListInventory returns all stock records ordered by name.
	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)

	// GetInventoryItem retrieves a stock record by name.
	GetInventoryItem(ctx context.Context, name string) (*domain.InventoryItem, error)

	// UpsertInventoryItem sets the on-hand quantity for an item, creating
	// the record if needed. This is the operator restock channel; only
	// AcceptOrder reserves stock.
	UpsertInventoryItem(ctx context.Context, name string, quantity int32) (*domain.InventoryItem, error)

	// ListLowStock returns items whose on-hand quantity is at or below the
	// threshold.
	ListLowStock(ctx context.Context, threshold int32) ([]domain.InventoryItem, error)
}
