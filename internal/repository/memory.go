package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rivermark/aqualink/internal/domain"
)

// Memory implements Repository entirely in process. It backs tests and
// single-binary development runs; a single mutex serializes every
// operation, which trivially gives AcceptOrder its all-or-nothing and
// at-most-once guarantees.
type Memory struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	inventory map[string]*domain.InventoryItem
}

// Compile-time check that Memory implements Repository.
var _ Repository = (*Memory)(nil)

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		orders:    make(map[string]*domain.Order),
		inventory: make(map[string]*domain.InventoryItem),
	}
}

func (m *Memory) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneOrder(order)
	m.orders[order.ID] = stored
	return nil
}

func (m *Memory) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (m *Memory) GetOrderByNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, order := range m.orders {
		if order.OrderNumber == orderNumber {
			return cloneOrder(order), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *Memory) ListOrders(_ context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var orders []domain.Order
	for _, order := range m.orders {
		if status != nil && order.Status != *status {
			continue
		}
		orders = append(orders, *cloneOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (m *Memory) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	order.Status = status
	return cloneOrder(order), nil
}

func (m *Memory) DeleteOrder(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(m.orders, orderID)
	return nil
}

func (m *Memory) AcceptOrder(_ context.Context, orderID, actor string, at time.Time) (*domain.Order, []domain.InventoryAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil, domain.ErrOrderNotFound
	}
	if order.Status != domain.StatusPending {
		return nil, nil, domain.ErrInvalidTransition
	}

	// Validate every line item before touching any quantity so a shortfall
	// leaves the whole ledger untouched.
	for _, item := range order.Items {
		stock, ok := m.inventory[item.ItemName]
		if !ok {
			return nil, nil, domain.ErrItemNotFound
		}
		if stock.Quantity < item.Quantity {
			return nil, nil, domain.ErrInsufficientStock
		}
	}

	adjustments := make([]domain.InventoryAdjustment, 0, len(order.Items))
	for _, item := range order.Items {
		stock := m.inventory[item.ItemName]
		stock.Quantity -= item.Quantity
		stock.UpdatedAt = at
		adjustments = append(adjustments, domain.InventoryAdjustment{
			ItemName: item.ItemName,
			Reserved: item.Quantity,
			OnHand:   stock.Quantity,
		})
	}

	order.Status = domain.StatusAccepted
	acceptedAt := at
	order.AcceptedAt = &acceptedAt
	order.AcceptedBy = actor

	return cloneOrder(order), adjustments, nil
}

func (m *Memory) ListInventory(_ context.Context) ([]domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.InventoryItem, 0, len(m.inventory))
	for _, item := range m.inventory {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *Memory) ListLowStock(_ context.Context, threshold int32) ([]domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []domain.InventoryItem
	for _, item := range m.inventory {
		if item.Quantity <= threshold {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *Memory) GetInventoryItem(_ context.Context, name string) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.inventory[name]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	out := *item
	return &out, nil
}

func (m *Memory) UpsertInventoryItem(_ context.Context, name string, quantity int32) (*domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.inventory[name]
	if !ok {
		item = &domain.InventoryItem{Name: name}
		m.inventory[name] = item
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()

	out := *item
	return &out, nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	out := *order
	if order.AcceptedAt != nil {
		at := *order.AcceptedAt
		out.AcceptedAt = &at
	}
	if len(order.Items) > 0 {
		out.Items = make([]domain.LineItem, len(order.Items))
		copy(out.Items, order.Items)
	}
	return &out
}
