package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rivermark/aqualink/internal/domain"
)

func seedOrder(t *testing.T, m *Memory, id string, createdAt time.Time) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:          id,
		OrderNumber: "ORD-20260829-" + id,
		BranchName:  "Harbor Branch",
		Status:      domain.StatusPending,
		CreatedAt:   createdAt,
		Items: []domain.LineItem{
			{ItemName: "5 Gallon Jug", Quantity: 2, UnitPrice: 500},
		},
	}
	if err := m.CreateOrder(context.Background(), order); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	return order
}

func TestMemory_ListOrdersNewestFirst(t *testing.T) {
	m := NewMemory()
	now := time.Now().UTC()

	seedOrder(t, m, "a", now.Add(-2*time.Hour))
	seedOrder(t, m, "b", now)
	seedOrder(t, m, "c", now.Add(-1*time.Hour))

	orders, err := m.ListOrders(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("ListOrders() returned %d orders, want 3", len(orders))
	}
	for i, want := range []string{"b", "c", "a"} {
		if orders[i].ID != want {
			t.Errorf("orders[%d].ID = %q, want %q", i, orders[i].ID, want)
		}
	}
}

func TestMemory_AcceptOrderIsolation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.UpsertInventoryItem(ctx, "5 Gallon Jug", 5); err != nil {
		t.Fatalf("UpsertInventoryItem() error = %v", err)
	}
	order := seedOrder(t, m, "a", time.Now().UTC())

	accepted, adjustments, err := m.AcceptOrder(ctx, order.ID, "ops", time.Now().UTC())
	if err != nil {
		t.Fatalf("AcceptOrder() error = %v", err)
	}
	if accepted.Status != domain.StatusAccepted {
		t.Errorf("status = %q, want %q", accepted.Status, domain.StatusAccepted)
	}
	if len(adjustments) != 1 || adjustments[0].OnHand != 3 {
		t.Errorf("adjustments = %+v, want one with OnHand 3", adjustments)
	}

	// Mutating the returned order must not leak into the store
	accepted.Status = domain.StatusCancelled
	stored, err := m.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if stored.Status != domain.StatusAccepted {
		t.Errorf("stored status = %q after caller mutation, want %q", stored.Status, domain.StatusAccepted)
	}
}

func TestMemory_AcceptOrderMissingOrder(t *testing.T) {
	m := NewMemory()

	_, _, err := m.AcceptOrder(context.Background(), "missing", "ops", time.Now().UTC())
	if err != domain.ErrOrderNotFound {
		t.Errorf("AcceptOrder() error = %v, want ErrOrderNotFound", err)
	}
}

func TestMemory_ListLowStock(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for name, qty := range map[string]int32{
		"5 Gallon Jug":    2,
		"Standard Filter": 10,
		"Pump Kit":        25,
	} {
		if _, err := m.UpsertInventoryItem(ctx, name, qty); err != nil {
			t.Fatalf("UpsertInventoryItem(%q) error = %v", name, err)
		}
	}

	low, err := m.ListLowStock(ctx, 10)
	if err != nil {
		t.Fatalf("ListLowStock() error = %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("ListLowStock() returned %d items, want 2", len(low))
	}
	// Sorted by name
	if low[0].Name != "5 Gallon Jug" || low[1].Name != "Standard Filter" {
		t.Errorf("ListLowStock() = %+v", low)
	}
}
