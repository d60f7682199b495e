// Package events broadcasts inventory-updated signals so external
// inventory views can refresh after stock-affecting operations.
package events

import (
	"context"
	"sync"
	"time"
)

// Inventory event actions.
const (
	ActionOrderAccepted  = "order_accepted"
	ActionOrderShipped   = "order_shipped"
	ActionOrderDelivered = "order_delivered"
	ActionLowStock       = "low_stock"
)

// InventoryUpdated announces that inventory-affecting state changed.
type InventoryUpdated struct {
	Action     string    `json:"action"`
	OrderID    string    `json:"orderId,omitempty"`
	ItemNames  []string  `json:"itemNames,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher broadcasts inventory events to interested collaborators.
type Publisher interface {
	PublishInventoryUpdated(ctx context.Context, event InventoryUpdated) error
}

// Capture is an in-process Publisher that records events for tests and
// single-binary development runs.
type Capture struct {
	mu     sync.Mutex
	events []InventoryUpdated
}

// NewCapture creates an empty capturing publisher.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) PublishInventoryUpdated(_ context.Context, event InventoryUpdated) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (c *Capture) Events() []InventoryUpdated {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]InventoryUpdated, len(c.events))
	copy(out, c.events)
	return out
}
