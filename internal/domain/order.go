package domain

import "time"

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusAccepted   OrderStatus = "Accepted"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// ValidStatus reports whether s is one of the enumerated order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderPriority enumerates delivery priorities for restock requests.
type OrderPriority string

const (
	PriorityLow    OrderPriority = "Low"
	PriorityMedium OrderPriority = "Medium"
	PriorityHigh   OrderPriority = "High"
	PriorityUrgent OrderPriority = "Urgent"
)

// ValidPriority reports whether p is one of the enumerated priorities.
func ValidPriority(p OrderPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// OrderSource distinguishes storefront checkouts from branch restock requests.
type OrderSource string

const (
	SourceDirect        OrderSource = "Direct"
	SourceBranchRequest OrderSource = "Branch Request"
)

// LineItem is one (item, quantity) pair within an order.
type LineItem struct {
	ItemName  string `json:"itemName"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice,omitempty"` // minor currency units, zero for branch restocks
}

// Order is a persisted purchase or restock request tracked through a
// status lifecycle. Only Accept moves inventory; see service.OrderService.
type Order struct {
	ID           string        `json:"id"`
	OrderNumber  string        `json:"orderNumber"`
	BranchName   string        `json:"branchName"`
	Location     string        `json:"location"`
	ContactName  string        `json:"contactName"`
	ContactPhone string        `json:"contactPhone"`
	Items        []LineItem    `json:"items"`
	Priority     OrderPriority `json:"priority"`
	ExpectedDate time.Time     `json:"expectedDeliveryDate"`
	Status       OrderStatus   `json:"status"`
	Source       OrderSource   `json:"source"`
	CreatedAt    time.Time     `json:"createdAt"`
	AcceptedAt   *time.Time    `json:"acceptedAt,omitempty"`
	AcceptedBy   string        `json:"acceptedBy,omitempty"`
}

// InventoryItem is a named stock record with an on-hand quantity.
// Accept is the only operation that reserves (decrements) it.
type InventoryItem struct {
	Name      string    `json:"name"`
	Quantity  int32     `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InventoryAdjustment records one reservation applied during acceptance.
type InventoryAdjustment struct {
	ItemName string `json:"itemName"`
	Reserved int32  `json:"reserved"`
	OnHand   int32  `json:"onHand"`
}

// Order-related domain errors.
var (
	ErrOrderNotFound     = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrItemNotFound      = &Error{Code: ENOTFOUND, Message: "Inventory item not found"}
	ErrInvalidTransition = &Error{Code: ECONFLICT, Message: "Order status does not allow this transition"}
	ErrInsufficientStock = &Error{Code: ECONFLICT, Message: "Insufficient stock for one or more items"}
	ErrEmptyCart         = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrInvalidQuantity   = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)
