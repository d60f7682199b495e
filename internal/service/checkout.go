package service

import (
	"context"
	"time"

	"github.com/rivermark/aqualink/internal/cart"
	"github.com/rivermark/aqualink/internal/domain"
	"github.com/rivermark/aqualink/internal/telemetry"
)

// Storefront checkouts arrive without an explicit delivery date; promise a
// standard window instead.
const defaultDeliveryLeadTime = 3 * 24 * time.Hour

// CheckoutPlacer adapts OrderService into the cart store's order-creation
// collaborator: a storefront checkout becomes a Direct-source order.
type CheckoutPlacer struct {
	orders  OrderService
	metrics *telemetry.BusinessMetrics
}

// Compile-time check that CheckoutPlacer implements cart.OrderPlacer.
var _ cart.OrderPlacer = (*CheckoutPlacer)(nil)

// NewCheckoutPlacer creates the storefront order collaborator. A nil
// metrics disables recording.
func NewCheckoutPlacer(orders OrderService, metrics *telemetry.BusinessMetrics) *CheckoutPlacer {
	return &CheckoutPlacer{orders: orders, metrics: metrics}
}

func (p *CheckoutPlacer) PlaceOrder(ctx context.Context, req cart.CheckoutRequest) (*cart.CheckoutResult, error) {
	deliveryDate := req.Customer.DeliveryDate
	if deliveryDate.IsZero() {
		deliveryDate = time.Now().UTC().Add(defaultDeliveryLeadTime)
	}

	create := CreateOrderRequest{
		BranchName:   "Online Store",
		Location:     req.Customer.Address,
		ContactName:  req.Customer.Name,
		ContactPhone: req.Customer.Phone,
		Priority:     domain.PriorityMedium,
		ExpectedDate: deliveryDate,
		Source:       domain.SourceDirect,
	}
	for _, item := range req.Items {
		create.Items = append(create.Items, CreateOrderItem{
			ItemName:  item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := p.orders.Create(ctx, create)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordCheckoutCompleted()

	return &cart.CheckoutResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}, nil
}
