package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
// All methods are safe on a nil receiver so tests and tools can skip metrics
// entirely.
type BusinessMetrics struct {
	// Orders
	OrdersCreated  *prometheus.CounterVec
	OrdersAccepted prometheus.Counter
	AcceptRejected *prometheus.CounterVec
	OrderValue     prometheus.Histogram

	// Checkout
	CheckoutCompleted prometheus.Counter

	// Inventory
	LowStockItems prometheus.Gauge
}

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "aqualink"
	}

	subsystem := "business"

	return &BusinessMetrics{
		OrdersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
			[]string{"source"},
		),
		OrdersAccepted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_accepted_total",
				Help:      "Total orders accepted with inventory reserved",
			},
		),
		AcceptRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_accepts_rejected_total",
				Help:      "Total acceptance attempts rejected",
			},
			[]string{"reason"}, // insufficient_stock, invalid_transition, not_found, other
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order value in minor currency units",
				Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
			},
		),
		CheckoutCompleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkouts_completed_total",
				Help:      "Total storefront checkouts that produced an order",
			},
		),
		LowStockItems: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "low_stock_items",
				Help:      "Items at or below the low-stock threshold, per latest sweep",
			},
		),
	}
}

// RecordOrderCreated counts a new order and observes its value.
func (m *BusinessMetrics) RecordOrderCreated(source string, valueMinorUnits int64) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(source).Inc()
	m.OrderValue.Observe(float64(valueMinorUnits))
}

// RecordOrderAccepted counts a successful acceptance.
func (m *BusinessMetrics) RecordOrderAccepted() {
	if m == nil {
		return
	}
	m.OrdersAccepted.Inc()
}

// RecordAcceptRejected counts a failed acceptance attempt.
func (m *BusinessMetrics) RecordAcceptRejected(reason string) {
	if m == nil {
		return
	}
	m.AcceptRejected.WithLabelValues(reason).Inc()
}

// RecordCheckoutCompleted counts a storefront checkout.
func (m *BusinessMetrics) RecordCheckoutCompleted() {
	if m == nil {
		return
	}
	m.CheckoutCompleted.Inc()
}

// SetLowStockItems records the size of the latest low-stock sweep result.
func (m *BusinessMetrics) SetLowStockItems(n int) {
	if m == nil {
		return
	}
	m.LowStockItems.Set(float64(n))
}
