// Package worker runs background sweeps over the stock ledger.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/rivermark/aqualink/internal/events"
	"github.com/rivermark/aqualink/internal/service"
	"github.com/rivermark/aqualink/internal/telemetry"
)

// Config holds low-stock sweep configuration
type Config struct {
	// Interval is how often to scan the stock ledger.
	Interval time.Duration

	// Threshold flags items whose on-hand quantity is at or below it.
	Threshold int32

	// Metrics records the sweep result. Nil disables recording.
	Metrics *telemetry.BusinessMetrics
}

// LowStockWorker periodically scans inventory and broadcasts a refresh
// signal when items run low, so dashboards can surface restock needs
// without polling the ledger themselves.
type LowStockWorker struct {
	config    Config
	inventory service.InventoryService
	publisher events.Publisher
	logger    *slog.Logger
}

// NewLowStockWorker creates a low-stock sweep worker
func NewLowStockWorker(inventory service.InventoryService, publisher events.Publisher, config Config, logger *slog.Logger) *LowStockWorker {
	// Set defaults
	if config.Interval == 0 {
		config.Interval = 5 * time.Minute
	}
	if config.Threshold == 0 {
		config.Threshold = 10
	}

	return &LowStockWorker{
		config:    config,
		inventory: inventory,
		publisher: publisher,
		logger:    logger,
	}
}

// Start runs sweeps until the context is cancelled.
func (w *LowStockWorker) Start(ctx context.Context) error {
	w.logger.Info("low-stock worker starting",
		"interval", w.config.Interval,
		"threshold", w.config.Threshold,
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("low-stock worker shutting down")
			return ctx.Err()

		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep performs one scan of the stock ledger.
func (w *LowStockWorker) sweep(ctx context.Context) {
	items, err := w.inventory.LowStock(ctx, w.config.Threshold)
	if err != nil {
		w.logger.Error("low-stock sweep failed", "error", err)
		return
	}
	w.config.Metrics.SetLowStockItems(len(items))
	if len(items) == 0 {
		return
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
		w.logger.Warn("item running low",
			"item", item.Name,
			"on_hand", item.Quantity,
			"threshold", w.config.Threshold,
		)
	}

	err = w.publisher.PublishInventoryUpdated(ctx, events.InventoryUpdated{
		Action:     events.ActionLowStock,
		ItemNames:  names,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		w.logger.Error("failed to publish low-stock event", "error", err)
	}
}
