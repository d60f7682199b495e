package service

import (
	"context"
	"log/slog"

	"github.com/rivermark/aqualink/internal/domain"
	"github.com/rivermark/aqualink/internal/repository"
)

// InventoryService exposes the stock ledger to operators and dashboards.
// It never reserves stock; only OrderService.Accept does that.
type InventoryService interface {
	// List returns all stock records ordered by name.
	List(ctx context.Context) ([]domain.InventoryItem, error)

	// Get retrieves a single stock record.
	Get(ctx context.Context, name string) (*domain.InventoryItem, error)

	// Set overwrites an item's on-hand quantity (operator restock or
	// correction), creating the record if needed.
	Set(ctx context.Context, name string, quantity int32) (*domain.InventoryItem, error)

	// LowStock returns items at or below the threshold.
	LowStock(ctx context.Context, threshold int32) ([]domain.InventoryItem, error)
}

type inventoryService struct {
	repo   repository.Repository
	logger *slog.Logger
}

// NewInventoryService creates an InventoryService instance.
func NewInventoryService(repo repository.Repository, logger *slog.Logger) InventoryService {
	return &inventoryService{repo: repo, logger: logger}
}

func (s *inventoryService) List(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, asUnavailable(err, "inventory.list", "failed to list inventory")
	}
	return items, nil
}

func (s *inventoryService) Get(ctx context.Context, name string) (*domain.InventoryItem, error) {
	item, err := s.repo.GetInventoryItem(ctx, name)
	if err != nil {
		return nil, asUnavailable(err, "inventory.get", "failed to load inventory item")
	}
	return item, nil
}

func (s *inventoryService) Set(ctx context.Context, name string, quantity int32) (*domain.InventoryItem, error) {
	if name == "" {
		return nil, domain.NewValidationError("inventory.set", "name", "is required")
	}
	if quantity < 0 {
		return nil, domain.NewValidationError("inventory.set", "quantity", "must not be negative")
	}

	item, err := s.repo.UpsertInventoryItem(ctx, name, quantity)
	if err != nil {
		return nil, asUnavailable(err, "inventory.set", "failed to save inventory item")
	}

	s.logger.Info("inventory quantity set", "item", name, "quantity", quantity)
	return item, nil
}

func (s *inventoryService) LowStock(ctx context.Context, threshold int32) ([]domain.InventoryItem, error) {
	items, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, asUnavailable(err, "inventory.low_stock", "failed to list low stock")
	}
	return items, nil
}
