package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivermark/aqualink/internal/domain"
	"github.com/rivermark/aqualink/internal/repository"
)

func TestInventoryService_Set(t *testing.T) {
	repo := repository.NewMemory()
	svc := NewInventoryService(repo, testLogger())
	ctx := context.Background()

	item, err := svc.Set(ctx, "5 Gallon Jug", 40)
	require.NoError(t, err)
	assert.Equal(t, "5 Gallon Jug", item.Name)
	assert.Equal(t, int32(40), item.Quantity)

	item, err = svc.Set(ctx, "5 Gallon Jug", 12)
	require.NoError(t, err)
	assert.Equal(t, int32(12), item.Quantity)
}

func TestInventoryService_SetValidation(t *testing.T) {
	repo := repository.NewMemory()
	svc := NewInventoryService(repo, testLogger())
	ctx := context.Background()

	tests := []struct {
		name     string
		itemName string
		quantity int32
		field    string
	}{
		{"empty name", "", 5, "name"},
		{"negative quantity", "Standard Filter", -1, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Set(ctx, tt.itemName, tt.quantity)
			require.Error(t, err)
			require.True(t, domain.IsValidationError(err))
			fields := domain.GetValidationFields(err)
			assert.Contains(t, fields, tt.field)
		})
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "rejected writes must not touch the ledger")
}
