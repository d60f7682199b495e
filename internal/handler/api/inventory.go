package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rivermark/aqualink/internal/domain"
	"github.com/rivermark/aqualink/internal/service"
)

// InventoryHandler serves the stock ledger endpoints.
type InventoryHandler struct {
	inventory service.InventoryService
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(inventory service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// List handles GET /api/inventory
func (h *InventoryHandler) List(c echo.Context) error {
	items, err := h.inventory.List(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/inventory/:name
func (h *InventoryHandler) Get(c echo.Context) error {
	item, err := h.inventory.Get(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

type setInventoryRequest struct {
	Quantity int32 `json:"quantity"`
}

// Set handles PUT /api/inventory/:name
func (h *InventoryHandler) Set(c echo.Context) error {
	var req setInventoryRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("inventory.set", "invalid request body")
	}

	item, err := h.inventory.Set(c.Request().Context(), c.Param("name"), req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}
