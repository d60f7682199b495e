package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rivermark/aqualink/internal/domain"
	"github.com/rivermark/aqualink/internal/service"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(c echo.Context) error {
	var req service.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("order.create", "invalid request body")
	}

	order, err := h.orders.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// List handles GET /api/orders with an optional ?status= filter.
func (h *OrderHandler) List(c echo.Context) error {
	var status *domain.OrderStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := domain.OrderStatus(raw)
		if !domain.ValidStatus(s) {
			return domain.Errorf(domain.EINVALID, "order.list", "unknown status filter: %s", raw)
		}
		status = &s
	}

	orders, err := h.orders.List(c.Request().Context(), status)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

// Get handles GET /api/orders/:id
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

type acceptRequest struct {
	AcceptedBy string `json:"acceptedBy"`
}

// Accept handles POST /api/orders/:id/accept
func (h *OrderHandler) Accept(c echo.Context) error {
	var req acceptRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("order.accept", "invalid request body")
	}
	if req.AcceptedBy == "" {
		return domain.Invalid("order.accept", "acceptedBy is required")
	}

	result, err := h.orders.Accept(c.Request().Context(), c.Param("id"), req.AcceptedBy)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// UpdateStatus handles PUT /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("order.update_status", "invalid request body")
	}

	order, err := h.orders.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Delete handles DELETE /api/orders/:id
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.orders.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
