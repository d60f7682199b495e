package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rivermark/aqualink/internal/cart"
	"github.com/rivermark/aqualink/internal/domain"
)

// CartHandler serves the session-scoped cart endpoints.
type CartHandler struct {
	registry *cart.Registry
	secure   bool
}

// NewCartHandler creates a cart handler over the session registry.
func NewCartHandler(registry *cart.Registry, secure bool) *CartHandler {
	return &CartHandler{registry: registry, secure: secure}
}

// cartResponse is the cart payload with totals recomputed per request.
type cartResponse struct {
	Items      []cart.Item `json:"items"`
	ItemCount  int32       `json:"itemCount"`
	TotalPrice int64       `json:"totalPrice"`
}

func newCartResponse(state cart.State) cartResponse {
	totals := state.Totals()
	items := state.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartResponse{
		Items:      items,
		ItemCount:  totals.ItemCount,
		TotalPrice: totals.TotalPrice,
	}
}

// View handles GET /api/cart
func (h *CartHandler) View(c echo.Context) error {
	store := h.store(c)
	return c.JSON(http.StatusOK, newCartResponse(store.State()))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Category  string `json:"category"`
	Quantity  int32  `json:"quantity"`
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("cart.add", "invalid request body")
	}
	if req.ProductID == "" {
		return domain.Invalid("cart.add", "productId is required")
	}
	if req.UnitPrice < 0 {
		return domain.Invalid("cart.add", "unitPrice must not be negative")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return domain.ErrInvalidQuantity
	}

	item := cart.Item{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Category:  req.Category,
	}
	state, err := h.store(c).Add(c.Request().Context(), item, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(state))
}

type setQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

// SetQuantity handles PUT /api/cart/items/:productID
// A quantity of zero or less removes the item.
func (h *CartHandler) SetQuantity(c echo.Context) error {
	var req setQuantityRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("cart.set_quantity", "invalid request body")
	}

	state, err := h.store(c).SetQuantity(c.Request().Context(), c.Param("productID"), req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(state))
}

// RemoveItem handles DELETE /api/cart/items/:productID
func (h *CartHandler) RemoveItem(c echo.Context) error {
	state, err := h.store(c).Remove(c.Request().Context(), c.Param("productID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(state))
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(c echo.Context) error {
	state, err := h.store(c).Clear(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(state))
}

type checkoutRequest struct {
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	DeliveryDate *time.Time `json:"deliveryDate"`
}

// Checkout handles POST /api/cart/checkout
func (h *CartHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("cart.checkout", "invalid request body")
	}

	info := cart.CustomerInfo{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if req.DeliveryDate != nil {
		info.DeliveryDate = *req.DeliveryDate
	}

	result, err := h.store(c).Checkout(c.Request().Context(), info)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *CartHandler) store(c echo.Context) *cart.Store {
	id := sessionID(c, h.secure)
	return h.registry.GetOrCreate(c.Request().Context(), id)
}
