package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Deps bundles the handlers the API routes need.
type Deps struct {
	Cart      *CartHandler
	Orders    *OrderHandler
	Inventory *InventoryHandler
}

// RegisterRoutes mounts all API routes on the echo instance.
func RegisterRoutes(e *echo.Echo, deps Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	api := e.Group("/api")

	api.GET("/cart", deps.Cart.View)
	api.POST("/cart/items", deps.Cart.AddItem)
	api.PUT("/cart/items/:productID", deps.Cart.SetQuantity)
	api.DELETE("/cart/items/:productID", deps.Cart.RemoveItem)
	api.DELETE("/cart", deps.Cart.Clear)
	api.POST("/cart/checkout", deps.Cart.Checkout)

	api.POST("/orders", deps.Orders.Create)
	api.GET("/orders", deps.Orders.List)
	api.GET("/orders/:id", deps.Orders.Get)
	api.POST("/orders/:id/accept", deps.Orders.Accept)
	api.PUT("/orders/:id/status", deps.Orders.UpdateStatus)
	api.DELETE("/orders/:id", deps.Orders.Delete)

	api.GET("/inventory", deps.Inventory.List)
	api.GET("/inventory/:name", deps.Inventory.Get)
	api.PUT("/inventory/:name", deps.Inventory.Set)
}
