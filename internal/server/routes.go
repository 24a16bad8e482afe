package server

import (
	"marketplace/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Products.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Orders.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
}
