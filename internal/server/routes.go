package server

import (
	"rushivan/internal/handler"
	"rushivan/internal/metrics"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	handler.NewHealthHandler(d.DB).RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	handler.NewOrderHandler(d.Orders).RegisterRoutes(e, d.JWTSecret)
	handler.NewPaymentHandler(d.Payments).RegisterRoutes(e)
	handler.NewCustomerOrderHandler(d.Orders).RegisterRoutes(e, d.JWTSecret)
	handler.NewAdminOrderHandler(d.AdminOrders).RegisterRoutes(e, d.JWTSecret)
}
