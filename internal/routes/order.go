package routes

import (
	"github.com/labstack/echo/v4"

	"electric-service/internal/controllers"
	"electric-service/pkg/middleware"
)

func runOrderRouter(api *echo.Group, ctrl *controllers.OrderController, authMW *middleware.AuthMiddleware) {
	api.POST("/orders", ctrl.CreateOrder)
	api.GET("/orders", ctrl.GetOrders)
	api.GET("/orders/:id", ctrl.FindOrder)
	api.PUT("/orders/:id", ctrl.UpdateOrder)
	api.DELETE("/orders/:id", ctrl.DeleteOrder, authMW.Auth)

	// Смена статуса и публичное отслеживание делят один путь.
	api.POST("/orders/:id/status", ctrl.UpdateOrderStatus)
	api.GET("/orders/:id/status", ctrl.GetOrderTracking)

	api.OPTIONS("/orders", middleware.Preflight("GET, POST, OPTIONS", "Content-Type"))
	api.OPTIONS("/orders/:id", middleware.Preflight("GET, PUT, DELETE, OPTIONS", "Content-Type, Authorization"))
	api.OPTIONS("/orders/:id/status", middleware.Preflight("GET, POST, OPTIONS", "Content-Type"))
}
