package routes

import (
	"github.com/labstack/echo/v4"

	"electric-service/internal/controllers"
	"electric-service/pkg/middleware"
)

func runReportRouter(api *echo.Group, ctrl *controllers.ReportController, authMW *middleware.AuthMiddleware) {
	api.GET("/reports/orders", ctrl.GetOrdersReport, authMW.Auth)
	api.OPTIONS("/reports/orders", middleware.Preflight("GET, OPTIONS", "Authorization"))
}
