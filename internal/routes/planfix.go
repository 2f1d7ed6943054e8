package routes

import (
	"github.com/labstack/echo/v4"

	"electric-service/internal/controllers"
	"electric-service/pkg/middleware"
)

func runPlanfixRouter(api *echo.Group, ctrl *controllers.PlanfixController) {
	api.POST("/planfix", ctrl.CreateTask)
	api.POST("/planfix/webhook", ctrl.Webhook)

	api.OPTIONS("/planfix", middleware.Preflight("POST, OPTIONS", "Content-Type"))
	api.OPTIONS("/planfix/webhook", middleware.Preflight("POST, OPTIONS", "Content-Type"))
}
