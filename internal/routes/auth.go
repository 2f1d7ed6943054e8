package routes

import (
	"github.com/labstack/echo/v4"

	"electric-service/internal/controllers"
	"electric-service/pkg/middleware"
)

func runAuthRouter(api *echo.Group, ctrl *controllers.AuthController) {
	api.POST("/auth/telegram", ctrl.LoginWithTelegram)
	api.OPTIONS("/auth/telegram", middleware.Preflight("POST, OPTIONS", "Content-Type"))
}
