package routes

import (
	"github.com/labstack/echo/v4"

	"electric-service/internal/controllers"
	"electric-service/pkg/middleware"
)

func runNotifyRouter(api *echo.Group, ctrl *controllers.NotifyController) {
	api.POST("/notify/telegram", ctrl.SendTelegram)
	api.POST("/notify/email", ctrl.SendEmail)
	api.POST("/feedback", ctrl.SendFeedback)
	api.POST("/sheets", ctrl.ForwardToSheets)

	api.OPTIONS("/notify/telegram", middleware.Preflight("POST, OPTIONS", "Content-Type"))
	api.OPTIONS("/notify/email", middleware.Preflight("POST, OPTIONS", "Content-Type"))
	api.OPTIONS("/feedback", middleware.Preflight("POST, OPTIONS", "Content-Type"))
	api.OPTIONS("/sheets", middleware.Preflight("POST, OPTIONS", "Content-Type"))
}
