package routes

import (
	"github.com/labstack/echo/v4"

	"electric-service/internal/controllers"
	"electric-service/pkg/middleware"
)

func runCatalogRouter(api *echo.Group, ctrl *controllers.CatalogController) {
	api.GET("/services", ctrl.GetCatalog)
	api.OPTIONS("/services", middleware.Preflight("GET, OPTIONS", "Content-Type"))
}
