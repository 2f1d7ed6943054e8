// Файл: internal/controllers/catalog.go
package controllers

import (
	"net/http"

	"electric-service/internal/services"
	"electric-service/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CatalogController struct {
	catalogService services.CatalogServiceInterface
	logger         *zap.Logger
}

func NewCatalogController(catalogService services.CatalogServiceInterface, logger *zap.Logger) *CatalogController {
	return &CatalogController{catalogService: catalogService, logger: logger}
}

func (c *CatalogController) GetCatalog(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	catalog, err := c.catalogService.GetCatalog(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, catalog)
}
