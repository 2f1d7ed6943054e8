// Файл: internal/controllers/planfix.go
package controllers

import (
	"net/http"

	"electric-service/internal/dto"
	"electric-service/internal/services"
	apperrors "electric-service/pkg/errors"
	"electric-service/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PlanfixController struct {
	syncService services.SyncServiceInterface
	logger      *zap.Logger
}

func NewPlanfixController(syncService services.SyncServiceInterface, logger *zap.Logger) *PlanfixController {
	return &PlanfixController{syncService: syncService, logger: logger}
}

func (c *PlanfixController) CreateTask(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreatePlanfixTaskDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.syncService.CreateTask(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, res)
}

// Webhook принимает события Планфикса. Формат тела определяется по полям,
// валидации через validator нет: неполные события пропускаются с 200.
func (c *PlanfixController) Webhook(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.PlanfixWebhookDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело вебхука", err, nil),
			c.logger,
		)
	}

	res, err := c.syncService.ProcessWebhook(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, res)
}
