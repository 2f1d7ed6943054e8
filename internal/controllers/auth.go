// Файл: internal/controllers/auth.go
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

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

func (c *AuthController) LoginWithTelegram(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.TelegramLoginDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.authService.LoginWithTelegram(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, res)
}
