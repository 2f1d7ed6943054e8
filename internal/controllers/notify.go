// Файл: internal/controllers/notify.go
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

type NotifyController struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotifyController(notificationService services.NotificationServiceInterface, logger *zap.Logger) *NotifyController {
	return &NotifyController{notificationService: notificationService, logger: logger}
}

func (c *NotifyController) SendTelegram(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.TelegramNotifyDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	messageID, err := c.notificationService.NotifyOrderTelegram(reqCtx, payload.ChatID, payload.Order)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось отправить уведомление", err, nil),
			c.logger,
		)
	}

	return ctx.JSON(http.StatusOK, dto.TelegramNotifyResponseDTO{Success: true, MessageID: messageID})
}

func (c *NotifyController) SendEmail(ctx echo.Context) error {
	var payload dto.SendEmailDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.notificationService.SendEmail(payload.To, payload.Subject, payload.HTML); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось отправить письмо", err, nil),
			c.logger,
		)
	}

	return ctx.JSON(http.StatusOK, dto.StatusResponseDTO{Success: true, Message: "Письмо отправлено"})
}

func (c *NotifyController) SendFeedback(ctx echo.Context) error {
	var payload dto.FeedbackDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.notificationService.SendFeedback(payload.Feedback, payload.Name, payload.Contact); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось отправить обратную связь", err, nil),
			c.logger,
		)
	}

	return ctx.JSON(http.StatusOK, dto.StatusResponseDTO{Success: true, Message: "Спасибо за обратную связь"})
}

// ForwardToSheets пробрасывает произвольный payload заказа в Google Sheets.
func (c *NotifyController) ForwardToSheets(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload map[string]interface{}
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}

	if err := c.notificationService.ForwardToSheets(reqCtx, payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось отправить данные в таблицу", err, nil),
			c.logger,
		)
	}

	return ctx.JSON(http.StatusOK, dto.StatusResponseDTO{Success: true})
}
