// Файл: internal/controllers/order.go
package controllers

import (
	"net/http"
	"strconv"

	"electric-service/internal/dto"
	"electric-service/internal/services"
	apperrors "electric-service/pkg/errors"
	"electric-service/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type OrderController struct {
	orderService services.OrderServiceInterface
	logger       *zap.Logger
}

func NewOrderController(orderService services.OrderServiceInterface, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.orderService.CreateOrder(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusCreated, res)
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter := dto.OrderFilterDTO{Status: ctx.QueryParam("status")}
	if raw := ctx.QueryParam("assigned_to"); raw != "" {
		executorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx,
				apperrors.NewHttpError(http.StatusBadRequest, "Неверный assigned_to", err,
					map[string]interface{}{"assigned_to": raw}),
				c.logger,
			)
		}
		filter.ExecutorID = &executorID
	}

	orders, err := c.orderService.GetOrders(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.orderService.FindOrder(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, order)
}

func (c *OrderController) UpdateOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}

	order, err := c.orderService.UpdateOrder(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, order)
}

func (c *OrderController) DeleteOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.orderService.DeleteOrder(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, dto.StatusResponseDTO{Success: true, Message: "Заказ удалён"})
}

// UpdateOrderStatus - смена статуса заказа клиентом или админкой.
func (c *OrderController) UpdateOrderStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateOrderStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.orderService.Transition(reqCtx, id, payload.Status, payload.Comment, payload.ChangedBy)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, res)
}

// GetOrderTracking - страница отслеживания: заказ, исполнитель, история.
func (c *OrderController) GetOrderTracking(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	tracking, err := c.orderService.GetTracking(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, tracking)
}

func (c *OrderController) parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID заказа", err,
			map[string]interface{}{"param": ctx.Param("id")})
	}
	return id, nil
}
