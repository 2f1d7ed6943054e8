// Файл: internal/controllers/report.go
package controllers

import (
	"fmt"
	"net/http"
	"time"

	"electric-service/internal/dto"
	"electric-service/internal/services"
	"electric-service/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ReportController struct {
	orderService services.OrderServiceInterface
	logger       *zap.Logger
}

func NewReportController(orderService services.OrderServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{orderService: orderService, logger: logger}
}

var reportHeaders = []string{
	"№", "Клиент", "Телефон", "Статус", "Адрес", "Дата визита", "Время визита",
	"Сумма", "Задача в Планфиксе", "Создан",
}

func orderToRow(order dto.OrderDTO) []interface{} {
	return []interface{}{
		order.ID, order.ClientName, order.Phone, order.Status, order.Address,
		order.ScheduledDate, order.ScheduledTime, order.TotalPrice,
		order.PlanfixTaskID, order.CreatedAt,
	}
}

// GetOrdersReport выгружает заказы в xlsx. Фильтры те же, что у GET /api/orders.
func (c *ReportController) GetOrdersReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter := dto.OrderFilterDTO{Status: ctx.QueryParam("status")}
	orders, err := c.orderService.GetOrders(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	f := excelize.NewFile()
	sheet := "Заказы"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "J1", style)

	for i, order := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := orderToRow(order)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "B", 25)
	f.SetColWidth(sheet, "E", "E", 40)
	f.SetColWidth(sheet, "I", "J", 20)

	fileName := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
