// Файл: internal/services/sync.go
package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"electric-service/internal/dto"
	"electric-service/internal/planfix"
	"electric-service/internal/repositories"
	apperrors "electric-service/pkg/errors"

	"go.uber.org/zap"
)

type SyncServiceInterface interface {
	CreateTask(ctx context.Context, payload dto.CreatePlanfixTaskDTO) (*dto.CreatePlanfixTaskResponseDTO, error)
	ProcessWebhook(ctx context.Context, payload dto.PlanfixWebhookDTO) (*dto.PlanfixWebhookResponseDTO, error)
}

type syncService struct {
	planfixCli  planfix.ClientInterface
	orderSvc    OrderServiceInterface
	orderRepo   repositories.OrderRepositoryInterface
	catalogRepo repositories.CatalogRepositoryInterface
	logger      *zap.Logger
}

func NewSyncService(
	planfixCli planfix.ClientInterface,
	orderSvc OrderServiceInterface,
	orderRepo repositories.OrderRepositoryInterface,
	catalogRepo repositories.CatalogRepositoryInterface,
	logger *zap.Logger,
) SyncServiceInterface {
	return &syncService{
		planfixCli:  planfixCli,
		orderSvc:    orderSvc,
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// CreateTask - прямое создание задачи в Планфиксе по заказу.
func (s *syncService) CreateTask(ctx context.Context, payload dto.CreatePlanfixTaskDTO) (*dto.CreatePlanfixTaskResponseDTO, error) {
	taskID, err := s.planfixCli.CreateTask(ctx, payload)
	if err != nil {
		switch {
		case errors.Is(err, planfix.ErrNotConfigured):
			return nil, apperrors.NewHttpError(http.StatusInternalServerError,
				"Интеграция с Планфиксом не настроена", err, nil)
		case errors.Is(err, planfix.ErrTimeout):
			return nil, apperrors.NewHttpError(http.StatusGatewayTimeout,
				"Планфикс не ответил вовремя", err, nil)
		}
		var upstream *planfix.UpstreamError
		if errors.As(err, &upstream) {
			return nil, apperrors.NewHttpError(upstream.StatusCode,
				"Ошибка на стороне Планфикса", err,
				map[string]interface{}{"body": upstream.Body})
		}
		return nil, err
	}

	if err := s.orderRepo.SetPlanfixTaskID(ctx, payload.OrderID, taskID); err != nil {
		s.logger.Warn("задача создана, но id не сохранён в заказе",
			zap.Uint64("order_id", payload.OrderID), zap.String("task_id", taskID), zap.Error(err))
	}

	return &dto.CreatePlanfixTaskResponseDTO{Success: true, TaskID: taskID}, nil
}

// ProcessWebhook разбирает вебхук Планфикса. Непонятный или неполный
// payload не ошибка: отвечаем 200 со словом skipped, чтобы Планфикс
// не повторял доставку.
func (s *syncService) ProcessWebhook(ctx context.Context, payload dto.PlanfixWebhookDTO) (*dto.PlanfixWebhookResponseDTO, error) {
	if payload.EventType != "" {
		return s.processAssignment(ctx, payload)
	}
	if payload.Task != nil {
		return s.processStatusUpdate(ctx, payload)
	}
	return skipped("нет события"), nil
}

func (s *syncService) processAssignment(ctx context.Context, payload dto.PlanfixWebhookDTO) (*dto.PlanfixWebhookResponseDTO, error) {
	if payload.EventType != "task.assigned" {
		return skipped("событие не обрабатывается"), nil
	}
	if payload.TaskID == "" || payload.Assignee == "" {
		return skipped("нет task_id или исполнителя"), nil
	}

	order, err := s.orderRepo.FindByPlanfixTaskID(ctx, payload.TaskID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return skipped("заказ по задаче не найден"), nil
		}
		return nil, err
	}

	executor, err := s.catalogRepo.FindExecutorByName(ctx, payload.Assignee)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("исполнитель из вебхука не найден", zap.String("assignee", payload.Assignee))
			return skipped("исполнитель не найден"), nil
		}
		return nil, err
	}

	comment := "Назначен исполнитель: " + executor.Name
	if err := s.orderSvc.AssignExecutor(ctx, order.ID, executor.ID, "planfix_webhook", comment); err != nil {
		return nil, err
	}

	return &dto.PlanfixWebhookResponseDTO{Success: true, OrderID: order.ID}, nil
}

func (s *syncService) processStatusUpdate(ctx context.Context, payload dto.PlanfixWebhookDTO) (*dto.PlanfixWebhookResponseDTO, error) {
	task := payload.Task
	if task.ID == 0 {
		return skipped("нет id задачи"), nil
	}

	orderID := planfix.ExtractOrderID(task.Title)
	if orderID == 0 {
		return skipped("название задачи не про заказ"), nil
	}
	if task.Status == nil || task.Status.Name == "" {
		return skipped("нет статуса задачи"), nil
	}

	newStatus := planfix.MapPlanfixStatus(task.Status.Name)
	result, err := s.orderSvc.ApplyPlanfixStatus(ctx, orderID, newStatus, "Статус из Планфикса: "+task.Status.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return skipped("заказ не найден"), nil
		}
		return nil, err
	}

	// Запоминаем связь заказа с задачей, если её ещё не было.
	taskID := taskIDString(task.ID)
	if err := s.orderRepo.SetPlanfixTaskID(ctx, orderID, taskID); err != nil {
		s.logger.Warn("не удалось сохранить id задачи из вебхука",
			zap.Uint64("order_id", orderID), zap.String("task_id", taskID), zap.Error(err))
	}

	return &dto.PlanfixWebhookResponseDTO{
		Success: true,
		OrderID: result.OrderID,
		Status:  result.NewStatus,
	}, nil
}

func taskIDString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func skipped(reason string) *dto.PlanfixWebhookResponseDTO {
	return &dto.PlanfixWebhookResponseDTO{Success: true, Message: "skipped: " + reason}
}
