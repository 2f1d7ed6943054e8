// Файл: internal/services/order.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"electric-service/internal/dto"
	"electric-service/internal/planfix"
	"electric-service/internal/repositories"
	"electric-service/pkg/constants"
	apperrors "electric-service/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// bestEffortTimeout ограничивает каждый побочный вызов (Планфикс, Telegram,
// Sheets, почта) после успешной записи в базу. Одна попытка, без ретраев.
const bestEffortTimeout = 10 * time.Second

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*dto.CreateOrderResponseDTO, error)
	GetOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]dto.OrderDTO, error)
	FindOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error)
	UpdateOrder(ctx context.Context, id uint64, payload dto.UpdateOrderDTO) (*dto.OrderDTO, error)
	DeleteOrder(ctx context.Context, id uint64) error
	Transition(ctx context.Context, orderID uint64, newStatus, comment, changedBy string) (*dto.TransitionResultDTO, error)
	ApplyPlanfixStatus(ctx context.Context, orderID uint64, newStatus, comment string) (*dto.TransitionResultDTO, error)
	AssignExecutor(ctx context.Context, orderID, executorID uint64, changedBy, comment string) error
	GetTracking(ctx context.Context, id uint64) (*dto.OrderTrackingDTO, error)
}

type orderService struct {
	txManager   repositories.TxManagerInterface
	orderRepo   repositories.OrderRepositoryInterface
	clientRepo  repositories.ClientRepositoryInterface
	historyRepo repositories.OrderHistoryRepositoryInterface
	catalogRepo repositories.CatalogRepositoryInterface
	planfixCli  planfix.ClientInterface
	notifier    NotificationServiceInterface
	logger      *zap.Logger
}

func NewOrderService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	clientRepo repositories.ClientRepositoryInterface,
	historyRepo repositories.OrderHistoryRepositoryInterface,
	catalogRepo repositories.CatalogRepositoryInterface,
	planfixCli planfix.ClientInterface,
	notifier NotificationServiceInterface,
	logger *zap.Logger,
) OrderServiceInterface {
	return &orderService{
		txManager:   txManager,
		orderRepo:   orderRepo,
		clientRepo:  clientRepo,
		historyRepo: historyRepo,
		catalogRepo: catalogRepo,
		planfixCli:  planfixCli,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*dto.CreateOrderResponseDTO, error) {
	if len(payload.Services) == 0 {
		return nil, apperrors.NewHttpError(400, "Список услуг пуст", apperrors.ErrBadRequest, nil)
	}

	var totalPrice float64
	for _, item := range payload.Services {
		totalPrice += item.Price * float64(item.Quantity)
	}

	// Исполнитель уже известен - заказ сразу в assigned, иначе new.
	status := constants.StatusNew
	if payload.ExecutorID != nil {
		status = constants.StatusAssigned
	}

	var orderID uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		client, err := s.clientRepo.UpsertTx(ctx, tx, dto.UpsertClientDTO{
			TelegramID: payload.TelegramID,
			Name:       payload.ClientName,
			Phone:      payload.Phone,
			Username:   payload.Username,
		})
		if err != nil {
			return err
		}

		orderID, err = s.orderRepo.Create(ctx, tx, client.ID, payload, status, totalPrice)
		if err != nil {
			return err
		}

		for _, item := range payload.Services {
			if err := s.orderRepo.AddOrderService(ctx, tx, orderID, item); err != nil {
				return err
			}
		}

		changedBy := fmt.Sprintf("client_%d", payload.TelegramID)
		return s.historyRepo.Append(ctx, tx, orderID, status, "Заказ создан", changedBy)
	})
	if err != nil {
		return nil, err
	}

	s.dispatchCreated(orderID, payload, status, totalPrice)

	return &dto.CreateOrderResponseDTO{
		Success: true,
		OrderID: orderID,
		Message: "Заказ успешно создан",
	}, nil
}

// dispatchCreated запускает побочные вызовы после создания заказа.
// Каждый независим: ошибка одного не мешает остальным и клиенту не видна.
func (s *orderService) dispatchCreated(orderID uint64, payload dto.CreateOrderDTO, status string, totalPrice float64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
		defer cancel()

		taskID, err := s.planfixCli.CreateTask(ctx, dto.CreatePlanfixTaskDTO{
			OrderID:    orderID,
			ClientName: payload.ClientName,
			Phone:      payload.Phone,
			Address:    payload.Address,
			Services:   payload.Services,
			TotalPrice: totalPrice,
			Status:     status,
			Notes:      payload.Notes,
		})
		if err != nil {
			if !errors.Is(err, planfix.ErrNotConfigured) {
				s.logger.Warn("не удалось создать задачу в Планфиксе", zap.Uint64("order_id", orderID), zap.Error(err))
			}
			return
		}
		if err := s.orderRepo.SetPlanfixTaskID(ctx, orderID, taskID); err != nil {
			s.logger.Warn("не удалось сохранить id задачи Планфикса", zap.Uint64("order_id", orderID), zap.Error(err))
		}
	}()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
		defer cancel()

		if _, err := s.notifier.NotifyOrderTelegram(ctx, payload.TelegramID, dto.NotifyOrderDTO{
			OrderID:       orderID,
			Status:        status,
			Address:       payload.Address,
			Services:      payload.Services,
			TotalPrice:    totalPrice,
			ScheduledDate: payload.ScheduledDate,
			ScheduledTime: payload.ScheduledTime,
		}); err != nil {
			s.logger.Warn("не удалось отправить Telegram-уведомление о заказе", zap.Uint64("order_id", orderID), zap.Error(err))
		}
	}()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
		defer cancel()

		if err := s.notifier.ForwardToSheets(ctx, map[string]interface{}{
			"order_id":       orderID,
			"telegram_id":    payload.TelegramID,
			"client_name":    payload.ClientName,
			"phone":          payload.Phone,
			"address":        payload.Address,
			"total_price":    totalPrice,
			"status":         status,
			"scheduled_date": payload.ScheduledDate,
			"scheduled_time": payload.ScheduledTime,
		}); err != nil {
			s.logger.Warn("не удалось отправить заказ в Google Sheets", zap.Uint64("order_id", orderID), zap.Error(err))
		}
	}()

	go func() {
		html := fmt.Sprintf("<p>Заказ <b>#%d</b> от %s (%s).<br>Адрес: %s<br>Сумма: %.2f</p>",
			orderID, payload.ClientName, payload.Phone, payload.Address, totalPrice)
		if err := s.notifier.SendFeedback(html, payload.ClientName, payload.Phone); err != nil {
			s.logger.Warn("не удалось отправить письмо о новом заказе", zap.Uint64("order_id", orderID), zap.Error(err))
		}
	}()
}

func (s *orderService) GetOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]dto.OrderDTO, error) {
	if filter.Status != "" && !constants.IsValidStatus(filter.Status) {
		return nil, apperrors.ErrInvalidStatus
	}
	return s.orderRepo.GetOrders(ctx, filter)
}

func (s *orderService) FindOrder(ctx context.Context, id uint64) (*dto.OrderDTO, error) {
	order, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	services, err := s.orderRepo.GetOrderServices(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Services = services
	return order, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id uint64, payload dto.UpdateOrderDTO) (*dto.OrderDTO, error) {
	if payload.Status == nil && payload.ExecutorID == nil && payload.PlanfixTaskID == nil {
		return nil, apperrors.NewHttpError(400, "Нет полей для обновления", apperrors.ErrBadRequest, nil)
	}
	if payload.Status != nil && !constants.IsValidStatus(*payload.Status) {
		return nil, apperrors.ErrInvalidStatus
	}
	return s.orderRepo.UpdateOrder(ctx, id, payload)
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint64) error {
	return s.orderRepo.DeleteOrder(ctx, id)
}

// Transition - смена статуса заказа. Проверка статуса идёт до любого
// обращения к базе; обновление заказа и строка истории пишутся в одной
// транзакции; синхронизация с Планфиксом и уведомление клиента - после
// ответа, по одной попытке каждое.
func (s *orderService) Transition(ctx context.Context, orderID uint64, newStatus, comment, changedBy string) (*dto.TransitionResultDTO, error) {
	return s.transition(ctx, orderID, newStatus, comment, changedBy, true)
}

// ApplyPlanfixStatus применяет статус, пришедший из вебхука Планфикса.
// Обратной синхронизации в Планфикс нет: он источник этого изменения.
func (s *orderService) ApplyPlanfixStatus(ctx context.Context, orderID uint64, newStatus, comment string) (*dto.TransitionResultDTO, error) {
	return s.transition(ctx, orderID, newStatus, comment, "planfix_webhook", false)
}

func (s *orderService) transition(ctx context.Context, orderID uint64, newStatus, comment, changedBy string, syncPlanfix bool) (*dto.TransitionResultDTO, error) {
	if !constants.IsValidStatus(newStatus) {
		return nil, apperrors.ErrInvalidStatus
	}

	order, err := s.orderRepo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.orderRepo.UpdateStatus(ctx, tx, orderID, newStatus); err != nil {
			return err
		}
		return s.historyRepo.Append(ctx, tx, orderID, newStatus, comment, changedBy)
	})
	if err != nil {
		return nil, err
	}

	chatID, err := s.orderRepo.ResolveClientChatID(ctx, orderID)
	if err != nil {
		// Нет чата - нет уведомления, но сама смена статуса уже состоялась.
		s.logger.Warn("не удалось определить чат клиента", zap.Uint64("order_id", orderID), zap.Error(err))
		chatID = 0
	}

	s.dispatchTransition(order, newStatus, chatID, syncPlanfix)

	return &dto.TransitionResultDTO{
		Success:               true,
		OrderID:               orderID,
		NewStatus:             newStatus,
		NotificationAttempted: chatID != 0,
	}, nil
}

func (s *orderService) dispatchTransition(order *dto.OrderDTO, newStatus string, chatID int64, syncPlanfix bool) {
	if syncPlanfix && order.PlanfixTaskID != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
			defer cancel()

			if err := s.planfixCli.UpdateTaskStatus(ctx, order.PlanfixTaskID, planfix.MapOrderStatus(newStatus)); err != nil {
				if !errors.Is(err, planfix.ErrNotConfigured) {
					s.logger.Warn("не удалось синхронизировать статус с Планфиксом",
						zap.Uint64("order_id", order.ID), zap.String("task_id", order.PlanfixTaskID), zap.Error(err))
				}
			}
		}()
	}

	if chatID != 0 {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), bestEffortTimeout)
			defer cancel()

			services, err := s.orderRepo.GetOrderServices(ctx, order.ID)
			if err != nil {
				services = nil
			}
			if _, err := s.notifier.NotifyOrderTelegram(ctx, chatID, dto.NotifyOrderDTO{
				OrderID:       order.ID,
				Status:        newStatus,
				Address:       order.Address,
				Services:      services,
				TotalPrice:    order.TotalPrice,
				ScheduledDate: order.ScheduledDate,
				ScheduledTime: order.ScheduledTime,
			}); err != nil {
				s.logger.Warn("не удалось уведомить клиента о смене статуса",
					zap.Uint64("order_id", order.ID), zap.Error(err))
			}
		}()
	}
}

// AssignExecutor назначает исполнителя, переводит заказ в assigned и пишет
// историю в одной транзакции. Используется вебхуком task.assigned.
func (s *orderService) AssignExecutor(ctx context.Context, orderID, executorID uint64, changedBy, comment string) error {
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.orderRepo.AssignExecutor(ctx, tx, orderID, executorID, constants.StatusAssigned); err != nil {
			return err
		}
		return s.historyRepo.Append(ctx, tx, orderID, constants.StatusAssigned, comment, changedBy)
	})
}

func (s *orderService) GetTracking(ctx context.Context, id uint64) (*dto.OrderTrackingDTO, error) {
	order, err := s.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	tracking := dto.OrderTrackingDTO{Order: *order}

	if order.ExecutorID != nil {
		executor, err := s.catalogRepo.FindExecutorByID(ctx, *order.ExecutorID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		tracking.Executor = executor
	}

	history, err := s.historyRepo.FindByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	tracking.History = history

	return &tracking, nil
}
