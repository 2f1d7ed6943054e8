// Файл: internal/dto/order-dto.go
package dto

// OrderServiceItemDTO - позиция заказа: услуга, цена на момент оформления,
// количество.
type OrderServiceItemDTO struct {
	ServiceID uint64  `json:"service_id" validate:"required"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
}

// CreateOrderDTO - тело POST /api/orders.
type CreateOrderDTO struct {
	TelegramID    int64                 `json:"telegram_id" validate:"required"`
	ClientName    string                `json:"client_name"`
	Phone         string                `json:"phone" validate:"required"`
	Username      string                `json:"username"`
	Address       string                `json:"address" validate:"required"`
	Services      []OrderServiceItemDTO `json:"services" validate:"required,min=1,dive"`
	ScheduledDate string                `json:"scheduled_date"`
	ScheduledTime string                `json:"scheduled_time"`
	Notes         string                `json:"notes"`
	ExecutorID    *uint64               `json:"executor_id"`
}

type CreateOrderResponseDTO struct {
	Success bool   `json:"success"`
	OrderID uint64 `json:"order_id"`
	Message string `json:"message"`
}

// UpdateOrderDTO - частичное обновление заказа. Поле nil не трогается.
type UpdateOrderDTO struct {
	Status        *string `json:"status"`
	ExecutorID    *uint64 `json:"executor_id"`
	PlanfixTaskID *string `json:"planfix_task_id"`
}

type OrderDTO struct {
	ID            uint64                `json:"id"`
	ClientID      uint64                `json:"client_id"`
	ClientName    string                `json:"client_name"`
	Phone         string                `json:"phone"`
	ExecutorID    *uint64               `json:"executor_id"`
	Status        string                `json:"status"`
	Address       string                `json:"address"`
	ScheduledDate string                `json:"scheduled_date,omitempty"`
	ScheduledTime string                `json:"scheduled_time,omitempty"`
	TotalPrice    float64               `json:"total_price"`
	ClientNotes   string                `json:"client_notes,omitempty"`
	PlanfixTaskID string                `json:"planfix_task_id,omitempty"`
	Services      []OrderServiceItemDTO `json:"services,omitempty"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at,omitempty"`
}

// OrderFilterDTO - фильтры GET /api/orders.
type OrderFilterDTO struct {
	Status     string
	ExecutorID *uint64
}

// UpdateOrderStatusDTO - тело POST /api/orders/:id/status.
type UpdateOrderStatusDTO struct {
	Status    string `json:"status" validate:"required"`
	Comment   string `json:"comment"`
	ChangedBy string `json:"changed_by"`
}

// TransitionResultDTO - ответ смены статуса.
type TransitionResultDTO struct {
	Success               bool   `json:"success"`
	OrderID               uint64 `json:"order_id"`
	NewStatus             string `json:"new_status"`
	NotificationAttempted bool   `json:"notification_attempted"`
}

type OrderStatusHistoryDTO struct {
	ID        uint64 `json:"id"`
	OrderID   uint64 `json:"order_id"`
	Status    string `json:"status"`
	Comment   string `json:"comment,omitempty"`
	ChangedBy string `json:"changed_by,omitempty"`
	CreatedAt string `json:"created_at"`
}

// OrderTrackingDTO - публичная страница отслеживания заказа.
type OrderTrackingDTO struct {
	Order    OrderDTO                `json:"order"`
	Executor *ExecutorDTO            `json:"executor,omitempty"`
	History  []OrderStatusHistoryDTO `json:"history"`
}
