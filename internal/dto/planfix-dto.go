// Файл: internal/dto/planfix-dto.go
package dto

// CreatePlanfixTaskDTO - тело POST /api/planfix: создать задачу по заказу.
type CreatePlanfixTaskDTO struct {
	OrderID    uint64                `json:"order_id" validate:"required"`
	ClientName string                `json:"client_name" validate:"required"`
	Phone      string                `json:"phone"`
	Address    string                `json:"address"`
	Services   []OrderServiceItemDTO `json:"services"`
	TotalPrice float64               `json:"total_price"`
	Status     string                `json:"status"`
	Notes      string                `json:"notes"`
}

type CreatePlanfixTaskResponseDTO struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
}

// PlanfixWebhookDTO - входящий вебхук Планфикса. Два формата в одном теле:
// событие назначения исполнителя (плоские поля) и событие смены статуса
// (вложенный task). Непустой EventType выбирает первый формат.
type PlanfixWebhookDTO struct {
	EventType string              `json:"event_type"`
	TaskID    string              `json:"task_id"`
	Status    string              `json:"status"`
	Assignee  string              `json:"assignee"`
	Event     string              `json:"event"`
	Task      *PlanfixWebhookTask `json:"task"`
}

type PlanfixWebhookTask struct {
	ID     int64                 `json:"id"`
	Title  string                `json:"title"`
	Status *PlanfixWebhookStatus `json:"status"`
}

type PlanfixWebhookStatus struct {
	Name string `json:"name"`
}

type PlanfixWebhookResponseDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	OrderID uint64 `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
}
