// Файл: internal/dto/notify-dto.go
package dto

// TelegramNotifyDTO - тело POST /api/notify/telegram.
type TelegramNotifyDTO struct {
	ChatID int64          `json:"chat_id" validate:"required"`
	Order  NotifyOrderDTO `json:"order"`
}

// NotifyOrderDTO - данные заказа для текста уведомления.
type NotifyOrderDTO struct {
	OrderID       uint64                `json:"order_id"`
	Status        string                `json:"status"`
	Address       string                `json:"address"`
	Services      []OrderServiceItemDTO `json:"services"`
	TotalPrice    float64               `json:"total_price"`
	ScheduledDate string                `json:"scheduled_date"`
	ScheduledTime string                `json:"scheduled_time"`
}

type TelegramNotifyResponseDTO struct {
	Success   bool `json:"success"`
	MessageID int  `json:"message_id"`
}

// SendEmailDTO - тело POST /api/notify/email.
type SendEmailDTO struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	HTML    string `json:"html" validate:"required"`
}

// FeedbackDTO - тело POST /api/feedback.
type FeedbackDTO struct {
	Feedback string `json:"feedback" validate:"required"`
	Name     string `json:"name"`
	Contact  string `json:"contact"`
}

type StatusResponseDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
