// Файл: internal/services/notification.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"electric-service/internal/dto"
	"electric-service/pkg/constants"
	"electric-service/pkg/mailer"
	"electric-service/pkg/telegram"

	"go.uber.org/zap"
)

var statusTitles = map[string]string{
	constants.StatusNew:        "Заявка принята",
	constants.StatusAssigned:   "Назначен мастер",
	constants.StatusInProgress: "Работы начаты",
	constants.StatusOnWay:      "Мастер выехал к вам",
	constants.StatusCompleted:  "Работы завершены",
	constants.StatusCancelled:  "Заказ отменён",
}

type NotificationServiceInterface interface {
	NotifyOrderTelegram(ctx context.Context, chatID int64, order dto.NotifyOrderDTO) (int, error)
	SendEmail(to, subject, html string) error
	SendFeedback(feedback, name, contact string) error
	ForwardToSheets(ctx context.Context, payload interface{}) error
}

type notificationService struct {
	telegramSvc telegram.ServiceInterface
	mailerSvc   mailer.MailerInterface
	feedbackTo  string
	sheetsURL   string
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewNotificationService(
	telegramSvc telegram.ServiceInterface,
	mailerSvc mailer.MailerInterface,
	feedbackTo string,
	sheetsURL string,
	logger *zap.Logger,
) NotificationServiceInterface {
	return &notificationService{
		telegramSvc: telegramSvc,
		mailerSvc:   mailerSvc,
		feedbackTo:  feedbackTo,
		sheetsURL:   sheetsURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// NotifyOrderTelegram шлёт клиенту HTML-сообщение о заказе и возвращает
// message_id.
func (s *notificationService) NotifyOrderTelegram(ctx context.Context, chatID int64, order dto.NotifyOrderDTO) (int, error) {
	return s.telegramSvc.SendMessage(ctx, chatID, buildOrderMessage(order), telegram.WithHTML())
}

func (s *notificationService) SendEmail(to, subject, html string) error {
	return s.mailerSvc.Send(to, subject, html)
}

func (s *notificationService) SendFeedback(feedback, name, contact string) error {
	subject := fmt.Sprintf("Обратная связь от %s", time.Now().Local().Format("2006-01-02 15:04"))
	var b bytes.Buffer
	b.WriteString("<h3>Новое сообщение обратной связи</h3>")
	if name != "" {
		b.WriteString("<p><b>Имя:</b> " + name + "</p>")
	}
	if contact != "" {
		b.WriteString("<p><b>Контакт:</b> " + contact + "</p>")
	}
	b.WriteString("<p>" + feedback + "</p>")
	return s.mailerSvc.Send(s.feedbackTo, subject, b.String())
}

// ForwardToSheets отправляет payload в вебхук Google Sheets как есть.
func (s *notificationService) ForwardToSheets(ctx context.Context, payload interface{}) error {
	if s.sheetsURL == "" {
		s.logger.Debug("GOOGLE_SHEETS_WEBHOOK_URL не задан, пропуск")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sheetsURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки в Google Sheets: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("вебхук Google Sheets ответил кодом %d", resp.StatusCode)
	}
	return nil
}

func buildOrderMessage(order dto.NotifyOrderDTO) string {
	var b bytes.Buffer

	title, ok := statusTitles[order.Status]
	if !ok {
		title = "Обновление по заказу"
	}
	b.WriteString(fmt.Sprintf("<b>%s</b>\n\n", title))
	b.WriteString(fmt.Sprintf("Заказ <b>#%d</b>\n", order.OrderID))
	if order.Address != "" {
		b.WriteString("Адрес: " + order.Address + "\n")
	}
	if len(order.Services) > 0 {
		b.WriteString("\nУслуги:\n")
		for _, item := range order.Services {
			b.WriteString(fmt.Sprintf("• %s x%d\n", item.Name, item.Quantity))
		}
	}
	if order.TotalPrice > 0 {
		b.WriteString(fmt.Sprintf("\nСумма: <b>%.0f ₽</b>\n", order.TotalPrice))
	}
	if order.ScheduledDate != "" {
		b.WriteString("Дата: " + order.ScheduledDate)
		if order.ScheduledTime != "" {
			b.WriteString(", " + order.ScheduledTime)
		}
		b.WriteString("\n")
	}
	return b.String()
}
