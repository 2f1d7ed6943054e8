// Файл: internal/planfix/client.go
package planfix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"electric-service/internal/dto"
)

// ErrTimeout отличает таймаут Планфикса: прямой эндпоинт отвечает на него 504.
var ErrTimeout = errors.New("планфикс не ответил вовремя")

// ErrNotConfigured - не заданы PLANFIX_API_KEY или PLANFIX_ACCOUNT.
var ErrNotConfigured = errors.New("интеграция с Планфиксом не настроена")

type ClientInterface interface {
	CreateTask(ctx context.Context, payload dto.CreatePlanfixTaskDTO) (string, error)
	UpdateTaskStatus(ctx context.Context, taskID, statusName string) error
	Configured() bool
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient строит клиент REST API Планфикса. account - поддомен аккаунта,
// допускается и полный URL вида https://acme.planfix.ru.
func NewClient(apiKey, account string) ClientInterface {
	account = strings.TrimSpace(account)
	account = strings.TrimPrefix(account, "https://")
	account = strings.TrimPrefix(account, "http://")
	account = strings.TrimSuffix(account, "/")
	if account != "" && !strings.Contains(account, ".") {
		account += ".planfix.ru"
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    "https://" + account + "/rest",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != "" && c.baseURL != "https:///rest"
}

type createTaskRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Template    taskTemplate `json:"template"`
}

type taskTemplate struct {
	ID int `json:"id"`
}

type createTaskResponse struct {
	Result string `json:"result"`
	ID     int64  `json:"id"`
	Task   struct {
		ID int64 `json:"id"`
	} `json:"task"`
}

// CreateTask создаёт задачу по заказу и возвращает её id в Планфиксе.
func (c *Client) CreateTask(ctx context.Context, payload dto.CreatePlanfixTaskDTO) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	reqBody := createTaskRequest{
		Name:        fmt.Sprintf("Заявка #%d - %s", payload.OrderID, payload.ClientName),
		Description: buildTaskDescription(payload),
		Template:    taskTemplate{ID: 1},
	}

	var result createTaskResponse
	if err := c.post(ctx, "/task/create", reqBody, &result); err != nil {
		return "", err
	}

	taskID := result.ID
	if taskID == 0 {
		taskID = result.Task.ID
	}
	if taskID == 0 {
		return "", fmt.Errorf("планфикс не вернул id задачи")
	}
	return fmt.Sprintf("%d", taskID), nil
}

type updateTaskRequest struct {
	Status statusName `json:"status"`
}

type statusName struct {
	Name string `json:"name"`
}

func (c *Client) UpdateTaskStatus(ctx context.Context, taskID, name string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	return c.post(ctx, "/task/"+taskID, updateTaskRequest{Status: statusName{Name: name}}, nil)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return ErrTimeout
		}
		return fmt.Errorf("ошибка запроса к Планфиксу: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("не удалось разобрать ответ Планфикса: %w", err)
		}
	}
	return nil
}

// UpstreamError сохраняет код ответа Планфикса: прямой эндпоинт
// пробрасывает его клиенту как есть.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("планфикс ответил кодом %d: %s", e.StatusCode, e.Body)
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func buildTaskDescription(payload dto.CreatePlanfixTaskDTO) string {
	var b strings.Builder
	b.WriteString("Клиент: " + payload.ClientName + "\n")
	if payload.Phone != "" {
		b.WriteString("Телефон: " + payload.Phone + "\n")
	}
	if payload.Address != "" {
		b.WriteString("Адрес: " + payload.Address + "\n")
	}
	if len(payload.Services) > 0 {
		b.WriteString("Услуги:\n")
		for _, item := range payload.Services {
			b.WriteString(fmt.Sprintf("  - %s x%d (%.2f)\n", item.Name, item.Quantity, item.Price))
		}
	}
	b.WriteString(fmt.Sprintf("Сумма: %.2f\n", payload.TotalPrice))
	if payload.Status != "" {
		b.WriteString("Статус: " + MapOrderStatus(payload.Status) + "\n")
	}
	if payload.Notes != "" {
		b.WriteString("Комментарий: " + payload.Notes + "\n")
	}
	return b.String()
}
