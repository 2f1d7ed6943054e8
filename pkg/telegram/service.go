// Файл: pkg/telegram/service.go
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ServiceInterface interface {
	// SendMessage отправляет сообщение и возвращает message_id из ответа Bot API.
	SendMessage(ctx context.Context, chatID int64, text string, options ...MessageOption) (int, error)
}

type Service struct {
	botToken   string
	httpClient *http.Client
}

func NewService(botToken string) ServiceInterface {
	return &Service{
		botToken:   botToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int `json:"message_id"`
	} `json:"result"`
}

type MessageOption func(*sendMessageRequest)

func WithHTML() MessageOption {
	return func(req *sendMessageRequest) {
		req.ParseMode = "HTML"
	}
}

func (s *Service) SendMessage(ctx context.Context, chatID int64, text string, options ...MessageOption) (int, error) {
	reqBody := sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}
	for _, opt := range options {
		opt(&reqBody)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("ошибка сериализации запроса sendMessage: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("ошибка запроса к Telegram Bot API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var result sendMessageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("не удалось разобрать ответ Bot API: %w", err)
	}
	if !result.OK {
		return 0, fmt.Errorf("Bot API вернул ошибку: %s", result.Description)
	}

	return result.Result.MessageID, nil
}
