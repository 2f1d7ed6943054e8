// Файл: internal/dto/auth-dto.go
package dto

// TelegramLoginDTO - тело POST /api/auth/telegram.
// initData приходит от Telegram WebApp как есть, без изменений.
type TelegramLoginDTO struct {
	InitData string `json:"initData" validate:"required"`
	Role     string `json:"role"`
}

// UserProfileDTO - профиль пользователя в ответе авторизации.
type UserProfileDTO struct {
	UID        string `json:"uid"`
	TelegramID int64  `json:"telegram_id"`
	Name       string `json:"name"`
	Username   string `json:"username,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
}

type AuthResponseDTO struct {
	Success bool           `json:"success"`
	User    UserProfileDTO `json:"user"`
	Token   string         `json:"token"`
}
