// Файл: internal/services/auth.go
package services

import (
	"context"
	"fmt"
	"net/http"

	"electric-service/internal/dto"
	"electric-service/internal/repositories"
	"electric-service/pkg/constants"
	apperrors "electric-service/pkg/errors"
	"electric-service/pkg/service"
	"electric-service/pkg/telegramauth"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	LoginWithTelegram(ctx context.Context, payload dto.TelegramLoginDTO) (*dto.AuthResponseDTO, error)
}

type authService struct {
	clientRepo repositories.ClientRepositoryInterface
	jwtService service.JWTService
	botToken   string
	logger     *zap.Logger
}

func NewAuthService(
	clientRepo repositories.ClientRepositoryInterface,
	jwtService service.JWTService,
	botToken string,
	logger *zap.Logger,
) AuthServiceInterface {
	return &authService{
		clientRepo: clientRepo,
		jwtService: jwtService,
		botToken:   botToken,
		logger:     logger,
	}
}

// LoginWithTelegram проверяет подпись initData, заводит или обновляет
// клиента и выдаёт JWT.
func (s *authService) LoginWithTelegram(ctx context.Context, payload dto.TelegramLoginDTO) (*dto.AuthResponseDTO, error) {
	role := payload.Role
	if role == "" {
		role = constants.RoleClient
	}
	if !constants.IsValidRole(role) {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Недопустимая роль", apperrors.ErrBadRequest,
			map[string]interface{}{"role": payload.Role})
	}

	if s.botToken == "" {
		return nil, apperrors.NewHttpError(http.StatusInternalServerError,
			"Сервис авторизации не настроен", nil, nil)
	}

	verified, err := telegramauth.Verify(payload.InitData, s.botToken)
	if err != nil {
		s.logger.Warn("отклонён невалидный initData", zap.Error(err))
		return nil, apperrors.ErrInvalidInitData
	}

	name := verified.FirstName
	if verified.LastName != "" {
		name = verified.FirstName + " " + verified.LastName
	}

	client, err := s.clientRepo.Upsert(ctx, dto.UpsertClientDTO{
		TelegramID: verified.ID,
		Name:       name,
		Username:   verified.Username,
		PhotoURL:   verified.PhotoURL,
		Role:       role,
	})
	if err != nil {
		return nil, err
	}

	accessToken, _, err := s.jwtService.GenerateTokens(client.TelegramID, client.Role)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponseDTO{
		Success: true,
		User: dto.UserProfileDTO{
			UID:        fmt.Sprintf("tg_%d", client.TelegramID),
			TelegramID: client.TelegramID,
			Name:       client.Name,
			Username:   client.Username,
			PhotoURL:   client.PhotoURL,
			Role:       client.Role,
			CreatedAt:  client.CreatedAt,
		},
		Token: accessToken,
	}, nil
}
