package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "electric-service/pkg/errors"
)

// ErrorBody - единый формат тела ошибки для всех эндпоинтов.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorList - соответствие сентинельных ошибок HTTP-кодам.
var ErrorList = map[error]int{
	apperrors.ErrNotFound:          http.StatusNotFound,
	apperrors.ErrBadRequest:        http.StatusBadRequest,
	apperrors.ErrInvalidStatus:     http.StatusBadRequest,
	apperrors.ErrConflict:          http.StatusConflict,
	apperrors.ErrInvalidInitData:   http.StatusUnauthorized,
	apperrors.ErrInvalidToken:      http.StatusUnauthorized,
	apperrors.ErrTokenExpired:      http.StatusUnauthorized,
	apperrors.ErrTokenNotYetValid:  http.StatusUnauthorized,
	apperrors.ErrTokenIsNotAccess:  http.StatusUnauthorized,
	apperrors.ErrEmptyAuthHeader:   http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader: http.StatusUnauthorized,
}

// ErrorResponse определяет код и сообщение по типу ошибки и пишет JSON {"error": ...}.
// HttpError имеет приоритет: из него берётся только пользовательское сообщение,
// технические детали остаются в логах.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code := http.StatusInternalServerError
	message := err.Error()

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = httpErr.Message
		fields := []zap.Field{zap.Int("code", code), zap.Error(httpErr.Err)}
		for k, v := range httpErr.Context {
			fields = append(fields, zap.Any(k, v))
		}
		if code >= http.StatusInternalServerError {
			logger.Error(message, fields...)
		} else {
			logger.Warn(message, fields...)
		}
	} else {
		for sentinel, statusCode := range ErrorList {
			if errors.Is(err, sentinel) {
				code = statusCode
				message = sentinel.Error()
				break
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("необработанная ошибка", zap.Error(err))
			message = "Internal server error"
		}
	}

	return ctx.JSON(code, ErrorBody{Error: message})
}

// HTTPErrorHandler перехватывает ошибки, дошедшие до echo (404 по маршруту,
// 405 по методу, паники после Recover) и приводит их к контрактному телу.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")

		var httpErr *apperrors.HttpError
		if errors.As(err, &httpErr) {
			_ = ErrorResponse(c, httpErr, logger)
			return
		}

		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			message := fmt.Sprintf("%v", echoErr.Message)
			if echoErr.Code == http.StatusMethodNotAllowed {
				message = "Method not allowed"
			}
			_ = c.JSON(echoErr.Code, ErrorBody{Error: message})
			return
		}

		logger.Error("необработанная ошибка запроса",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
		_ = c.JSON(http.StatusInternalServerError, ErrorBody{Error: "Internal server error"})
	}
}
