package errors

import "fmt"

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader   = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidInitData   = fmt.Errorf("невалидные данные авторизации Telegram")

	// Общие
	ErrNotFound      = fmt.Errorf("запись не найдена")
	ErrBadRequest    = fmt.Errorf("неверный запрос")
	ErrConflict      = fmt.Errorf("запись с такими параметрами уже существует")
	ErrInvalidStatus = fmt.Errorf("недопустимый статус заказа")
)

// HttpError несёт и код для HTTP-ответа, и сообщение для пользователя,
// и внутреннюю ошибку с контекстом для логов.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: context,
	}
}
