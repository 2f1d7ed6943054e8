// Package telegramauth проверяет подпись initData из Telegram WebApp.
//
// Схема подписи двухступенчатая: сначала из токена бота выводится ключ
// HMAC-SHA256("WebAppData", botToken), затем этим ключом подписывается
// канонический data-check-string. Сырой токен бота никогда не используется
// как ключ напрямую.
package telegramauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidInitData возвращается на любую невалидную подпись или
// некорректный payload. Детали не раскрываются, чтобы не помогать подбору.
var ErrInvalidInitData = errors.New("invalid telegram init data")

// VerifiedUser - профиль пользователя из проверенного initData.
// Конструируется только после успешной проверки подписи.
type VerifiedUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

// Verify проверяет подпись initData и возвращает профиль пользователя.
// Чистая функция без I/O: одинаковый вход - одинаковый результат.
func Verify(initData, botToken string) (*VerifiedUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	receivedHash := lastValue(values, "hash")
	if receivedHash == "" {
		return nil, ErrInvalidInitData
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(lastValue(values, k))
	}

	secretKey := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	expectedHash := hex.EncodeToString(hmacSHA256(secretKey, []byte(b.String())))

	// hmac.Equal - сравнение за постоянное время.
	if !hmac.Equal([]byte(expectedHash), []byte(receivedHash)) {
		return nil, ErrInvalidInitData
	}

	userJSON := lastValue(values, "user")
	if userJSON == "" {
		return nil, ErrInvalidInitData
	}

	var user VerifiedUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, ErrInvalidInitData
	}
	if user.ID == 0 {
		return nil, ErrInvalidInitData
	}

	return &user, nil
}

// lastValue возвращает последнее значение поля: при повторе поля в initData
// побеждает последнее.
func lastValue(values url.Values, key string) string {
	vs := values[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
