package telegramauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "7000000001:AAHk3x-test-token-value"

// signInitData собирает initData так же, как это делает клиент Telegram:
// сортированный data-check-string, двухступенчатый HMAC, hex-подпись.
func signInitData(t *testing.T, fields map[string]string, botToken string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}
	checkString := strings.Join(lines, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	secretKey := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(checkString))
	hash := hex.EncodeToString(mac.Sum(nil))

	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}
	q.Set("hash", hash)
	return q.Encode()
}

func validFields() map[string]string {
	return map[string]string{
		"auth_date": "1730000000",
		"query_id":  "AAF9tT0aAAAAAH21PRpO7dwW",
		"user":      `{"id":123456789,"first_name":"Иван","last_name":"Петров","username":"ivan_p","photo_url":"https://t.me/i/userpic/320/ivan.jpg"}`,
	}
}

func TestVerify_ValidSignature(t *testing.T) {
	initData := signInitData(t, validFields(), testBotToken)

	user, err := Verify(initData, testBotToken)
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, int64(123456789), user.ID)
	assert.Equal(t, "Иван", user.FirstName)
	assert.Equal(t, "Петров", user.LastName)
	assert.Equal(t, "ivan_p", user.Username)
	assert.Equal(t, "https://t.me/i/userpic/320/ivan.jpg", user.PhotoURL)
}

func TestVerify_OptionalUserFieldsAbsent(t *testing.T) {
	fields := validFields()
	fields["user"] = `{"id":42,"first_name":"Anna"}`
	initData := signInitData(t, fields, testBotToken)

	user, err := Verify(initData, testBotToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "Anna", user.FirstName)
	assert.Empty(t, user.LastName)
	assert.Empty(t, user.Username)
	assert.Empty(t, user.PhotoURL)
}

func TestVerify_TamperedHash(t *testing.T) {
	initData := signInitData(t, validFields(), testBotToken)

	values, err := url.ParseQuery(initData)
	require.NoError(t, err)
	hash := values.Get("hash")

	// Мутация каждого символа подписи должна приводить к отказу.
	for i := 0; i < len(hash); i++ {
		mutated := []byte(hash)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		values.Set("hash", string(mutated))

		user, err := Verify(values.Encode(), testBotToken)
		assert.ErrorIs(t, err, ErrInvalidInitData, "позиция %d", i)
		assert.Nil(t, user)
	}
}

func TestVerify_MissingHash(t *testing.T) {
	fields := validFields()
	q := url.Values{}
	for k, v := range fields {
		q.Set(k, v)
	}

	user, err := Verify(q.Encode(), testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
	assert.Nil(t, user)
}

func TestVerify_SignedWithDifferentBotToken(t *testing.T) {
	initData := signInitData(t, validFields(), "8000000002:AAE-another-bot-token")

	user, err := Verify(initData, testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
	assert.Nil(t, user)
}

func TestVerify_TamperedPayloadField(t *testing.T) {
	initData := signInitData(t, validFields(), testBotToken)

	values, err := url.ParseQuery(initData)
	require.NoError(t, err)
	values.Set("auth_date", "1730009999")

	user, err := Verify(values.Encode(), testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
	assert.Nil(t, user)
}

func TestVerify_MalformedUserJSON(t *testing.T) {
	fields := validFields()
	fields["user"] = `{"id":`
	initData := signInitData(t, fields, testBotToken)

	user, err := Verify(initData, testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
	assert.Nil(t, user)
}

func TestVerify_MissingUserField(t *testing.T) {
	fields := validFields()
	delete(fields, "user")
	initData := signInitData(t, fields, testBotToken)

	user, err := Verify(initData, testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
	assert.Nil(t, user)
}

func TestVerify_UserWithoutID(t *testing.T) {
	fields := validFields()
	fields["user"] = `{"first_name":"NoID"}`
	initData := signInitData(t, fields, testBotToken)

	user, err := Verify(initData, testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
	assert.Nil(t, user)
}

func TestVerify_GarbageInput(t *testing.T) {
	for _, input := range []string{"", "%zz", "hash=abc", "not-a-query-string"} {
		user, err := Verify(input, testBotToken)
		assert.Error(t, err, "input=%q", input)
		assert.Nil(t, user)
	}
}

func TestVerify_Deterministic(t *testing.T) {
	initData := signInitData(t, validFields(), testBotToken)

	first, err := Verify(initData, testBotToken)
	require.NoError(t, err)
	second, err := Verify(initData, testBotToken)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVerify_KnownVector(t *testing.T) {
	// Контрольный вектор, посчитанный по схеме из документации Telegram:
	// check-string полей auth_date и user, отсортированных лексикографически.
	fields := map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":1,"first_name":"A"}`,
	}
	initData := signInitData(t, fields, testBotToken)

	// Подпись должна быть нижним регистром hex.
	values, _ := url.ParseQuery(initData)
	assert.Equal(t, strings.ToLower(values.Get("hash")), values.Get("hash"))
	assert.Len(t, values.Get("hash"), 64)

	user, err := Verify(initData, testBotToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestVerify_RepeatedFieldLastValueWins(t *testing.T) {
	// При повторе поля подписывается последнее значение.
	fields := validFields()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(testBotToken))
	mac := hmac.New(sha256.New, secretMac.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	// Первое вхождение auth_date - мусор, второе - подписанное значение.
	raw := fmt.Sprintf("auth_date=%s&auth_date=%s&query_id=%s&user=%s&hash=%s",
		"999", url.QueryEscape(fields["auth_date"]),
		url.QueryEscape(fields["query_id"]), url.QueryEscape(fields["user"]), hash)

	user, err := Verify(raw, testBotToken)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), user.ID)
}
