package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"electric-service/internal/controllers"
	"electric-service/internal/dto"
	"electric-service/internal/services"
	apperrors "electric-service/pkg/errors"
	"electric-service/pkg/middleware"
	"electric-service/pkg/service"
	"electric-service/pkg/utils"
)

// fakeClientRepo считает обращения: preflight обязан отвечать без единого
// похода в хранилище.
type fakeClientRepo struct {
	mu    sync.Mutex
	calls int
}

func (r *fakeClientRepo) hit() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *fakeClientRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *fakeClientRepo) Upsert(_ context.Context, payload dto.UpsertClientDTO) (*dto.ClientDTO, error) {
	r.hit()
	return &dto.ClientDTO{ID: 1, TelegramID: payload.TelegramID, Name: payload.Name, Role: "client"}, nil
}

func (r *fakeClientRepo) UpsertTx(_ context.Context, _ pgx.Tx, _ dto.UpsertClientDTO) (*dto.ClientDTO, error) {
	r.hit()
	return nil, apperrors.ErrNotFound
}

func (r *fakeClientRepo) FindByTelegramID(_ context.Context, _ int64) (*dto.ClientDTO, error) {
	r.hit()
	return nil, apperrors.ErrNotFound
}

func (r *fakeClientRepo) FindByID(_ context.Context, _ uint64) (*dto.ClientDTO, error) {
	r.hit()
	return nil, apperrors.ErrNotFound
}

func newTestRouter(t *testing.T) (*echo.Echo, *fakeClientRepo) {
	t.Helper()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = utils.HTTPErrorHandler(zap.NewNop())
	e.Validator = utils.NewValidator(validator.New())
	e.Use(middleware.CORS())

	repo := &fakeClientRepo{}
	jwtSvc := service.NewJWTService("test-secret", time.Hour, time.Hour)
	authSvc := services.NewAuthService(repo, jwtSvc, "7000000001:AAHk3x-test", zap.NewNop())

	api := e.Group("/api")
	runAuthRouter(api, controllers.NewAuthController(authSvc, zap.NewNop()))

	return e, repo
}

func TestPreflightReturns200WithCORSHeaders(t *testing.T) {
	e, repo := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/telegram", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), "POST")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))

	// Preflight не трогает хранилище.
	assert.Zero(t, repo.callCount())
}

func TestMethodNotAllowedBody(t *testing.T) {
	e, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/telegram", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestLogin_MissingInitData(t *testing.T) {
	e, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/telegram", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestLogin_BadSignature(t *testing.T) {
	e, repo := newTestRouter(t)

	body := `{"initData":"auth_date=1&user=%7B%22id%22%3A1%7D&hash=deadbeef"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/telegram", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	// Невалидная подпись отклоняется до работы с клиентами.
	assert.Zero(t, repo.callCount())
}
