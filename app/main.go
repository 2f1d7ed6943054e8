// Файл: app/main.go
package main

import (
	"context"
	"net/http"

	"electric-service/internal/routes"
	"electric-service/pkg/config"
	"electric-service/pkg/database/postgresql"
	apperrors "electric-service/pkg/errors"
	applogger "electric-service/pkg/logger"
	appmiddleware "electric-service/pkg/middleware"
	"electric-service/pkg/service"
	"electric-service/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Server.LogLevel)
	defer func() { _ = logger.Sync() }()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = utils.HTTPErrorHandler(logger)
	e.Validator = utils.NewValidator(validator.New())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(appmiddleware.RequestLogger(logger))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("паника при обработке запроса",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(appmiddleware.CORS())

	ctx := context.Background()
	dbConn, err := postgresql.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("не удалось подключиться к базе данных", zap.Error(err))
	}
	defer dbConn.Close()

	if err := postgresql.Migrate(dbConn); err != nil {
		logger.Fatal("не удалось применить миграции", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis недоступен, каталог будет ходить в базу напрямую", zap.Error(err))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)

	loggers := &routes.Loggers{
		Main:    logger.Named("main"),
		Auth:    logger.Named("auth"),
		Order:   logger.Named("order"),
		Planfix: logger.Named("planfix"),
		Notify:  logger.Named("notify"),
	}
	routes.InitRouter(e, dbConn, redisClient, jwtSvc, loggers, cfg)

	logger.Info("сервер запускается", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
		logger.Fatal("сервер остановлен с ошибкой", zap.Error(err))
	}
}
