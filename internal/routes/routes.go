// Файл: internal/routes/routes.go
package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"electric-service/internal/controllers"
	"electric-service/internal/planfix"
	"electric-service/internal/repositories"
	"electric-service/internal/services"
	"electric-service/pkg/config"
	"electric-service/pkg/mailer"
	"electric-service/pkg/middleware"
	"electric-service/pkg/service"
	"electric-service/pkg/telegram"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Order   *zap.Logger
	Planfix *zap.Logger
	Notify  *zap.Logger
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) {
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	txManager := repositories.NewTxManager(dbConn)

	// Репозитории
	clientRepo := repositories.NewClientRepository(dbConn)
	catalogRepo := repositories.NewCatalogRepository(dbConn)
	orderRepo := repositories.NewOrderRepository(dbConn, loggers.Order)
	historyRepo := repositories.NewOrderHistoryRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// Внешние клиенты
	planfixCli := planfix.NewClient(cfg.Planfix.APIKey, cfg.Planfix.Account)
	telegramSvc := telegram.NewService(cfg.Telegram.BotToken)
	mailerSvc := mailer.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)

	// Сервисы
	notificationSvc := services.NewNotificationService(telegramSvc, mailerSvc, cfg.SMTP.FeedbackTo, cfg.Sheets.WebhookURL, loggers.Notify)
	authSvc := services.NewAuthService(clientRepo, jwtSvc, cfg.Telegram.BotToken, loggers.Auth)
	orderSvc := services.NewOrderService(txManager, orderRepo, clientRepo, historyRepo, catalogRepo, planfixCli, notificationSvc, loggers.Order)
	catalogSvc := services.NewCatalogService(catalogRepo, cacheRepo, loggers.Main)
	syncSvc := services.NewSyncService(planfixCli, orderSvc, orderRepo, catalogRepo, loggers.Planfix)

	// Контроллеры
	authCtrl := controllers.NewAuthController(authSvc, loggers.Auth)
	orderCtrl := controllers.NewOrderController(orderSvc, loggers.Order)
	catalogCtrl := controllers.NewCatalogController(catalogSvc, loggers.Main)
	planfixCtrl := controllers.NewPlanfixController(syncSvc, loggers.Planfix)
	notifyCtrl := controllers.NewNotifyController(notificationSvc, loggers.Notify)
	reportCtrl := controllers.NewReportController(orderSvc, loggers.Main)

	runAuthRouter(api, authCtrl)
	runOrderRouter(api, orderCtrl, authMW)
	runCatalogRouter(api, catalogCtrl)
	runPlanfixRouter(api, planfixCtrl)
	runNotifyRouter(api, notifyCtrl)
	runReportRouter(api, reportCtrl, authMW)

	loggers.Main.Info("маршруты зарегистрированы")
}
