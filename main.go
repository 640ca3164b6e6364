package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"factory-chat-service/internal/auth"
	"factory-chat-service/internal/chat"
	"factory-chat-service/internal/config"
	"factory-chat-service/internal/db"
	"factory-chat-service/internal/handlers"
	"factory-chat-service/internal/logging"
	"factory-chat-service/internal/middleware"
	"factory-chat-service/internal/notifications"
	"factory-chat-service/internal/observability"
	"factory-chat-service/internal/rabbitmq"
	"factory-chat-service/internal/repositories"
	"factory-chat-service/internal/telemetry"
	"factory-chat-service/internal/ws"
)

const serviceName = "factory-chat-service"

func main() {
	cfg, err := config.Load(os.Getenv("CHAT_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTracer(context.Background(), cfg.Telemetry.OTLPEndpoint, cfg.Environment)
		if err != nil {
			logger.Warn("tracer init failed, continuing without traces", zap.Error(err))
		} else {
			defer shutdown(context.Background())
		}
	}

	database, err := db.Connect(cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
	defer publisher.Close()
	auditEmitter := telemetry.NewAuditEmitter(publisher, "audit.chat", serviceName, cfg.Environment, logger)

	if cfg.RabbitMQ.URL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Warn("ws event publisher unavailable", zap.Error(err))
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	receiptRepo := repositories.NewReceiptRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	userRepo := repositories.NewUserRepo(database)

	authenticator := auth.NewJWTAuthenticator(cfg.JWT.Secret, userRepo)

	hub := ws.NewHub(logger)
	presence := ws.NewPresence()

	dispatcher := notifications.NewDispatcher(notificationRepo, hub, logger)
	chatService := chat.NewService(conversationRepo, messageRepo, receiptRepo, hub, dispatcher, auditEmitter, logger)
	wsHandler := ws.NewHandler(hub, presence, authenticator, chatService, logger)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	messageHandler := handlers.NewMessageHandler(conversationRepo, messageRepo, chatService)
	presenceHandler := handlers.NewPresenceHandler(presence)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", wsHandler.Handle)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(authenticator))
	{
		api.GET("/notifications", notificationHandler.ListNotifications)
		api.PATCH("/notifications/:notification_id/read", notificationHandler.MarkNotificationRead)
		api.POST("/notifications/read-all", notificationHandler.MarkAllNotificationsRead)
		api.GET("/conversations/:conversation_id/messages", messageHandler.GetConversationMessages)
		api.POST("/conversations/:conversation_id/messages/attachment", messageHandler.PostAttachmentMessage)
		api.GET("/presence/online", presenceHandler.ListOnlineUsers)
	}

	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.Debug)

	logger.Info("chat service listening",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("environment", cfg.Environment))
	if err := router.Run(cfg.Server.Addr()); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
