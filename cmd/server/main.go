package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/handlers"
	"messenger-service/internal/monitorclient"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
	"messenger-service/internal/security"
	"messenger-service/internal/telemetry"
)

func main() {
	cfg := config.LoadServer()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), "messenger-service", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, "messenger-service", cfg.Environment)

	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	capture := monitorclient.New(cfg.MonitorURL)

	userRepo := repositories.NewUserRepo(database)
	friendRepo := repositories.NewFriendRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	routes := handlers.Routes{
		Auth:     handlers.NewAuthHandler(userRepo, hasher, audit),
		Users:    handlers.NewUserHandler(userRepo),
		Friends:  handlers.NewFriendHandler(friendRepo, userRepo, chatRepo, audit),
		Chats:    handlers.NewChatHandler(chatRepo, audit),
		Messages: handlers.NewMessageHandler(chatRepo, messageRepo, userRepo, capture),
	}

	var extra []gin.HandlerFunc
	if cfg.OTLPEndpoint != "" {
		extra = append(extra, otelgin.Middleware("messenger-service"))
	}

	router := handlers.NewRouter(routes, extra...)
	handlers.RegisterDebugRoutes(router, audit, cfg.Debug)

	log.Printf("messenger api listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
