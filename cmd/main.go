package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/intentbot-backend/internal/config"
	"github.com/yungbote/intentbot-backend/internal/db"
	httpx "github.com/yungbote/intentbot-backend/internal/http"
	httpH "github.com/yungbote/intentbot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/intentbot-backend/internal/http/middleware"
	"github.com/yungbote/intentbot-backend/internal/model"
	"github.com/yungbote/intentbot-backend/internal/observability"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/repos"
	"github.com/yungbote/intentbot-backend/internal/services"
	"github.com/yungbote/intentbot-backend/internal/training"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "intentbot-backend",
		Environment: cfg.Env,
	})
	if otelShutdown != nil {
		defer func() { _ = otelShutdown(context.Background()) }()
	}

	// Database
	dbService, err := db.NewService(cfg.Database, log)
	if err != nil {
		log.Fatal("database init failed", "error", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		log.Fatal("auto migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Repos
	intentRepo := repos.NewIntentRepo(gdb, log)
	patternRepo := repos.NewPatternRepo(gdb, log)
	responseRepo := repos.NewResponseRepo(gdb, log)
	chatLogRepo := repos.NewChatLogRepo(gdb, log)
	trainingRunRepo := repos.NewTrainingRunRepo(gdb, log)
	userRepo := repos.NewUserRepo(gdb, log)

	// Model registry
	registry := model.NewRegistry(cfg.Model, log)
	if err := registry.Reload(); err != nil {
		log.Warn("no model loaded at startup, chat degrades to fallback", "error", err)
	}

	// Training pipeline
	pipeline := training.NewPipeline(gdb, intentRepo, chatLogRepo, trainingRunRepo, registry, cfg.Model, log)

	// Services
	datasetService := services.NewDatasetService(gdb, intentRepo, patternRepo, responseRepo, log)
	chatService := services.NewChatService(gdb, intentRepo, patternRepo, chatLogRepo, registry, cfg.Model, log)
	trainingService := services.NewTrainingService(pipeline, trainingRunRepo, log)
	authService := services.NewAuthService(userRepo, cfg.Auth, log)

	// Handlers
	authHandler := httpH.NewAuthHandler(authService)
	intentHandler := httpH.NewIntentHandler(log, datasetService, cfg.Dataset.Path)
	chatHandler := httpH.NewChatHandler(log, chatService)
	trainingHandler := httpH.NewTrainingHandler(log, trainingService)
	healthHandler := httpH.NewHealthHandler()

	// Middleware
	authMiddleware := httpMW.NewAuthMiddleware(log, authService)

	srv := httpx.NewServer(cfg.HTTP, log, httpx.RouterConfig{
		AllowOrigins: cfg.HTTP.AllowOrigins,

		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,

		IntentHandler:   intentHandler,
		ChatHandler:     chatHandler,
		TrainingHandler: trainingHandler,

		HealthHandler: healthHandler,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
