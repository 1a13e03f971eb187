package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/intentbot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/intentbot-backend/internal/http/middleware"
)

type RouterConfig struct {
	AllowOrigins []string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	IntentHandler   *httpH.IntentHandler
	ChatHandler     *httpH.ChatHandler
	TrainingHandler *httpH.TrainingHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS(cfg.AllowOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Auth
	if cfg.AuthHandler != nil {
		auth := r.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		if cfg.AuthMiddleware != nil {
			auth.GET("/me", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Me)
		}
	}

	api := r.Group("/api")
	{
		// Chat (public: the widget talks here without a session)
		if cfg.ChatHandler != nil {
			api.POST("/chat", cfg.ChatHandler.Classify)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Feedback queue
		if cfg.ChatHandler != nil {
			protected.GET("/chat/history", cfg.ChatHandler.History)
			protected.GET("/chat/new-data", cfg.ChatHandler.ListPending)
			protected.POST("/chat/assign", cfg.ChatHandler.Assign)
		}

		// Dataset
		if cfg.IntentHandler != nil {
			protected.GET("/intents", cfg.IntentHandler.List)
			protected.POST("/intents", cfg.IntentHandler.Create)
			protected.GET("/intents/export", cfg.IntentHandler.Export)
			protected.POST("/intents/sync", cfg.IntentHandler.Sync)
			protected.GET("/intents/:id", cfg.IntentHandler.Get)
			protected.PUT("/intents/:id", cfg.IntentHandler.Update)
			protected.DELETE("/intents/:id", cfg.IntentHandler.Delete)
			protected.POST("/intents/:id/patterns", cfg.IntentHandler.AddPattern)
		}

		// Training
		if cfg.TrainingHandler != nil {
			protected.POST("/intents/retrain", cfg.TrainingHandler.Retrain)
			protected.GET("/training/history", cfg.TrainingHandler.History)
			protected.GET("/training/history/:id", cfg.TrainingHandler.Get)
			protected.DELETE("/training/history/:id", cfg.TrainingHandler.Delete)
		}
	}

	return r
}
