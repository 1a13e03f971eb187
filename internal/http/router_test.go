package http

import (
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/intentbot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/intentbot-backend/internal/http/middleware"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
)

func TestRouterRegistersRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	r := NewRouter(RouterConfig{
		AuthHandler:     httpH.NewAuthHandler(nil),
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, nil),
		IntentHandler:   httpH.NewIntentHandler(log, nil, ""),
		ChatHandler:     httpH.NewChatHandler(log, nil),
		TrainingHandler: httpH.NewTrainingHandler(log, nil),
		HealthHandler:   httpH.NewHealthHandler(),
	})

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	want := []string{
		"GET /healthcheck",
		"POST /auth/register",
		"POST /auth/login",
		"GET /auth/me",
		"POST /api/chat",
		"GET /api/chat/history",
		"GET /api/chat/new-data",
		"POST /api/chat/assign",
		"GET /api/intents",
		"POST /api/intents",
		"GET /api/intents/export",
		"POST /api/intents/sync",
		"GET /api/intents/:id",
		"PUT /api/intents/:id",
		"DELETE /api/intents/:id",
		"POST /api/intents/:id/patterns",
		"POST /api/intents/retrain",
		"GET /api/training/history",
		"GET /api/training/history/:id",
		"DELETE /api/training/history/:id",
	}
	for _, route := range want {
		if !registered[route] {
			t.Fatalf("route not registered: %s", route)
		}
	}
}
