package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/intentbot-backend/internal/config"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
)

type Server struct {
	Engine *gin.Engine

	cfg config.HTTPConfig
	log *logger.Logger
	srv *http.Server
}

func NewServer(cfg config.HTTPConfig, log *logger.Logger, routerCfg RouterConfig) *Server {
	engine := NewRouter(routerCfg)
	return &Server{
		Engine: engine,
		cfg:    cfg,
		log:    log.With("component", "HTTPServer"),
		srv: &http.Server{
			Addr:    cfg.Addr,
			Handler: engine,
		},
	}
}

// Run serves until the context is canceled, then shuts down gracefully
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		s.log.Info("server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
