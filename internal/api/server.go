package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/valuequant/backend/pkg/config"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// Server represents the HTTP API server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	port       string
	env        string
}

// New creates a new API server.
// WriteTimeout covers a full ranking run, which fetches the whole universe.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: log.Module("api"),
		port:   cfg.Port,
		env:    cfg.Env,
	}
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	s.logger.WithFields(logger.Fields{
		"port": s.port,
		"env":  s.env,
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
