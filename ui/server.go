package ui

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lumos/app"
	"lumos/internal"
	"lumos/internal/config"
	"lumos/ui/middleware"
)

// Server exposes the analysis service over HTTP
type Server struct {
	router  *gin.Engine
	service *app.AnalysisService
	config  *config.Config
	logger  *internal.Logger
}

// NewServer creates the gin engine and registers every route
func NewServer(service *app.AnalysisService, cfg *config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	gin.SetMode(cfg.Server.GinMode)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	s := &Server{
		router:  router,
		service: service,
		config:  cfg,
		logger:  logger.With("server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api/v1", middleware.LimitUpload(s.config.MaxUploadBytes()))
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/plot", s.handlePlot)

	exports := gin.WrapH(newExportsRouter(s.config.Output.Dir, s.logger))
	s.router.GET("/exports/*path", exports)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on http://localhost:%s", s.config.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
