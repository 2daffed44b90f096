package ui

import (
	"context"
	"net/http"
	"time"

	"abkpi/app"
	"abkpi/internal"
	"abkpi/internal/config"

	"github.com/gin-gonic/gin"
)

// Server serves the analysis HTTP API.
type Server struct {
	router        *gin.Engine
	service       *app.AnalysisService
	logger        *internal.Logger
	maxUploadSize int64
	httpServer    *http.Server
}

// NewServer creates the gin engine and registers every route.
func NewServer(service *app.AnalysisService, cfg config.ServerConfig, logger *internal.Logger) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:        gin.New(),
		service:       service,
		logger:        logger.WithPrefix("API"),
		maxUploadSize: cfg.MaxUploadSize,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/detect-country", s.handleDetectCountry)
		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
		api.GET("/runs/:id/insights", s.handleRunInsights)
		api.GET("/runs/:id/excel", s.handleRunExcel)
	}
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
