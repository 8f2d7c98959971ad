// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to workflow
// engine and service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/application/service"
	appworkflow "github.com/ordem-digital/protocol-engine/internal/application/workflow"
	domainwf "github.com/ordem-digital/protocol-engine/internal/domain/workflow"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/storage"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config        ServerConfig
	httpServer    *http.Server
	router        *gin.Engine
	engine        appworkflow.Orchestrator
	registry      *domainwf.Registry
	protocolRepo  port.ProtocolRepository
	accountRepo   port.AccountRepository
	memberRepo    port.MemberRepository
	reportService service.ReportService
	receiptStore  *storage.ReceiptStore
	gatherer      prometheus.Gatherer
	logger        Logger
}

// NewServer creates a new HTTP server with the given dependencies
func NewServer(
	config ServerConfig,
	engine appworkflow.Orchestrator,
	registry *domainwf.Registry,
	protocolRepo port.ProtocolRepository,
	accountRepo port.AccountRepository,
	memberRepo port.MemberRepository,
	reportService service.ReportService,
	receiptStore *storage.ReceiptStore,
	gatherer prometheus.Gatherer,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:        config,
		router:        router,
		engine:        engine,
		registry:      registry,
		protocolRepo:  protocolRepo,
		accountRepo:   accountRepo,
		memberRepo:    memberRepo,
		reportService: reportService,
		receiptStore:  receiptStore,
		gatherer:      gatherer,
		logger:        logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.engine, s.registry, s.protocolRepo, s.accountRepo, s.memberRepo, s.reportService, s.receiptStore, s.logger)

	// Health check and metrics
	s.router.GET("/health", handlers.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	// API routes; the acting account is identified by the X-Account-ID header
	api := s.router.Group("/api/v1")
	api.Use(handlers.ActorMiddleware())
	{
		api.POST("/protocols", handlers.CreateProtocol)
		api.GET("/protocols", handlers.ListProtocols)
		api.GET("/protocols/:id", handlers.GetProtocol)
		api.POST("/protocols/:id/transition", handlers.Transition)
		api.POST("/protocols/:id/receipt", handlers.UploadReceipt)
		api.GET("/protocols/:id/history", handlers.GetHistory)

		api.GET("/workflows", handlers.ListWorkflows)

		api.GET("/assemblies/:id/members", handlers.ListMembers)
		api.GET("/assemblies/:id/reports/members", handlers.MemberRosterReport)
		api.GET("/reports/protocols", handlers.ProtocolSummaryReport)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
