package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"signal-agent/internal/interfaces"
	"signal-agent/internal/logger"
)

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	ProductionMode bool
	AllowOrigins   []string
	RequestTimeout time.Duration
}

// Info is what /health reports about the running service.
type Info struct {
	Version  string
	Decider  string
	Source   string
	Exchange string
	Fallback bool
}

// Server represents the HTTP API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	engine     interfaces.Engine
	config     Config
	info       Info
}

// New creates the router and registers every route.
func New(config Config, eng interfaces.Engine, info Info) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(recoverJSON))
	router.Use(requestContext(config.RequestTimeout))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	s := &Server{
		router: router,
		engine: eng,
		config: config,
		info:   info,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/act", s.handleAct)
	s.router.POST("/evolve", s.handleEvolve)
	s.router.POST("/step", s.handleStep)
	s.router.POST("/reset", s.handleReset)
	s.router.GET("/account", s.handleAccount)
	s.router.GET("/health", s.handleHealth)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info(context.Background(), "Starting HTTP server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Shutting down HTTP server")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}
