package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jax-labs/apexflow/engine"
	"github.com/jax-labs/apexflow/logger"
	"github.com/jax-labs/apexflow/observability"
	"github.com/jax-labs/apexflow/version"
)

// Deps are the collaborators the HTTP layer exposes.
type Deps struct {
	Engine  *engine.Engine
	Metrics *observability.Metrics
	Logger  *logger.Logger
	// Checkers feed the /healthz component list.
	Checkers []observability.HealthChecker
	// ServiceName appears in health and version responses.
	ServiceName string
}

// Server is the HTTP front of the workflow engine.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	config     Config
	deps       Deps
	log        *logger.Logger
}

// New creates a Server with routes and middleware applied.
func New(cfg Config, deps Deps) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log := deps.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("server")

	s := &Server{
		router: gin.New(),
		config: cfg,
		deps:   deps,
		log:    log,
	}
	s.applyMiddleware()
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

// Router returns the underlying Gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) applyMiddleware() {
	s.router.Use(Recovery(s.log))
	s.router.Use(RequestID())
	s.router.Use(CORS(s.config.CORS))
	s.router.Use(RequestLogger(s.log))
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/version", s.handleVersion)

	api := s.router.Group("/api/v1")
	if s.config.Auth.Enabled {
		api.Use(Auth(s.config.Auth))
	}
	api.POST("/executions", s.handleExecute)
	api.POST("/workflows/validate", s.handleValidate)
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{"addr": s.httpServer.Addr})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down")
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	health := observability.NewServiceHealth(s.deps.ServiceName, version.Version)
	for _, checker := range s.deps.Checkers {
		health.AddComponent(checker.CheckHealth(c.Request.Context()))
	}

	status := http.StatusOK
	if health.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

func (s *Server) handleVersion(c *gin.Context) {
	RespondOK(c, version.GetVersionInfo())
}
