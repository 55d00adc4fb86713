package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"template-engine-service/config"
	"template-engine-service/handlers"
	"template-engine-service/services"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	router     *mux.Router
	httpServer *http.Server
	services   *services.ServiceContainer
	logger     *zap.Logger

	// Handlers
	placeholderHandler *handlers.PlaceholderHandler
	contentHandler     *handlers.ContentHandler
	templateHandler    *handlers.TemplateHandler
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Create service factory and initialize services
	serviceFactory := services.NewServiceFactory(cfg, logger)
	serviceContainer, err := serviceFactory.CreateServices()
	if err != nil {
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	router := mux.NewRouter()

	server := &Server{
		config:   cfg,
		router:   router,
		services: serviceContainer,
		logger:   logger,

		placeholderHandler: handlers.NewPlaceholderHandler(serviceContainer.Placeholders, logger),
		contentHandler:     handlers.NewContentHandler(serviceContainer.Validator, serviceContainer.Cache, serviceContainer.Metrics, logger),
		templateHandler:    handlers.NewTemplateHandler(serviceContainer.Checker, logger),

		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {

	// API version prefix
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", s.healthCheck).Methods("GET", "OPTIONS")

	// Performance and monitoring endpoints
	if s.config.Performance.MetricsEnabled && s.services.Metrics != nil {
		api.HandleFunc(s.config.Performance.MetricsEndpoint, s.metricsHandler).Methods("GET")
	}
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods("GET")
	api.HandleFunc("/cache/clear", s.cacheClearHandler).Methods("POST")

	// Placeholder routes
	api.HandleFunc("/placeholders", s.placeholderHandler.GetCatalog).Methods("GET")
	api.HandleFunc("/placeholders/parse", s.placeholderHandler.ParsePlaceholders).Methods("POST")
	api.HandleFunc("/placeholders/validate", s.placeholderHandler.ValidatePlaceholders).Methods("POST")
	api.HandleFunc("/placeholders/suggest", s.placeholderHandler.Suggest).Methods("POST")
	api.HandleFunc("/placeholders/context-check", s.placeholderHandler.CheckContext).Methods("POST")
	api.HandleFunc("/placeholders/{key}", s.placeholderHandler.GetPlaceholder).Methods("GET")

	// Content validation routes
	api.HandleFunc("/content/validate", s.contentHandler.ValidateContent).Methods("POST")
	api.HandleFunc("/content/validate-realtime", s.contentHandler.ValidateRealTime).Methods("POST")
	api.HandleFunc("/content/rules", s.contentHandler.GetRules).Methods("GET")
	api.HandleFunc("/content/rules/{id}", s.contentHandler.GetRule).Methods("GET")
	api.HandleFunc("/content/rules/{id}", s.contentHandler.ConfigureRule).Methods("PUT")

	// Template routes
	api.HandleFunc("/templates/check", s.templateHandler.CheckTemplate).Methods("POST")
	api.HandleFunc("/templates/import", s.templateHandler.ImportMarkdown).Methods("POST")
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// CORS must be first to handle preflight requests
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.contentTypeMiddleware)

	// Add performance monitoring middleware if enabled
	if s.config.Performance.MonitoringEnabled && s.services.Metrics != nil {
		s.router.Use(s.performanceMiddleware)
	}
}

// Start starts the HTTP server and blocks until a shutdown signal arrives
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("port", s.config.Server.Port))

	// Start server in a goroutine
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.logger.Info("shutting down server")
	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.services.Close()
	return err
}

// healthCheck handles health check requests
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	// Preflight requests carry no body
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if s.services.Health == nil {
		// Fallback to simple health check
		if err := s.services.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","error":"%s","timestamp":"%s"}`,
				err.Error(), time.Now().UTC().Format(time.RFC3339))
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339))
		return
	}

	systemHealth := s.services.Health.CheckHealth(r.Context())

	// Degraded still answers 200 so load balancers keep routing
	statusCode := http.StatusOK
	if systemHealth.Status == services.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(systemHealth); err != nil {
		s.logger.Error("failed to encode health response", zap.Error(err))
	}
}

// metricsHandler handles metrics requests
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.services.Metrics == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"metrics service not available"}`)
		return
	}

	metrics := s.services.Metrics.GetMetrics()

	// Add cache stats if available
	if s.services.Cache != nil {
		metrics["cache"] = s.services.Cache.Stats()
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metrics); err != nil {
		s.logger.Error("failed to encode metrics", zap.Error(err))
	}
}

// cacheStatsHandler handles cache statistics requests
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.services.Cache == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"cache not available"}`)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(s.services.Cache.Stats()); err != nil {
		s.logger.Error("failed to encode cache stats", zap.Error(err))
	}
}

// cacheClearHandler handles cache clear requests
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.services.Cache == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"cache not available"}`)
		return
	}

	s.services.Cache.Clear()
	s.logger.Info("validation cache cleared")

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"message":"cache cleared successfully","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339))
}
