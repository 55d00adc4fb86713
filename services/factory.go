package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"template-engine-service/config"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	// Core services
	Catalog      *PlaceholderCatalog
	Placeholders PlaceholderService
	Validator    ContentValidationService
	Checker      TemplateCheckService

	// Performance and monitoring
	Cache   *ValidationCache
	Metrics MetricsService
	Logger  *zap.Logger
	Health  HealthService
}

// ServiceFactory creates and configures all services
type ServiceFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config, logger *zap.Logger) *ServiceFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateServices creates and wires all services together
func (f *ServiceFactory) CreateServices() (*ServiceContainer, error) {
	logger := f.logger

	catalog := DefaultCatalog()
	if f.config.Catalog.Path != "" {
		loaded, err := LoadCatalogFile(f.config.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load placeholder catalog: %w", err)
		}
		catalog = loaded
		logger.Info("loaded placeholder catalog",
			zap.String("path", f.config.Catalog.Path),
			zap.Int("placeholders", catalog.Len()))
	}

	engine := NewPlaceholderEngine(catalog, f.config.Suggestions.DefaultMaxResults, logger)
	validator := NewContentValidator(f.config.Validation, logger)
	importer := NewMarkdownImporter(logger)
	checker := NewTemplateChecker(engine, validator, importer, logger)

	var cache *ValidationCache
	if f.config.Cache.Enabled {
		cache = NewValidationCache(f.config.Cache, logger)
	}

	var metricsService MetricsService
	if f.config.Performance.MetricsEnabled {
		metricsService = NewInMemoryMetrics()
	}

	var checkService TemplateCheckService = checker
	if metricsService != nil {
		checkService = NewMonitoredChecker(checker, metricsService)
	}

	healthService := NewHealthService("1.0.0", logger)
	healthService.RegisterChecker(NewCatalogHealthChecker("catalog", catalog))
	healthService.RegisterChecker(NewValidatorHealthChecker("validator", validator))
	if cache != nil {
		healthService.RegisterChecker(NewCacheHealthChecker("cache", cache))
	}
	if metricsService != nil {
		healthService.RegisterChecker(NewMetricsHealthChecker("metrics", metricsService))
	}

	container := &ServiceContainer{
		Catalog:      catalog,
		Placeholders: engine,
		Validator:    validator,
		Checker:      checkService,
		Cache:        cache,
		Metrics:      metricsService,
		Logger:       logger,
		Health:       healthService,
	}

	return container, nil
}

// HealthCheck verifies all services are healthy
func (c *ServiceContainer) HealthCheck() error {
	if c.Health == nil {
		return nil
	}
	health := c.Health.CheckHealth(context.Background())
	if health.Status == HealthStatusUnhealthy {
		return fmt.Errorf("system unhealthy: %d components checked", len(health.Components))
	}
	return nil
}

// Close releases background resources held by the container.
func (c *ServiceContainer) Close() {
	if c.Cache != nil {
		c.Cache.Stop()
	}
}
