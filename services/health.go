package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"template-engine-service/models"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Name      string                 `json:"name"`
	Status    HealthStatus           `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
}

// SystemHealth represents the overall system health
type SystemHealth struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     time.Duration              `json:"uptime"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthChecker interface for health checking
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) ComponentHealth
}

// HealthService manages health checks for the system
type HealthService interface {
	RegisterChecker(checker HealthChecker)
	CheckHealth(ctx context.Context) SystemHealth
	CheckComponent(ctx context.Context, name string) (ComponentHealth, error)
	GetSystemInfo() map[string]interface{}
}

// DefaultHealthService implements HealthService
type DefaultHealthService struct {
	checkers  map[string]HealthChecker
	startTime time.Time
	version   string
	logger    *zap.Logger
}

// NewHealthService creates a new health service
func NewHealthService(version string, logger *zap.Logger) *DefaultHealthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DefaultHealthService{
		checkers:  make(map[string]HealthChecker),
		startTime: time.Now(),
		version:   version,
		logger:    logger,
	}
}

// RegisterChecker registers a health checker
func (h *DefaultHealthService) RegisterChecker(checker HealthChecker) {
	h.checkers[checker.Name()] = checker
	h.logger.Info("health checker registered", zap.String("component", checker.Name()))
}

// CheckHealth performs health checks on all registered components
func (h *DefaultHealthService) CheckHealth(ctx context.Context) SystemHealth {
	start := time.Now()
	components := make(map[string]ComponentHealth)
	overallStatus := HealthStatusHealthy

	for name, checker := range h.checkers {
		componentHealth := h.checkComponentWithTimeout(ctx, checker, 5*time.Second)
		components[name] = componentHealth

		switch componentHealth.Status {
		case HealthStatusUnhealthy:
			overallStatus = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if overallStatus == HealthStatusHealthy {
				overallStatus = HealthStatusDegraded
			}
		}
	}

	systemHealth := SystemHealth{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Uptime:     time.Since(h.startTime),
		Version:    h.version,
		Components: components,
	}

	h.logger.Info("health check completed",
		zap.String("status", string(overallStatus)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("components_checked", len(components)))

	return systemHealth
}

// CheckComponent checks the health of a specific component
func (h *DefaultHealthService) CheckComponent(ctx context.Context, name string) (ComponentHealth, error) {
	checker, exists := h.checkers[name]
	if !exists {
		return ComponentHealth{}, fmt.Errorf("component %s not found", name)
	}

	return h.checkComponentWithTimeout(ctx, checker, 5*time.Second), nil
}

// GetSystemInfo returns general system information
func (h *DefaultHealthService) GetSystemInfo() map[string]interface{} {
	return map[string]interface{}{
		"version":    h.version,
		"uptime":     time.Since(h.startTime).String(),
		"start_time": h.startTime.Format(time.RFC3339),
		"components": len(h.checkers),
	}
}

// checkComponentWithTimeout checks a component with a timeout
func (h *DefaultHealthService) checkComponentWithTimeout(ctx context.Context, checker HealthChecker, timeout time.Duration) ComponentHealth {
	start := time.Now()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultChan := make(chan ComponentHealth, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultChan <- ComponentHealth{
					Name:      checker.Name(),
					Status:    HealthStatusUnhealthy,
					Message:   fmt.Sprintf("Health check panicked: %v", r),
					Timestamp: time.Now(),
					Duration:  time.Since(start),
				}
			}
		}()

		result := checker.Check(timeoutCtx)
		result.Duration = time.Since(start)
		resultChan <- result
	}()

	select {
	case result := <-resultChan:
		return result
	case <-timeoutCtx.Done():
		return ComponentHealth{
			Name:      checker.Name(),
			Status:    HealthStatusUnhealthy,
			Message:   "Health check timed out",
			Timestamp: time.Now(),
			Duration:  timeout,
		}
	}
}

// CatalogHealthChecker verifies the placeholder catalog is loaded and
// usable.
type CatalogHealthChecker struct {
	name    string
	catalog *PlaceholderCatalog
}

// NewCatalogHealthChecker creates a catalog health checker
func NewCatalogHealthChecker(name string, catalog *PlaceholderCatalog) *CatalogHealthChecker {
	return &CatalogHealthChecker{
		name:    name,
		catalog: catalog,
	}
}

// Name returns the checker name
func (c *CatalogHealthChecker) Name() string {
	return c.name
}

// Check performs the catalog health check
func (c *CatalogHealthChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	health := ComponentHealth{
		Name:      c.name,
		Timestamp: time.Now(),
	}

	count := c.catalog.Len()
	if count == 0 {
		health.Status = HealthStatusUnhealthy
		health.Message = "Placeholder catalog is empty"
		health.Duration = time.Since(start)
		return health
	}

	health.Status = HealthStatusHealthy
	health.Message = "Placeholder catalog loaded"
	health.Duration = time.Since(start)
	health.Details = map[string]interface{}{
		"placeholders": count,
		"categories":   len(c.catalog.Categories()),
	}

	return health
}

// ValidatorHealthChecker runs a known-good document through the content
// validator to verify the rule set still accepts valid input.
type ValidatorHealthChecker struct {
	name      string
	validator *ContentValidator
}

// NewValidatorHealthChecker creates a validator health checker
func NewValidatorHealthChecker(name string, validator *ContentValidator) *ValidatorHealthChecker {
	return &ValidatorHealthChecker{
		name:      name,
		validator: validator,
	}
}

// Name returns the checker name
func (v *ValidatorHealthChecker) Name() string {
	return v.name
}

// Check performs the validator health check
func (v *ValidatorHealthChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	health := ComponentHealth{
		Name:      v.name,
		Timestamp: time.Now(),
	}

	probe := &models.DocumentNode{
		Type: models.NodeDoc,
		Content: []*models.DocumentNode{
			{
				Type:    models.NodeHeading,
				Attrs:   map[string]interface{}{"level": 1},
				Content: []*models.DocumentNode{{Type: models.NodeText, Text: "Systemprüfung"}},
			},
			{
				Type: models.NodeParagraph,
				Content: []*models.DocumentNode{{
					Type: models.NodeText,
					Text: "Die Systemprüfung bestätigt die Funktionsfähigkeit der Inhaltsregeln.",
				}},
			},
		},
	}

	summary := v.validator.ValidateContent(probe, nil)

	enabled := len(v.validator.EnabledRules())
	total := len(v.validator.Rules())

	if !summary.IsValid {
		health.Status = HealthStatusDegraded
		health.Message = "Known-good document no longer passes validation"
	} else {
		health.Status = HealthStatusHealthy
		health.Message = "Validation rules operational"
	}
	health.Duration = time.Since(start)
	health.Details = map[string]interface{}{
		"rules_total":   total,
		"rules_enabled": enabled,
		"probe_score":   summary.Score,
	}

	return health
}

// CacheHealthChecker checks cache service health
type CacheHealthChecker struct {
	name  string
	cache *ValidationCache
}

// NewCacheHealthChecker creates a cache health checker
func NewCacheHealthChecker(name string, cache *ValidationCache) *CacheHealthChecker {
	return &CacheHealthChecker{
		name:  name,
		cache: cache,
	}
}

// Name returns the checker name
func (c *CacheHealthChecker) Name() string {
	return c.name
}

// Check performs the cache health check
func (c *CacheHealthChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	health := ComponentHealth{
		Name:      c.name,
		Timestamp: time.Now(),
	}

	probe := models.ContentValidationSummary{IsValid: true, Score: 100}
	key := c.cache.Key([]byte("health_check_probe"), nil)

	c.cache.Set(key, probe)

	cached, ok := c.cache.Get(key)
	if !ok || cached.Score != probe.Score {
		health.Status = HealthStatusUnhealthy
		health.Message = "Cache round trip failed"
		health.Duration = time.Since(start)
		return health
	}

	stats := c.cache.Stats()

	health.Status = HealthStatusHealthy
	health.Message = "Cache operations successful"
	health.Duration = time.Since(start)
	health.Details = map[string]interface{}{
		"hit_rate":   stats.HitRate,
		"size":       stats.Size,
		"max_size":   stats.MaxSize,
		"generation": stats.Generation,
	}

	return health
}

// MetricsHealthChecker checks metrics service health
type MetricsHealthChecker struct {
	name    string
	metrics MetricsService
}

// NewMetricsHealthChecker creates a metrics health checker
func NewMetricsHealthChecker(name string, metrics MetricsService) *MetricsHealthChecker {
	return &MetricsHealthChecker{
		name:    name,
		metrics: metrics,
	}
}

// Name returns the checker name
func (m *MetricsHealthChecker) Name() string {
	return m.name
}

// Check performs the metrics health check
func (m *MetricsHealthChecker) Check(ctx context.Context) ComponentHealth {
	start := time.Now()

	health := ComponentHealth{
		Name:      m.name,
		Timestamp: time.Now(),
	}

	m.metrics.IncrementCounter("health_check_counter", map[string]string{"test": "true"})
	m.metrics.SetGauge("health_check_gauge", 42.0, map[string]string{"test": "true"})
	m.metrics.RecordDuration("health_check_duration", time.Millisecond*100, map[string]string{"test": "true"})

	allMetrics := m.metrics.GetMetrics()

	health.Status = HealthStatusHealthy
	health.Message = "Metrics operations successful"
	health.Duration = time.Since(start)
	health.Details = map[string]interface{}{
		"sections":   len(allMetrics),
		"has_system": allMetrics["system"] != nil,
	}

	return health
}
