package services

import (
	"sync"
	"time"

	"template-engine-service/models"
)

// MetricsService provides application metrics and monitoring
type MetricsService interface {
	IncrementCounter(name string, tags map[string]string)
	RecordDuration(name string, duration time.Duration, tags map[string]string)
	SetGauge(name string, value float64, tags map[string]string)
	GetMetrics() map[string]interface{}
	Reset()
}

// Counter represents a monotonically increasing counter
type Counter struct {
	Value int64             `json:"value"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// Histogram represents duration measurements
type Histogram struct {
	Count   int64             `json:"count"`
	Sum     time.Duration     `json:"sum"`
	Min     time.Duration     `json:"min"`
	Max     time.Duration     `json:"max"`
	Average time.Duration     `json:"average"`
	Tags    map[string]string `json:"tags,omitempty"`
	Buckets map[string]int64  `json:"buckets"` // Duration buckets for percentiles
}

// Gauge represents a value that can go up and down
type Gauge struct {
	Value float64           `json:"value"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// InMemoryMetrics implements MetricsService using in-memory storage
type InMemoryMetrics struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	histograms map[string]*Histogram
	gauges     map[string]*Gauge
	startTime  time.Time
}

// NewInMemoryMetrics creates a new in-memory metrics service
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters:   make(map[string]*Counter),
		histograms: make(map[string]*Histogram),
		gauges:     make(map[string]*Gauge),
		startTime:  time.Now(),
	}
}

// IncrementCounter increments a counter metric
func (m *InMemoryMetrics) IncrementCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.generateKey(name, tags)
	if counter, exists := m.counters[key]; exists {
		counter.Value++
	} else {
		m.counters[key] = &Counter{
			Value: 1,
			Tags:  tags,
		}
	}
}

// RecordDuration records a duration measurement
func (m *InMemoryMetrics) RecordDuration(name string, duration time.Duration, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.generateKey(name, tags)
	if histogram, exists := m.histograms[key]; exists {
		histogram.Count++
		histogram.Sum += duration

		if duration < histogram.Min || histogram.Min == 0 {
			histogram.Min = duration
		}
		if duration > histogram.Max {
			histogram.Max = duration
		}

		histogram.Average = histogram.Sum / time.Duration(histogram.Count)

		m.updateBuckets(histogram, duration)
	} else {
		m.histograms[key] = &Histogram{
			Count:   1,
			Sum:     duration,
			Min:     duration,
			Max:     duration,
			Average: duration,
			Tags:    tags,
			Buckets: make(map[string]int64),
		}
		m.updateBuckets(m.histograms[key], duration)
	}
}

// SetGauge sets a gauge value
func (m *InMemoryMetrics) SetGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.generateKey(name, tags)
	m.gauges[key] = &Gauge{
		Value: value,
		Tags:  tags,
	}
}

// GetMetrics returns all collected metrics
func (m *InMemoryMetrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := make(map[string]interface{})

	metrics["system"] = map[string]interface{}{
		"uptime":     time.Since(m.startTime).String(),
		"start_time": m.startTime.Format(time.RFC3339),
	}

	if len(m.counters) > 0 {
		counters := make(map[string]*Counter)
		for k, v := range m.counters {
			counters[k] = v
		}
		metrics["counters"] = counters
	}

	if len(m.histograms) > 0 {
		histograms := make(map[string]*Histogram)
		for k, v := range m.histograms {
			histograms[k] = v
		}
		metrics["histograms"] = histograms
	}

	if len(m.gauges) > 0 {
		gauges := make(map[string]*Gauge)
		for k, v := range m.gauges {
			gauges[k] = v
		}
		metrics["gauges"] = gauges
	}

	return metrics
}

// Reset clears all metrics
func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]*Counter)
	m.histograms = make(map[string]*Histogram)
	m.gauges = make(map[string]*Gauge)
	m.startTime = time.Now()
}

// generateKey creates a unique key for metrics with tags
func (m *InMemoryMetrics) generateKey(name string, tags map[string]string) string {
	key := name
	if tags != nil {
		for k, v := range tags {
			key += "|" + k + ":" + v
		}
	}
	return key
}

// updateBuckets updates histogram buckets for percentile calculation
func (m *InMemoryMetrics) updateBuckets(histogram *Histogram, duration time.Duration) {
	if histogram.Buckets == nil {
		histogram.Buckets = make(map[string]int64)
	}

	buckets := []struct {
		name  string
		limit time.Duration
	}{
		{"1ms", time.Millisecond},
		{"5ms", 5 * time.Millisecond},
		{"10ms", 10 * time.Millisecond},
		{"25ms", 25 * time.Millisecond},
		{"50ms", 50 * time.Millisecond},
		{"100ms", 100 * time.Millisecond},
		{"250ms", 250 * time.Millisecond},
		{"500ms", 500 * time.Millisecond},
		{"1s", time.Second},
		{"2.5s", 2500 * time.Millisecond},
		{"5s", 5 * time.Second},
		{"10s", 10 * time.Second},
	}

	for _, bucket := range buckets {
		if duration <= bucket.limit {
			histogram.Buckets[bucket.name]++
		}
	}

	// Always increment the "+Inf" bucket
	histogram.Buckets["+Inf"]++
}

// MonitoredChecker wraps a TemplateChecker with performance monitoring.
type MonitoredChecker struct {
	checker *TemplateChecker
	metrics MetricsService
}

// NewMonitoredChecker creates a monitored template checker
func NewMonitoredChecker(checker *TemplateChecker, metrics MetricsService) *MonitoredChecker {
	return &MonitoredChecker{
		checker: checker,
		metrics: metrics,
	}
}

// CheckTemplate runs the combined template check with monitoring
func (m *MonitoredChecker) CheckTemplate(req models.TemplateCheckRequest) models.TemplateCheckReport {
	start := time.Now()
	defer func() {
		m.metrics.RecordDuration("template.check.duration", time.Since(start), map[string]string{
			"operation": "template_check",
		})
		m.metrics.IncrementCounter("template.check.requests", map[string]string{
			"operation": "template_check",
		})
	}()

	report := m.checker.CheckTemplate(req)

	if !report.Valid {
		m.metrics.IncrementCounter("template.check.invalid", map[string]string{
			"operation": "template_check",
		})
	}
	m.metrics.SetGauge("template.check.placeholders", float64(len(report.Placeholders)), map[string]string{
		"operation": "template_check",
	})

	return report
}

// ImportMarkdown converts Markdown with monitoring
func (m *MonitoredChecker) ImportMarkdown(req models.ImportMarkdownRequest) models.ImportMarkdownResponse {
	start := time.Now()
	defer func() {
		m.metrics.RecordDuration("template.import.duration", time.Since(start), map[string]string{
			"operation": "markdown_import",
		})
		m.metrics.IncrementCounter("template.import.requests", map[string]string{
			"operation": "markdown_import",
		})
	}()

	resp := m.checker.ImportMarkdown(req)

	m.metrics.SetGauge("template.import.placeholders", float64(len(resp.Placeholders)), map[string]string{
		"operation": "markdown_import",
	})

	return resp
}
