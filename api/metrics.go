package api

import (
	"sort"
	"sync"
	"time"
)

// RouteMetrics aggregates the requests served by one route template
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsSummary is a point in time copy of everything collected
type MetricsSummary struct {
	Since         time.Time      `json:"since"`
	TotalRequests int64          `json:"totalRequests"`
	TotalErrors   int64          `json:"totalErrors"`
	Routes        []RouteMetrics `json:"routes"`
}

// MetricsCollector keeps per-route request counts and timings in memory
type MetricsCollector struct {
	mu     sync.Mutex
	since  time.Time
	routes map[string]*RouteMetrics
	total  int64
	errors int64
}

// NewMetricsCollector creates an empty collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{since: time.Now(), routes: map[string]*RouteMetrics{}}
}

// Record adds one served request. Statuses of 500 and above count as errors.
func (m *MetricsCollector) Record(method, path string, status int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := method + " " + path
	rm, ok := m.routes[key]
	if !ok {
		rm = &RouteMetrics{Method: method, Path: path, MinTime: d}
		m.routes[key] = rm
	}
	rm.Count++
	rm.TotalTime += d
	rm.AvgTime = rm.TotalTime / time.Duration(rm.Count)
	if d < rm.MinTime {
		rm.MinTime = d
	}
	if d > rm.MaxTime {
		rm.MaxTime = d
	}
	rm.LastRequest = time.Now()

	m.total++
	if status >= 500 {
		rm.ErrorCount++
		m.errors++
	}
}

// Summary returns the collected metrics, busiest routes first
func (m *MetricsCollector) Summary() MetricsSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make([]RouteMetrics, 0, len(m.routes))
	for _, rm := range m.routes {
		routes = append(routes, *rm)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Count != routes[j].Count {
			return routes[i].Count > routes[j].Count
		}
		return routes[i].Method+routes[i].Path < routes[j].Method+routes[j].Path
	})
	return MetricsSummary{Since: m.since, TotalRequests: m.total, TotalErrors: m.errors, Routes: routes}
}

// Reset clears everything collected so far
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since = time.Now()
	m.routes = map[string]*RouteMetrics{}
	m.total = 0
	m.errors = 0
}
