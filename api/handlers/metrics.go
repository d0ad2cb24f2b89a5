package handlers

import (
	"net/http"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// Metrics exposes the in-memory request metrics
type Metrics struct {
	Collector *api.MetricsCollector
}

// routeMetricsMillis is RouteMetrics with durations in milliseconds
type routeMetricsMillis struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Count       int64  `json:"count"`
	ErrorCount  int64  `json:"errorCount"`
	AvgTime     int64  `json:"avgTime"`
	MinTime     int64  `json:"minTime"`
	MaxTime     int64  `json:"maxTime"`
	LastRequest string `json:"lastRequest"`
}

// MetricsHandler returns per-route counts and timings. ?reset=true clears them afterwards.
func (m Metrics) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	s := m.Collector.Summary()
	routes := make([]routeMetricsMillis, len(s.Routes))
	for i, rm := range s.Routes {
		routes[i] = routeMetricsMillis{
			Method:      rm.Method,
			Path:        rm.Path,
			Count:       rm.Count,
			ErrorCount:  rm.ErrorCount,
			AvgTime:     rm.AvgTime.Milliseconds(),
			MinTime:     rm.MinTime.Milliseconds(),
			MaxTime:     rm.MaxTime.Milliseconds(),
			LastRequest: rm.LastRequest.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	if r.URL.Query().Get("reset") == "true" {
		m.Collector.Reset()
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: map[string]interface{}{
		"since":         s.Since,
		"totalRequests": s.TotalRequests,
		"totalErrors":   s.TotalErrors,
		"routes":        routes,
	}})
}
