// Package metrics exposes Prometheus counters for map sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SelectionsTotal counts applied selections by source (click, query) and granularity.
	SelectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "districtmap_selections_total",
		Help: "Applied area selections",
	}, []string{"source", "granularity"})

	// QueryMissesTotal counts queries whose code matched no shape.
	QueryMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "districtmap_query_misses_total",
		Help: "Navigation queries that matched no shape",
	}, []string{"type"})

	// CompareTogglesTotal counts compare mode transitions by direction.
	CompareTogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "districtmap_compare_toggles_total",
		Help: "Compare mode transitions",
	}, []string{"state"})

	// ZoomChangesTotal counts zoom level changes.
	ZoomChangesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "districtmap_zoom_changes_total",
		Help: "Viewport zoom level changes",
	})

	// SessionsActive is the number of open map sessions.
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "districtmap_sessions_active",
		Help: "Open map sessions",
	})

	// EngineFailuresTotal counts sessions whose map engine failed to load.
	EngineFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "districtmap_engine_failures_total",
		Help: "Map engine load failures",
	})
)

// Registry holds every collector in this package.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		SelectionsTotal,
		QueryMissesTotal,
		CompareTogglesTotal,
		ZoomChangesTotal,
		SessionsActive,
		EngineFailuresTotal,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
