// Package metrics holds the Prometheus collectors for constituency resolution.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "constituency"

var (
	// Resolutions counts automatic pipeline runs by outcome
	// (auto_assigned, pending_manual, skipped, unchanged, failed).
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Automatic constituency resolutions by outcome.",
	}, []string{"outcome"})

	// Lookups counts representative lookups by table (mla, mp) and result
	// (found, not_found, error).
	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "representative_lookups_total",
		Help:      "Representative reference lookups by table and result.",
	}, []string{"table", "result"})

	Overrides = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "overrides_total",
		Help:      "Administrator constituency overrides applied.",
	})

	ReprocessRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reprocess_runs_total",
		Help:      "Batch reprocess runs by result.",
	}, []string{"result"})

	BoundaryFeatures = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "boundary_features",
		Help:      "Boundary features loaded per collection.",
	}, []string{"collection"})
)

// Handler serves the default registry for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
