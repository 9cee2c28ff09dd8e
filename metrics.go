package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pipelineRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zonepipe_runs_total",
		Help: "Total number of display pipeline runs",
	})
	pipelineDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zonepipe_run_duration_ms",
		Help:    "Full pipeline run duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	stageDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zonepipe_stage_duration_ms",
		Help:    "Per-stage duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	}, []string{"stage"})
	stagePolygonsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonepipe_stage_polygons_dropped_total",
		Help: "Polygons removed per stage (clipped away, merged, deduplicated)",
	}, []string{"stage"})
	lookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zonepipe_lookups_total",
		Help: "Zone lookups by result confidence, plus unknown-area misses",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(pipelineRunsTotal)
	prometheus.MustRegister(pipelineDurationMs)
	prometheus.MustRegister(stageDurationMs)
	prometheus.MustRegister(stagePolygonsDropped)
	prometheus.MustRegister(lookupsTotal)
}

func metricsHandler() http.Handler { return promhttp.Handler() }

// metricsObserver feeds stage diagnostics into prometheus. The geometric
// core stays side-effect free; this observer is supplied by the server.
type metricsObserver struct{}

func (metricsObserver) StageComplete(stage string, in, out int, elapsed time.Duration) {
	stageDurationMs.WithLabelValues(stage).Observe(float64(elapsed.Microseconds()) / 1000.0)
	if dropped := in - out; dropped > 0 {
		stagePolygonsDropped.WithLabelValues(stage).Add(float64(dropped))
	}
}

// recordLookup counts a lookup outcome
func recordLookup(result LookupResult) {
	outcome := "unknown"
	if result.Known() {
		outcome = result.Confidence.String()
	}
	lookupsTotal.WithLabelValues(outcome).Inc()
}
