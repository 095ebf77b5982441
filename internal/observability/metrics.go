package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// CoverageCollector bundles Prometheus metrics for the simulation engine and
// the HTTP surface.
type CoverageCollector struct {
	gatherer prometheus.Gatherer

	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	GridPoints  prometheus.Gauge
	TierPercent *prometheus.GaugeVec

	HTTPRequests *prometheus.CounterVec
}

// NewCoverageCollector registers engine metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCoverageCollector(reg prometheus.Registerer) (*CoverageCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_runs_total",
		Help: "Total number of simulation runs, labeled by outcome.",
	}, []string{"outcome"})
	runs, err := registerCounterVec(reg, runs, "coverage_runs_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coverage_run_duration_seconds",
		Help:    "Simulation run duration in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60, 300},
	}), "coverage_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	points, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coverage_grid_points",
		Help: "Grid point count of the most recent completed run.",
	}), "coverage_grid_points")
	if err != nil {
		return nil, err
	}

	tiers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "coverage_tier_percent",
		Help: "Per-tier coverage percentage of the most recent completed run.",
	}, []string{"tier"})
	tiers, err = registerGaugeVec(reg, tiers, "coverage_tier_percent")
	if err != nil {
		return nil, err
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, path, and status code.",
	}, []string{"method", "path", "code"})
	requests, err = registerCounterVec(reg, requests, "coverage_http_requests_total")
	if err != nil {
		return nil, err
	}

	return &CoverageCollector{
		gatherer:     gatherer,
		RunsTotal:    runs,
		RunDuration:  duration,
		GridPoints:   points,
		TierPercent:  tiers,
		HTTPRequests: requests,
	}, nil
}

// RecordRun satisfies core.RunMetricsRecorder so the simulation engine can
// drive metrics directly from its run outcomes.
func (c *CoverageCollector) RecordRun(outcome string, duration time.Duration, points int, tiers []model.TierShare) {
	if c == nil {
		return
	}
	if c.RunsTotal != nil {
		c.RunsTotal.WithLabelValues(outcome).Inc()
	}
	if c.RunDuration != nil {
		c.RunDuration.Observe(duration.Seconds())
	}
	if outcome != "ok" {
		return
	}
	if c.GridPoints != nil {
		c.GridPoints.Set(float64(points))
	}
	if c.TierPercent != nil {
		for _, t := range tiers {
			c.TierPercent.WithLabelValues(t.Tier).Set(t.Percent)
		}
	}
}

// ObserveHTTPRequest records one handled HTTP request.
func (c *CoverageCollector) ObserveHTTPRequest(method, path string, code int) {
	if c == nil || c.HTTPRequests == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, path, fmt.Sprintf("%d", code)).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *CoverageCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
