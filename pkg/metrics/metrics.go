// Package metrics exposes an optional Prometheus scrape endpoint for
// long CI runs, wired in only when --metrics-addr is set.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dispatched/running/passed/failed/skipped gauges and
// counters scraped at --metrics-addr.
type Metrics struct {
	Dispatched prometheus.Counter
	Running    prometheus.Gauge
	Passed     prometheus.Counter
	Failed     prometheus.Counter
	Skipped    prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry, so a run never
// collides with metrics registered elsewhere in the process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runtest_combinations_dispatched_total",
			Help: "Combinations submitted to the worker pool.",
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runtest_combinations_running",
			Help: "Combinations currently executing.",
		}),
		Passed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runtest_combinations_passed_total",
			Help: "Combinations that exited zero.",
		}),
		Failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runtest_combinations_failed_total",
			Help: "Combinations that failed or timed out.",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runtest_combinations_skipped_total",
			Help: "Combinations the skip oracle disabled.",
		}),
		registry: reg,
	}
	reg.MustRegister(m.Dispatched, m.Running, m.Passed, m.Failed, m.Skipped)
	return m
}

// Handler returns the /metrics scrape handler bound to this Metrics
// instance's private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts the metrics HTTP endpoint and blocks until ctx is
// cancelled or the listener fails.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
