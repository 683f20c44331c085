package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the runtime's prometheus collectors. A nil *Metrics is a
// valid no-op collector.
type Metrics struct {
	registry *prometheus.Registry

	runs               *prometheus.CounterVec
	plansAcquired      *prometheus.CounterVec
	validationWarnings *prometheus.CounterVec
	steps              *prometheus.CounterVec
	failures           *prometheus.CounterVec
	replans            prometheus.Counter
	capabilityDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "autopilot"
	}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of orchestration runs by final status",
			},
			[]string{"status"},
		),
		plansAcquired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_acquired_total",
				Help:      "Plans produced by the planner or replanner",
			},
			[]string{"source", "outcome"},
		),
		validationWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_warnings_total",
				Help:      "Plan validation warnings by kind",
			},
			[]string{"kind"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_executed_total",
				Help:      "Plan steps processed by kind and status",
			},
			[]string{"kind", "status"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "capability_failures_total",
				Help:      "Capability failures by capability and criticality",
			},
			[]string{"capability", "critical"},
		),
		replans: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "replans_total",
				Help:      "Follow-up plans executed after a failed pass",
			},
		),
		capabilityDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "capability_duration_seconds",
				Help:      "Duration of capability invocations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"capability"},
		),
	}

	registry.MustRegister(
		m.runs,
		m.plansAcquired,
		m.validationWarnings,
		m.steps,
		m.failures,
		m.replans,
		m.capabilityDuration,
	)

	return m
}

func (m *Metrics) RecordRun(success bool) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(statusLabel(success)).Inc()
}

func (m *Metrics) RecordPlan(source, outcome string) {
	if m == nil {
		return
	}
	m.plansAcquired.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) RecordValidationWarning(kind string) {
	if m == nil {
		return
	}
	m.validationWarnings.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordStep(kind, status string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) RecordFailure(capability string, critical bool) {
	if m == nil {
		return
	}
	c := "false"
	if critical {
		c = "true"
	}
	m.failures.WithLabelValues(capability, c).Inc()
}

func (m *Metrics) RecordReplan() {
	if m == nil {
		return
	}
	m.replans.Inc()
}

func (m *Metrics) ObserveCapability(capability string, d time.Duration) {
	if m == nil {
		return
	}
	m.capabilityDuration.WithLabelValues(capability).Observe(d.Seconds())
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	if m == nil {
		return errors.New("metrics are disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
