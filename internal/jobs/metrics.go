// Package jobmetrics instruments the background worker.
package jobmetrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeRetry   = "retry"
	outcomeDropped = "dropped"
)

// Metrics holds the worker collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	backendUp prometheus.Gauge
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors on reg, or once on the process-wide
// default registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg != nil {
		return register(reg)
	}
	defaultOnce.Do(func() {
		defaultMetrics = register(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func register(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_jobs_total",
			Help: "Task executions by type and outcome (success, retry, dropped).",
		}, []string{"task", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_job_duration_seconds",
			Help:    "Task handler duration in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"task"}),
		backendUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portal_backend_up",
			Help: "1 when the last probe reached the clinical backend.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.backendUp)
	return m
}

// Middleware times every task and counts its outcome. Errors wrapping
// asynq.SkipRetry are counted as dropped.
func (m *Metrics) Middleware(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, t)
		m.observe(t.Type(), time.Since(start), err)
		return err
	})
}

func (m *Metrics) observe(task string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(task, outcome(err)).Inc()
	m.duration.WithLabelValues(task).Observe(took.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, asynq.SkipRetry):
		return outcomeDropped
	default:
		return outcomeRetry
	}
}

// SetBackendUp records the result of the last reachability probe.
func (m *Metrics) SetBackendUp(up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.backendUp.Set(v)
}
