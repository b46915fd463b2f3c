package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "attendance"

// Metrics groups the service's collectors. Register attaches them to a registry.
type Metrics struct {
	Ceremonies     *prometheus.CounterVec
	CloneSuspected prometheus.Counter
	Commits        *prometheus.CounterVec
	HTTPRequests   *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Ceremonies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "webauthn",
				Name:      "ceremonies_total",
				Help:      "WebAuthn ceremony steps by step and outcome.",
			},
			[]string{"step", "outcome"},
		),
		CloneSuspected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "webauthn",
				Name:      "clone_suspected_total",
				Help:      "Assertions rejected because the signature counter did not advance.",
			},
		),
		Commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "sessions",
				Name:      "commits_total",
				Help:      "Check-in and check-out commits by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		HTTPRequests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Ceremonies, m.CloneSuspected, m.Commits, m.HTTPRequests} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ceremony(step string, err error) {
	if m == nil {
		return
	}
	m.Ceremonies.WithLabelValues(step, outcome(err)).Inc()
}

func (m *Metrics) commit(kind string, err error) {
	if m == nil {
		return
	}
	m.Commits.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) cloneSuspected() {
	if m == nil {
		return
	}
	m.CloneSuspected.Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsProtocolError(err):
		return "rejected"
	default:
		return "error"
	}
}
