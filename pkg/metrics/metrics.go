package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lingstreamx"

// Connect results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the session collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Connects         *prometheus.CounterVec
	Disconnects      *prometheus.CounterVec
	SignalingRetries prometheus.Counter
	SDPRewrites      prometheus.Counter
	ActiveSessions   *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connects_total",
			Help:      "Session connect attempts by role and result.",
		}, []string{"role", "result"}),
		Disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Disconnects that released at least one resource.",
		}, []string{"role"}),
		SignalingRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signaling_retries_total",
			Help:      "Repeater retry responses received by subscribers.",
		}),
		SDPRewrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sdp_rewrites_total",
			Help:      "Local offers rewritten before publishing.",
		}),
		ActiveSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently connected.",
		}, []string{"role"}),
	}
	if reg != nil {
		reg.MustRegister(m.Connects, m.Disconnects, m.SignalingRetries, m.SDPRewrites, m.ActiveSessions)
	}
	return m
}

func (m *Metrics) ConnectDone(role string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.Connects.WithLabelValues(role, result).Inc()
	if err == nil {
		m.ActiveSessions.WithLabelValues(role).Inc()
	}
}

// Disconnected records a release; wasConnected drops the active gauge.
func (m *Metrics) Disconnected(role string, wasConnected bool) {
	if m == nil {
		return
	}
	m.Disconnects.WithLabelValues(role).Inc()
	if wasConnected {
		m.ActiveSessions.WithLabelValues(role).Dec()
	}
}

func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.SignalingRetries.Inc()
}

func (m *Metrics) Rewrite() {
	if m == nil {
		return
	}
	m.SDPRewrites.Inc()
}
