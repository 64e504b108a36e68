package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	signInRequests  *prometheus.CounterVec
	signInDuration  prometheus.Histogram
	provisionEvents *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		signInRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_requests_total",
			Help: "Sign-in requests by outcome.",
		}, []string{"outcome"}),
		signInDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "signin_duration_seconds",
			Help:    "End-to-end sign-in latency, including backend and identity provider calls.",
			Buckets: prometheus.DefBuckets,
		}),
		provisionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_provision_total",
			Help: "Identity provisioning results by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveSignIn(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.signInRequests.WithLabelValues(outcome).Inc()
	m.signInDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveProvision(outcome string) {
	if m == nil {
		return
	}
	m.provisionEvents.WithLabelValues(outcome).Inc()
}
