package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.ObserveSignIn("success", 20*time.Millisecond)
	metrics.ObserveSignIn("success", 30*time.Millisecond)
	metrics.ObserveSignIn("customer_not_found", time.Millisecond)
	metrics.ObserveProvision("created")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.signInRequests.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.signInRequests.WithLabelValues("customer_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.provisionEvents.WithLabelValues("created")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.ObserveSignIn("success", time.Second)
		metrics.ObserveProvision("created")
	})
}
