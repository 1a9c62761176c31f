package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSignalMetricsRecorders(t *testing.T) {
	m := NewSignalMetrics(prometheus.NewRegistry())

	m.RecordGateDecision("LONG", true)
	m.RecordGateDecision("SHORT", false)
	m.RecordGateDecision("SHORT", false)
	m.RecordEligibilitySkip("MaxOperationsReached")
	m.RecordSweep("cleanup", "signals", 3)
	m.RecordSweep("cleanup", "signals", 0)
	m.RecordSentiment(42, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisionsTotal.WithLabelValues("LONG", "allowed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GateDecisionsTotal.WithLabelValues("SHORT", "blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EligibilitySkipsTotal.WithLabelValues("MaxOperationsReached")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SweepDeletedTotal.WithLabelValues("cleanup", "signals")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.SentimentValue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SentimentFallbacks))
}
