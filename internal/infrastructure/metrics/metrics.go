package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SignalMetrics holds the collectors of the signal engine.
type SignalMetrics struct {
	// Inbound signals
	SignalsReceivedTotal prometheus.CounterVec
	SignalsOutcomeTotal  prometheus.CounterVec

	// Sentiment gate
	GateDecisionsTotal prometheus.CounterVec
	SentimentValue     prometheus.Gauge
	SentimentFallbacks prometheus.Counter

	// Fan-out
	EligibilitySkipsTotal prometheus.CounterVec
	OperationsOpenedTotal prometheus.CounterVec
	OperationsClosedTotal prometheus.CounterVec
	OperationErrorsTotal  prometheus.CounterVec
	FanOutDuration        prometheus.Histogram
	OperationPnL          prometheus.HistogramVec

	// Commissions
	CommissionsCreatedTotal prometheus.CounterVec
	CommissionsAmountTotal  prometheus.CounterVec
	LinkTransitionsTotal    prometheus.CounterVec

	// Retention
	SweepDeletedTotal prometheus.CounterVec
	SignalsExpired    prometheus.Counter
}

// NewSignalMetrics registers the collectors on reg. A nil reg uses the default registerer.
func NewSignalMetrics(reg prometheus.Registerer) *SignalMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &SignalMetrics{
		SignalsReceivedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signals_received_total",
				Help: "Inbound signals by category and source",
			},
			[]string{"category", "source"},
		),
		SignalsOutcomeTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signals_outcome_total",
				Help: "Signals by final response status",
			},
			[]string{"status"},
		),

		GateDecisionsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_gate_decisions_total",
				Help: "Sentiment gate decisions by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		SentimentValue: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentiment_value",
				Help: "Current market sentiment reading (0-100)",
			},
		),
		SentimentFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sentiment_fallbacks_total",
				Help: "Sentiment refreshes that fell back to the neutral reading",
			},
		),

		EligibilitySkipsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eligibility_skips_total",
				Help: "Users skipped during fan-out by reason code",
			},
			[]string{"reason"},
		),
		OperationsOpenedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operations_opened_total",
				Help: "Operations opened by symbol and side",
			},
			[]string{"symbol", "side"},
		),
		OperationsClosedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operations_closed_total",
				Help: "Operations closed by reason",
			},
			[]string{"reason"},
		),
		OperationErrorsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operation_errors_total",
				Help: "Atomic unit failures by stage",
			},
			[]string{"stage"},
		),
		FanOutDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signal_fanout_duration_seconds",
				Help:    "Time spent fanning a signal out to users",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
		),
		OperationPnL: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "operation_pnl_percentage",
				Help:    "Leveraged return percentage of closed operations",
				Buckets: []float64{-100, -50, -25, -10, -5, 0, 5, 10, 25, 50, 100},
			},
			[]string{"side"},
		),

		CommissionsCreatedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_created_total",
				Help: "Commissions created by affiliate",
			},
			[]string{"affiliate_id"},
		),
		CommissionsAmountTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_amount_total",
				Help: "Commission amount accrued by affiliate",
			},
			[]string{"affiliate_id"},
		),
		LinkTransitionsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "affiliate_link_transitions_total",
				Help: "Affiliate link state transitions",
			},
			[]string{"status"},
		),

		SweepDeletedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retention_deleted_rows_total",
				Help: "Rows deleted by retention sweeps",
			},
			[]string{"sweep", "table"},
		),
		SignalsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "signals_expired_total",
				Help: "Signals marked expired by the expiry sweep",
			},
		),
	}
}

func (m *SignalMetrics) RecordSignalReceived(category, source string) {
	m.SignalsReceivedTotal.WithLabelValues(category, source).Inc()
}

func (m *SignalMetrics) RecordSignalOutcome(status string) {
	m.SignalsOutcomeTotal.WithLabelValues(status).Inc()
}

func (m *SignalMetrics) RecordGateDecision(direction string, allowed bool) {
	outcome := "blocked"
	if allowed {
		outcome = "allowed"
	}
	m.GateDecisionsTotal.WithLabelValues(direction, outcome).Inc()
}

func (m *SignalMetrics) RecordSentiment(value int, fallback bool) {
	m.SentimentValue.Set(float64(value))
	if fallback {
		m.SentimentFallbacks.Inc()
	}
}

func (m *SignalMetrics) RecordEligibilitySkip(reason string) {
	m.EligibilitySkipsTotal.WithLabelValues(reason).Inc()
}

func (m *SignalMetrics) RecordOperationOpened(symbol, side string) {
	m.OperationsOpenedTotal.WithLabelValues(symbol, side).Inc()
}

func (m *SignalMetrics) RecordOperationClosed(reason, side string, pnlPercentage float64) {
	m.OperationsClosedTotal.WithLabelValues(reason).Inc()
	m.OperationPnL.WithLabelValues(side).Observe(pnlPercentage)
}

func (m *SignalMetrics) RecordOperationError(stage string) {
	m.OperationErrorsTotal.WithLabelValues(stage).Inc()
}

func (m *SignalMetrics) RecordFanOutDuration(seconds float64) {
	m.FanOutDuration.Observe(seconds)
}

func (m *SignalMetrics) RecordCommission(affiliateID string, amount float64) {
	m.CommissionsCreatedTotal.WithLabelValues(affiliateID).Inc()
	m.CommissionsAmountTotal.WithLabelValues(affiliateID).Add(amount)
}

func (m *SignalMetrics) RecordLinkTransition(status string) {
	m.LinkTransitionsTotal.WithLabelValues(status).Inc()
}

func (m *SignalMetrics) RecordLinkTransitions(status string, n int64) {
	if n <= 0 {
		return
	}
	m.LinkTransitionsTotal.WithLabelValues(status).Add(float64(n))
}

func (m *SignalMetrics) RecordSweep(sweep, table string, deleted int64) {
	if deleted <= 0 {
		return
	}
	m.SweepDeletedTotal.WithLabelValues(sweep, table).Add(float64(deleted))
}

func (m *SignalMetrics) RecordSignalsExpired(n int64) {
	if n <= 0 {
		return
	}
	m.SignalsExpired.Add(float64(n))
}
