package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// DomainMetrics records listing transitions and ledger operations.
type DomainMetrics struct {
	transitions   *prometheus.CounterVec
	ledgerOps     *prometheus.CounterVec
	ledgerLatency *prometheus.HistogramVec
	notifyFailure *prometheus.CounterVec
}

// NewDomainMetrics registers the domain metrics on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_transitions_total",
		Help: "Listing state machine operations by action and result.",
	}, []string{"action", "result"})
	ledgerOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger and withdrawal operations by name and result.",
	}, []string{"operation", "result"})
	ledgerLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_operation_duration_seconds",
		Help:    "Duration of ledger transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	notifyFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Notification gateway dispatches that failed after commit.",
	}, []string{"event"})
	reg.MustRegister(transitions, ledgerOps, ledgerLatency, notifyFailure)
	return &DomainMetrics{
		transitions:   transitions,
		ledgerOps:     ledgerOps,
		ledgerLatency: ledgerLatency,
		notifyFailure: notifyFailure,
	}
}

// ObserveTransition counts a listing operation outcome.
func (m *DomainMetrics) ObserveTransition(action, result string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(result)).Inc()
}

// ObserveLedger counts a ledger operation outcome and its duration.
func (m *DomainMetrics) ObserveLedger(operation, result string, duration time.Duration) {
	if m == nil || m.ledgerOps == nil {
		return
	}
	op := normalizeLabel(operation)
	m.ledgerOps.WithLabelValues(op, normalizeLabel(result)).Inc()
	m.ledgerLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// IncNotificationFailure counts a failed post-commit dispatch.
func (m *DomainMetrics) IncNotificationFailure(event string) {
	if m == nil || m.notifyFailure == nil {
		return
	}
	m.notifyFailure.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
