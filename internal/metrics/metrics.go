package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Rejection reasons
const (
	ReasonTooSoon = "too_soon"
)

// Metrics exposes Prometheus collectors that report reminder activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	created      prometheus.Counter
	rejected     *prometheus.CounterVec
	fired        prometheus.Counter
	sendFailures prometheus.Counter
	expired      prometheus.Counter
	pending      prometheus.Gauge
}

// New constructs a Metrics instance registered with reg. Passing a fresh
// registry keeps tests independent of the global one.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "remindbot",
			Name:      "reminders_created_total",
			Help:      "Reminders accepted and scheduled.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "remindbot",
			Name:      "reminders_rejected_total",
			Help:      "Reminder requests rejected by the engine.",
		}, []string{"reason"}),
		fired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "remindbot",
			Name:      "reminders_fired_total",
			Help:      "Reminders whose fire time was reached while running.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "remindbot",
			Name:      "reminder_send_failures_total",
			Help:      "Fired reminders whose notification could not be delivered.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "remindbot",
			Name:      "reminders_expired_total",
			Help:      "Stored reminders dropped at startup because their fire time had passed.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "remindbot",
			Name:      "reminders_pending",
			Help:      "Reminders currently scheduled in memory.",
		}),
	}

	reg.MustRegister(m.created, m.rejected, m.fired, m.sendFailures, m.expired, m.pending)
	return m
}

// IncCreated counts an accepted reminder
func (m *Metrics) IncCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

// IncRejected counts a rejected reminder request
func (m *Metrics) IncRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// IncFired counts a fired reminder
func (m *Metrics) IncFired() {
	if m == nil {
		return
	}
	m.fired.Inc()
}

// IncSendFailure counts a failed delivery
func (m *Metrics) IncSendFailure() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}

// AddExpired counts reminders dropped during reconciliation
func (m *Metrics) AddExpired(n int) {
	if m == nil {
		return
	}
	m.expired.Add(float64(n))
}

// SetPending records the number of live scheduled reminders
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
