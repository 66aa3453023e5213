package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncCreated()
	m.IncCreated()
	m.IncRejected(ReasonTooSoon)
	m.IncFired()
	m.IncSendFailure()
	m.AddExpired(3)
	m.SetPending(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.created))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues(ReasonTooSoon)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fired))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sendFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.expired))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.pending))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncCreated()
		m.IncRejected(ReasonTooSoon)
		m.IncFired()
		m.IncSendFailure()
		m.AddExpired(1)
		m.SetPending(1)
	})
}
