package approval

import (
	"strings"

	"go-workforce/internal/request"
	"go-workforce/internal/shared/apperror"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK = "ok"
)

// Metrics counts state machine transitions and bulk items. A nil *Metrics
// records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	bulkItems   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "approval_transitions_total",
			Help: "Approval state machine operations by request kind, action and outcome.",
		}, []string{"kind", "action", "outcome"}),
		bulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "approval_bulk_items_total",
			Help: "Items processed by bulk approve and reject.",
		}, []string{"action", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.transitions, m.bulkItems)
	}
	return m
}

func (m *Metrics) observeTransition(kind, action string, err error) {
	if m == nil {
		return
	}
	label := "unknown"
	if k, ok := request.ParseKind(kind); ok {
		label = string(k)
	}
	m.transitions.WithLabelValues(label, action, outcome(err)).Inc()
}

func (m *Metrics) observeBulkItem(action string, err error) {
	if m == nil {
		return
	}
	m.bulkItems.WithLabelValues(action, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	return strings.ToLower(apperror.CodeOf(err))
}
