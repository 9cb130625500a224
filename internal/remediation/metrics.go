package remediation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts policy verdicts.
type Metrics struct {
	decisions *prometheus.CounterVec
}

// NewMetrics registers the remediation collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pathwise_remediation_decisions_total",
			Help: "Module attempt verdicts",
		}, []string{"verdict"}),
	}
}

func (m *Metrics) decided(v Verdict) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(string(v)).Inc()
}
