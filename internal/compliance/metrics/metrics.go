package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for compliance evaluations.
type Metrics struct {
	Verdicts   *prometheus.CounterVec
	Violations *prometheus.CounterVec
}

// New registers compliance metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_compliance_verdicts_total",
			Help: "Compliance verdicts by jurisdiction, tier and outcome",
		}, []string{"jurisdiction", "tier", "allowed"}),

		Violations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_compliance_violations_total",
			Help: "Individual rule violations by code",
		}, []string{"code"}),
	}
}

func (m *Metrics) IncrementVerdict(jurisdiction, tier string, allowed bool) {
	if m != nil {
		m.Verdicts.WithLabelValues(jurisdiction, tier, strconv.FormatBool(allowed)).Inc()
	}
}

func (m *Metrics) IncrementViolation(code string) {
	if m != nil {
		m.Violations.WithLabelValues(code).Inc()
	}
}
