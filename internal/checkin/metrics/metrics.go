package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the check-in workflow.
type Metrics struct {
	Transitions           *prometheus.CounterVec
	PresenceResults       *prometheus.CounterVec
	SocialResults         *prometheus.CounterVec
	Settlements           *prometheus.CounterVec
	SettlementPublishFail prometheus.Counter
	Conflicts             *prometheus.CounterVec
	CollaboratorDuration  *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_checkin_transitions_total",
			Help: "Check-in state transitions by target state",
		}, []string{"to"}),

		PresenceResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_checkin_presence_results_total",
			Help: "Presence verification results",
		}, []string{"result"}), // result: "verified", "rejected", "error"

		SocialResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_checkin_social_results_total",
			Help: "Social proof verification results",
		}, []string{"result"}),

		Settlements: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_checkin_settlements_authorized_total",
			Help: "Settlement authorizations by mode",
		}, []string{"mode"}),

		SettlementPublishFail: f.NewCounter(prometheus.CounterOpts{
			Name: "nilgate_checkin_settlement_publish_failures_total",
			Help: "Settlement events that could not be published",
		}),

		Conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_checkin_conflicts_total",
			Help: "Rejected concurrent or stale session writes",
		}, []string{"operation"}),

		CollaboratorDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nilgate_checkin_collaborator_duration_seconds",
			Help:    "Latency of presence and social proof calls",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"collaborator"}),
	}
}

func (m *Metrics) IncrementTransition(to string) {
	if m != nil {
		m.Transitions.WithLabelValues(to).Inc()
	}
}

func (m *Metrics) IncrementPresenceResult(result string) {
	if m != nil {
		m.PresenceResults.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementSocialResult(result string) {
	if m != nil {
		m.SocialResults.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementSettlement(mode string) {
	if m != nil {
		m.Settlements.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.SettlementPublishFail.Inc()
	}
}

func (m *Metrics) IncrementConflict(operation string) {
	if m != nil {
		m.Conflicts.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) ObserveCollaborator(collaborator string, start time.Time) {
	if m != nil {
		m.CollaboratorDuration.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
	}
}
