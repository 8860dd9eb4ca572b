package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for feature flag refreshes.
type Metrics struct {
	Refreshes *prometheus.CounterVec
	Degraded  prometheus.Gauge
	Enabled   *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nilgate_feature_flag_refreshes_total",
			Help: "Feature flag refreshes by result",
		}, []string{"result"}), // result: "fetched", "fallback", "skipped"

		Degraded: f.NewGauge(prometheus.GaugeOpts{
			Name: "nilgate_feature_flags_degraded",
			Help: "1 while the flag service circuit is open and fallback flags are served",
		}),

		Enabled: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nilgate_feature_flag_enabled",
			Help: "Current effective value of each feature flag",
		}, []string{"flag"}),
	}
}

func (m *Metrics) IncrementRefresh(result string) {
	if m != nil {
		m.Refreshes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m != nil {
		m.Degraded.Set(boolValue(degraded))
	}
}

func (m *Metrics) SetFlags(presence, social, autoSettlement bool) {
	if m != nil {
		m.Enabled.WithLabelValues("enable_geo_checkins").Set(boolValue(presence))
		m.Enabled.WithLabelValues("enable_social_verification").Set(boolValue(social))
		m.Enabled.WithLabelValues("enable_auto_payout").Set(boolValue(autoSettlement))
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
