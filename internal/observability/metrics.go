package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts damage absorption and digestion events. It satisfies
// character.Recorder.
//
// Metrics is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	unitsAbsorbed  *prometheus.CounterVec
	damageIncoming *prometheus.CounterVec
	damageAbsorbed *prometheus.CounterVec
	armorWear      *prometheus.CounterVec
	armorDestroyed prometheus.Counter
	kcalDigested   prometheus.Counter
	waterDigested  prometheus.Counter
}

// NewMetrics registers every collector in a fresh registry.
//
// Postcondition: Returns Metrics whose collectors are served by Handler.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		unitsAbsorbed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "survival_damage_units_total",
			Help: "Damage units run through the absorption pipeline, by damage type.",
		}, []string{"type"}),
		damageIncoming: f.NewCounterVec(prometheus.CounterOpts{
			Name: "survival_damage_incoming_total",
			Help: "Damage entering the absorption pipeline, by damage type.",
		}, []string{"type"}),
		damageAbsorbed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "survival_damage_absorbed_total",
			Help: "Damage removed by the absorption pipeline, by damage type.",
		}, []string{"type"}),
		armorWear: f.NewCounterVec(prometheus.CounterOpts{
			Name: "survival_armor_wear_total",
			Help: "Durability checks on worn armor, by resulting status.",
		}, []string{"status"}),
		armorDestroyed: f.NewCounter(prometheus.CounterOpts{
			Name: "survival_armor_destroyed_total",
			Help: "Worn armor pieces destroyed by damage.",
		}),
		kcalDigested: f.NewCounter(prometheus.CounterOpts{
			Name: "survival_digested_kcal_total",
			Help: "Kilocalories absorbed by the body.",
		}),
		waterDigested: f.NewCounter(prometheus.CounterOpts{
			Name: "survival_digested_water_ml_total",
			Help: "Milliliters of water absorbed by the body.",
		}),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// UnitAbsorbed records one damage unit leaving the pipeline.
func (m *Metrics) UnitAbsorbed(damageType string, incoming, remaining float64) {
	m.unitsAbsorbed.WithLabelValues(damageType).Inc()
	if incoming > 0 {
		m.damageIncoming.WithLabelValues(damageType).Add(incoming)
	}
	if absorbed := incoming - remaining; absorbed > 0 {
		m.damageAbsorbed.WithLabelValues(damageType).Add(absorbed)
	}
}

// ArmorWorn records the outcome of a durability check.
func (m *Metrics) ArmorWorn(status string) { m.armorWear.WithLabelValues(status).Inc() }

// ArmorDestroyed records a destroyed armor piece.
func (m *Metrics) ArmorDestroyed() { m.armorDestroyed.Inc() }

// Digested records what the body absorbed in one digestion pass.
func (m *Metrics) Digested(kcal int, waterML int64) {
	if kcal > 0 {
		m.kcalDigested.Add(float64(kcal))
	}
	if waterML > 0 {
		m.waterDigested.Add(float64(waterML))
	}
}
