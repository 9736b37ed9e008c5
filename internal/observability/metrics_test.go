package observability_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/survival/internal/game/character"
	"github.com/cory-johannsen/survival/internal/observability"
)

var _ character.Recorder = (*observability.Metrics)(nil)

func TestMetrics_UnitAbsorbed(t *testing.T) {
	m := observability.NewMetrics()
	m.UnitAbsorbed("bash", 40, 15)
	m.UnitAbsorbed("bash", 10, 10)
	m.UnitAbsorbed("cut", 0, 0)

	expected := `
# HELP survival_damage_absorbed_total Damage removed by the absorption pipeline, by damage type.
# TYPE survival_damage_absorbed_total counter
survival_damage_absorbed_total{type="bash"} 25
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "survival_damage_absorbed_total"))
	count, err := testutil.GatherAndCount(m.Registry(), "survival_damage_units_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per damage type")
}

func TestMetrics_ArmorAndDigestion(t *testing.T) {
	m := observability.NewMetrics()
	m.ArmorWorn("damaged")
	m.ArmorWorn("damaged")
	m.ArmorWorn("destroyed")
	m.ArmorDestroyed()
	m.Digested(83, 250)
	m.Digested(0, -1)

	count, err := testutil.GatherAndCount(m.Registry(), "survival_armor_wear_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `survival_armor_wear_total{status="damaged"} 2`)
	assert.Contains(t, body, "survival_armor_destroyed_total 1")
	assert.Contains(t, body, "survival_digested_kcal_total 83")
	assert.Contains(t, body, "survival_digested_water_ml_total 250")
}
