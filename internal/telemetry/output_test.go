package telemetry_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/survival/internal/telemetry"
)

func TestNewOutput_EmptyDirDisables(t *testing.T) {
	o, err := telemetry.NewOutput("")
	require.NoError(t, err)
	assert.Nil(t, o)
	assert.NoError(t, o.WriteHits(telemetry.HitRecord{}))
	assert.NoError(t, o.WriteDigestion(telemetry.DigestionRecord{}))
	assert.NoError(t, o.Close())
	assert.Empty(t, o.Dir())
}

func TestOutput_HeaderWrittenOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	o, err := telemetry.NewOutput(dir)
	require.NoError(t, err)

	require.NoError(t, o.WriteHits(telemetry.HitRecord{Turn: 1, Character: "a", DamageType: "bash", Incoming: 40, Remaining: 12.5}))
	require.NoError(t, o.WriteHits(telemetry.HitRecord{Turn: 2, Character: "a", DamageType: "cut", Negated: true}))
	require.NoError(t, o.WriteHits())
	require.NoError(t, o.Close())

	data, err := os.ReadFile(filepath.Join(dir, telemetry.HitsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "turn,character,body_part,damage_type"))

	f, err := os.Open(filepath.Join(dir, telemetry.HitsFile))
	require.NoError(t, err)
	defer f.Close()
	got, err := telemetry.ReadHits(f)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 12.5, got[0].Remaining)
	assert.True(t, got[1].Negated)
}

func TestOutput_SeparateFiles(t *testing.T) {
	dir := t.TempDir()
	o, err := telemetry.NewOutput(dir)
	require.NoError(t, err)
	require.NoError(t, o.WriteDigestion(telemetry.DigestionRecord{Turn: 1800, KCal: 83}))
	require.NoError(t, o.WriteSurvey(telemetry.SurveyRecord{Item: "vest", Samples: 10, Mean: 1.5}))
	require.NoError(t, o.Close())

	dig, err := os.ReadFile(filepath.Join(dir, telemetry.DigestionFile))
	require.NoError(t, err)
	assert.Contains(t, string(dig), "1800")
	survey, err := os.ReadFile(filepath.Join(dir, telemetry.SurveyFile))
	require.NoError(t, err)
	assert.Contains(t, string(survey), "vest")
	hits, err := os.ReadFile(filepath.Join(dir, telemetry.HitsFile))
	require.NoError(t, err)
	assert.Empty(t, hits)
}
