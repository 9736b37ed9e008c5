package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/survival/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: format}, "simulate")
		require.NoError(t, err, format)
		assert.True(t, logger.Core().Enabled(-1), "debug must be enabled for %s", format)
	}
}

func TestNewLogger_Invalid(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"}, "simulate")
	assert.ErrorContains(t, err, "trace")
	_, err = NewLogger(config.LoggingConfig{Level: "info", Format: "xml"}, "simulate")
	assert.ErrorContains(t, err, "xml")
}

func TestNewLogger_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "survey.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "json", File: path}, "survey")
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry), "exactly one json line is written")
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "survey", entry["binary"])
}
