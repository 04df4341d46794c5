package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{
			name:   "default config",
			config: nil,
		},
		{
			name: "custom json config",
			config: &Config{
				Level:  "debug",
				Format: "json",
			},
		},
		{
			name: "console config",
			config: &Config{
				Level:  "info",
				Format: "console",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			assert.NotNil(t, logger)
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(&Config{
		Level:  "info",
		Format: "json",
		Output: buf,
	})

	logger.Info("query executed")

	var entry map[string]any
	err := json.Unmarshal(buf.Bytes(), &entry)
	require.NoError(t, err)
	assert.Equal(t, "query executed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(&Config{
		Level:  "warn",
		Format: "json",
		Output: buf,
	})

	logger.Debug("suppressed")
	logger.Info("suppressed")
	assert.Zero(t, buf.Len())

	logger.Warn("visible")
	assert.NotZero(t, buf.Len())
}

func TestLogger_WithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(&Config{
		Level:  "info",
		Format: "json",
		Output: buf,
	}).With().Str("driver", "pgsql").Int("port", 5432).Logger()

	logger.Info("connected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pgsql", entry["driver"])
	assert.Equal(t, float64(5432), entry["port"])
}

func TestLogger_ErrorWith(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(&Config{
		Level:  "info",
		Format: "json",
		Output: buf,
	})

	logger.ErrorWith("query failed", errors.New("syntax error"), map[string]any{
		"query": "SELECT * FROM nope",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "query failed", entry["message"])
	assert.Equal(t, "syntax error", entry["error"])
	assert.Equal(t, "SELECT * FROM nope", entry["query"])
}

func TestNop(t *testing.T) {
	logger := Nop()
	// Must not panic or write anywhere.
	logger.Info("dropped")
	logger.ErrorWith("dropped", errors.New("x"), nil)
}
