package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			NewWithWriter(Config{Level: tt.level}, &buf)
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	logger.Info().Str("loan_id", "loan-1").Int("weeks", 3).Msg("vdo calculated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "vdo calculated", entry["message"])
	assert.Equal(t, "loan-1", entry["loan_id"])
	assert.Equal(t, float64(3), entry["weeks"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "console"}, &buf)

	logger.Info().Msg("report cached")

	assert.Contains(t, buf.String(), "report cached")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestErrorLevelFiltersInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "error"}, &buf)

	logger.Info().Msg("should not appear")
	assert.Empty(t, buf.String())

	logger.Error().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
}
