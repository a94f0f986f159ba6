package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	log.Info().Str("component", "test").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "json")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewAutoFormatOnBufferIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "bogus", "auto")

	log.Info().Msg("fallback level")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNewPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "pretty")

	log.Info().Msg("human")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	assert.Contains(t, buf.String(), "human")
}
