package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DebugLevel"))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("TraceLevel"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "production", "info")

	log.Debug().Msg("hidden")
	log.Info().Str("product_id", "42").Msg("product created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "product created", line["message"])
	assert.Equal(t, "42", line["product_id"])
	assert.Equal(t, "production", line["environment"])
	assert.Contains(t, line, "caller")
}
