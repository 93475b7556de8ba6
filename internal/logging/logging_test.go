package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestNewWritesComponentField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Component: "api", Level: "info", Output: &buf})

	logger.Info().Str("order_id", "o1").Msg("order.transition")
	logger.Debug().Msg("suppressed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "api", entry["component"])
	assert.Equal(t, "o1", entry["order_id"])
	assert.Equal(t, "order.transition", entry["message"])
}
