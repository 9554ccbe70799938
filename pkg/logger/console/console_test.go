package console

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Writer: &buf, NoTimestamp: true})

	l.Debug("hidden")
	l.Info("graph loaded", "name", "demo.json", "nodes", 30)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "graph loaded")
	assert.Contains(t, out, "name=demo.json")
	assert.Contains(t, out, "nodes=30")
}

func TestConsoleLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Writer: &buf, Debug: true, NoTimestamp: true})
	l.Debug("tick", "alpha", 0.5)
	assert.Contains(t, buf.String(), "tick")
}

func TestConsoleLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Writer: &buf, JSON: true, NoTimestamp: true, Prefix: "kgview"})
	l.Warn("upstream failed", "status", 502)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "upstream failed", line["msg"])
	assert.Equal(t, "warn", line["level"])
	assert.EqualValues(t, 502, line["status"])
	assert.Equal(t, "kgview", line["prefix"])
}
