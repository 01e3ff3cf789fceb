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
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		" warn ":   zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"off":      zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"nonsense": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSONForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Writer: &buf, Fields: map[string]string{"svc": "mind-note"}})
	log.Debug().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "v", line["k"])
	assert.Equal(t, "mind-note", line["svc"])
	assert.Equal(t, "debug", line["level"])
}

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Format: "console", Writer: &buf})
	log.Info().Msg("hello console")
	assert.Contains(t, buf.String(), "hello console")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "json", Writer: &buf})
	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())
	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat(""))
	assert.True(t, ValidFormat("JSON"))
	assert.True(t, ValidFormat("console"))
	assert.False(t, ValidFormat("xml"))
}

func TestNamedAddsComponent(t *testing.T) {
	Init(Options{Level: "info", Format: "json", Writer: &bytes.Buffer{}})
	var buf bytes.Buffer
	log := Named("refine").Output(&buf)
	log.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"refine"`)
}
