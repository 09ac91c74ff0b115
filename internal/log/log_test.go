package log

import (
	"bytes"
	"context"
	"encoding/json"
	stdlog "log"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.WarnLevel,
		"unknown": zerolog.WarnLevel,
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "input %q", input)
	}
}

func TestNewWritesStructuredJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})
	logger.Info().Str(FieldRoomID, "r1").Msg("tick")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "r1", entry[FieldRoomID])
	assert.Equal(t, "tick", entry["message"])
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Output: &buf})
	ctx := WithLogger(context.Background(), logger)

	l := Ctx(ctx)
	l.Debug().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	assert.Equal(t, L().GetLevel(), Ctx(context.Background()).GetLevel())
}

func TestInitReplacesGlobalAndBridgesStdlib(t *testing.T) {
	t.Cleanup(func() { Init(Config{Level: "warn", Output: os.Stderr}) })

	var first, second bytes.Buffer
	Init(Config{Level: "info", Output: &first})
	Init(Config{Level: "debug", Output: &second})
	assert.Equal(t, zerolog.DebugLevel, L().GetLevel())

	stdlog.Print("from stdlib")
	tagged := Component("qc")
	tagged.Info().Msg("tagged")

	assert.Empty(t, first.String())

	lines := strings.Split(strings.TrimSpace(second.String()), "\n")
	require.Len(t, lines, 2)

	var bridged, component map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &bridged))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &component))
	assert.Equal(t, "from stdlib", bridged["message"])
	assert.Equal(t, "stdlog", bridged[FieldSource])
	assert.Equal(t, "qc", component[FieldComponent])
}
