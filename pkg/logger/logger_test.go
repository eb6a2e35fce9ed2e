package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestErrorCarriesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "quote", Level: ParseLevel("debug"), Output: buf, Format: FormatJSON})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithSupplierID(ctx, "sup-1")
	ctx = log.WithCartID(ctx, "cart-9")
	log.Error(ctx, "quote failed", errors.New("boom"))

	entry := lastEntry(t, buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "sup-1", entry["supplier_id"])
	assert.Equal(t, "cart-9", entry["cart_id"])
	assert.Equal(t, "quote", entry["service"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "stack")
}

func TestRequestIDSurvivesLaterFields(t *testing.T) {
	log := New(Options{ServiceName: "api", Output: &bytes.Buffer{}, Format: FormatJSON})

	assert.Empty(t, RequestID(context.Background()))

	ctx := log.WithRequestID(context.Background(), "req-1")
	ctx = log.WithFields(ctx, map[string]any{"b": 2, "a": 1})
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{ServiceName: "api", Output: buf, WarnStack: true, Format: FormatJSON}).Warn(context.Background(), "slow")
	assert.Contains(t, lastEntry(t, buf), "stack")

	buf.Reset()
	New(Options{ServiceName: "api", Output: buf, Format: FormatJSON}).Warn(context.Background(), "slow")
	assert.NotContains(t, lastEntry(t, buf), "stack")
}

func TestLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: zerolog.InfoLevel, Output: buf, Format: FormatJSON})
	log.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
}

func TestNilLoggerIsSilent(t *testing.T) {
	var log *Logger
	ctx := log.WithField(context.Background(), "k", "v")
	require.NotNil(t, ctx)
	assert.NotPanics(t, func() {
		log.Info(ctx, "ignored")
		log.Error(ctx, "ignored", errors.New("x"))
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
}
