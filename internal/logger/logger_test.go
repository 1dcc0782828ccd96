package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestWithContext_AddsAttrs(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug", true)
	t.Cleanup(func() { Init("info", false) })

	ctx := ContextWith(context.Background(), "request_id", "r-1")
	ctx = ContextWith(ctx, "delivery_id", "d-1")
	WithContext(ctx).Info("webhook ignored", "reason", "ping")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "webhook ignored", rec["msg"])
	assert.Equal(t, "r-1", rec["request_id"])
	assert.Equal(t, "d-1", rec["delivery_id"])
	assert.Equal(t, "ping", rec["reason"])
}

func TestWithContext_Empty(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", false)
	t.Cleanup(func() { Init("info", false) })

	WithContext(context.Background()).Debug("hidden")
	assert.Empty(t, buf.String())
}
