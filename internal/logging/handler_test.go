// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "not JSON: %s", buf.String())
	return entry
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "wardrobe", Version: "1.0.0", Format: "json", Writer: &buf})

	logger.Info("space loaded")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "space loaded", entry["msg"])
	assert.Equal(t, "wardrobe", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "level")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "wardrobe", Format: "text", Writer: &buf})

	logger.Info("space loaded")

	assert.Contains(t, buf.String(), "space loaded")
	assert.Contains(t, buf.String(), "service=wardrobe")
}

func TestSetup_DefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Writer: &buf}).Info("hello")
	decodeLine(t, &buf)
}

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Format: "json", Level: slog.LevelWarn, Writer: &buf})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Equal(t, "kept", decodeLine(t, &buf)["msg"])
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Format: "json", Writer: &buf})

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced message")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestHandler_NoTraceContext(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Format: "json", Writer: &buf}).Info("untraced")

	entry := decodeLine(t, &buf)
	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
}

func TestHandler_WithAttrsKeepsIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "wardrobe", Format: "json", Writer: &buf}).With("space", "lobby")

	logger.Info("joined")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "lobby", entry["space"])
	assert.Equal(t, "wardrobe", entry["service"])
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	logger := SetDefault(Options{Service: "wardrobe", Format: "json"})

	assert.Same(t, logger, slog.Default())
}
