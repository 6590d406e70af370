// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_KeepsRecordsAtLevel(t *testing.T) {
	c := NewCollector(slog.LevelWarn, nil)
	logger := slog.New(c).With("room", "lobby")

	logger.Info("loaded")
	logger.Warn("skipping unknown asset", "asset", "shirt")
	logger.Error("broken")

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "skipping unknown asset", entries[0].Message)
	assert.Equal(t, map[string]string{"room": "lobby", "asset": "shirt"}, entries[0].Attrs)
	assert.Equal(t, slog.LevelError, entries[1].Level)
}

func TestCollector_Forwards(t *testing.T) {
	var buf bytes.Buffer
	c := NewCollector(slog.LevelWarn, slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger := slog.New(c)

	logger.Debug("detail")
	logger.Warn("problem")

	assert.Contains(t, buf.String(), "detail")
	assert.Contains(t, buf.String(), "problem")
	assert.Len(t, c.Entries(), 1)
}

func TestCollector_DerivedLoggersShareEntries(t *testing.T) {
	c := NewCollector(slog.LevelWarn, nil)
	slog.New(c).WithGroup("load").With("character", "alice").Warn("dropping invalid item")

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Attrs["character"])
}
