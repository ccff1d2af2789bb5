package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	logger, h := NewTestLogger(nil)

	component := logger.With(slog.String("component", "session_service"))
	component.Info("session dataset replaced", slog.Int("rows", 3))
	logger.WithGroup("req").Warn("slow request", slog.String("path", "/api/session"))
	logger.Error("boom")

	records := h.Records()
	require.Len(t, records, 3)

	r, ok := h.Find("dataset replaced")
	require.True(t, ok)
	assert.Equal(t, "session_service", r.Attrs["component"])
	assert.EqualValues(t, 3, r.Attrs["rows"])

	warn := AssertLogged(t, h, slog.LevelWarn, "slow request")
	assert.Equal(t, "/api/session", warn.Attrs["req.path"])

	assert.Equal(t, 1, h.CountLevel(slog.LevelError))
	_, ok = h.Find("missing")
	assert.False(t, ok)
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "base.csv", BaseCSV)
	assert.FileExists(t, path)
}
