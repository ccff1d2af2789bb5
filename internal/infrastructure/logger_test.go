package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
)

func lastLogEntry(t *testing.T, content []byte) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = os.Stat(logFile)
	require.NoError(t, err, "log file should be created")

	logger.Info("dataset loaded", "rows", 3)
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entry := lastLogEntry(t, content)
	assert.Equal(t, "dataset loaded", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLoggerOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)

	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "filter applied")

	entry := lastLogEntry(t, buf.Bytes())
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "filter applied", entry["msg"])
}

func TestTraceHandlerKeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info").With("component", "pipeline").WithGroup("stage")

	ctx := WithTraceID(context.Background(), "trace-456")
	logger.InfoContext(ctx, "clean", "rows", 10)

	entry := lastLogEntry(t, buf.Bytes())
	assert.Equal(t, "pipeline", entry["component"])
	stage, ok := entry["stage"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(10), stage["rows"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level      string
		logsDebug  bool
		logsInfo   bool
		logsWarn   bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)

			logger.Debug("d")
			assert.Equal(t, tt.logsDebug, strings.Contains(buf.String(), `"msg":"d"`))
			logger.Info("i")
			assert.Equal(t, tt.logsInfo, strings.Contains(buf.String(), `"msg":"i"`))
			logger.Warn("w")
			assert.Equal(t, tt.logsWarn, strings.Contains(buf.String(), `"msg":"w"`))
		})
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing trace id is kept")
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestWithComponentAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := WithError(WithComponent(NewLogger(&buf, "info"), "session"), assert.AnError)
	logger.Info("reset")

	entry := lastLogEntry(t, buf.Bytes())
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, assert.AnError.Error(), entry["error"])

	base := NewLogger(&buf, "info")
	assert.Same(t, base, WithError(base, nil))
}
