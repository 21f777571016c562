package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("ERROR"))
	assert.Equal(t, LogLevelInfo, ParseLevel("info"))
	assert.Equal(t, LogLevelInfo, ParseLevel("nonsense"))
}

func TestSlogAdapter_SuccessMapsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	logger.Success("task done", "agent", "coder")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "task done", entry["msg"])
	assert.Equal(t, "success", entry["status"])
	assert.Equal(t, "coder", entry["agent"])
}

func TestNoOpLogger(t *testing.T) {
	var logger Logger = NoOpLogger{}
	assert.NotPanics(t, func() {
		logger.Debug("d")
		logger.Info("i")
		logger.Warn("w")
		logger.Error("e")
		logger.Success("s")
	})
}

func TestPipeLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Level = LogLevelWarn
	cfg.Output = &buf
	cfg.AddSource = false
	logger := NewLogger(cfg)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Success("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("visible")
	assert.NotZero(t, buf.Len())
}

func TestPipeLogger_WithContextAndComponent(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.AddSource = false
	logger := NewLogger(cfg).
		WithComponent("pipeline").
		WithAgent("agent-1").
		WithContext("run", "r42")

	logger.Info("step started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "agent-1", entry["agent_id"])
	assert.Equal(t, "r42", entry["run"])
}

func TestPipeLogger_WithContextDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.AddSource = false
	parent := NewLogger(cfg)
	_ = parent.WithContext("child_only", "yes")

	parent.Info("from parent")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry["child_only"]
	assert.False(t, ok)
}

func TestPipeLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Format = "text"
	cfg.Output = &buf
	cfg.AddSource = false
	logger := NewLogger(cfg)

	logger.Info("hello %s", "world")

	assert.Contains(t, buf.String(), "hello world")
}
