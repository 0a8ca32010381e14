// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/unitbrowser/internal/config"
)

func newBuffer(t *testing.T) (*bytes.Buffer, zapcore.WriteSyncer) {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	var buf bytes.Buffer
	return &buf, zapcore.AddSync(&buf)
}

func TestInitialize(t *testing.T) {
	t.Run("console logger with colors", func(t *testing.T) {
		buf, ws := newBuffer(t)

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors:      config.ColorConfig{Info: "green"},
		}, ws)
		GetLogger().Named("style").Info("This is a test message.")

		output := buf.String()
		assert.Contains(t, output, colorGreen+"INFO"+colorReset)
		assert.Contains(t, output, "TestService.style.")
		assert.Contains(t, output, "This is a test message.")
	})

	t.Run("uncolored levels without a color name", func(t *testing.T) {
		buf, ws := newBuffer(t)

		Initialize(config.LoggerConfig{Level: "info", Format: "console"}, ws)
		GetLogger().Warn("plain")

		assert.Contains(t, buf.String(), "WARN")
		assert.NotContains(t, buf.String(), colorReset)
	})

	t.Run("json logger", func(t *testing.T) {
		buf, ws := newBuffer(t)

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}, ws)
		GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))

		var logEntry map[string]interface{}
		require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &logEntry), "Log output should be valid JSON")
		assert.Equal(t, "WARN", logEntry["level"])
		assert.Equal(t, "JSONTest", logEntry["logger"])
		assert.Equal(t, "This is a JSON message.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("level filtering and bad levels", func(t *testing.T) {
		buf, ws := newBuffer(t)

		Initialize(config.LoggerConfig{Level: "shouting", Format: "json"}, ws)
		GetLogger().Debug("hidden")
		GetLogger().Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("writes to a log file if configured", func(t *testing.T) {
		_, ws := newBuffer(t)
		path := filepath.Join(t.TempDir(), "unitbrowser.log")

		Initialize(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, ws)
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"This should go to the file."`, "file records are JSON")
	})

	t.Run("only initializes once", func(t *testing.T) {
		buf, ws := newBuffer(t)

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"}, ws)
		logger1 := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "Second"}, ws)
		logger2 := GetLogger()

		assert.Same(t, logger1, logger2)
		logger2.Info("test")
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("fallback before initialization", func(t *testing.T) {
		ResetForTest()
		require.NotNil(t, GetLogger())
	})

	t.Run("global logger after initialization", func(t *testing.T) {
		_, ws := newBuffer(t)
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "GlobalTest"}, ws)
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}

func TestNewLogger_IsIndependentOfGlobals(t *testing.T) {
	ResetForTest()
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "local"}, zapcore.AddSync(&buf))
	logger.Info("local message")

	assert.Contains(t, buf.String(), "local message")
	assert.Nil(t, globalLogger.Load())
}
