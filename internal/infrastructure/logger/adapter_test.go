package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAdapter_KeyValuePairs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.Info("extraction completed", "request_id", "r1", "status", 200)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "extraction completed", entry.Message)
	assert.Equal(t, "r1", entry.ContextMap()["request_id"])
	assert.EqualValues(t, 200, entry.ContextMap()["status"])
}

func TestLoggerAdapter_WithFieldsIsolatesParent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	parent := NewFromZap(zap.New(core))

	child := parent.WithField("tool", "extract_web_data_with_rest_api")
	child.Warn("slow call")
	parent.Warn("plain")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "extract_web_data_with_rest_api", logs.All()[0].ContextMap()["tool"])
	_, ok := logs.All()[1].ContextMap()["tool"]
	assert.False(t, ok)

	multi := parent.WithFields(map[string]any{"a": 1, "b": "two"})
	multi.Error("boom")
	ctx := logs.All()[2].ContextMap()
	assert.EqualValues(t, 1, ctx["a"])
	assert.Equal(t, "two", ctx["b"])
}

func TestNewLoggerAdapter_WritesToDir(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLoggerAdapter(Config{Level: "debug", Dir: dir, RunName: "job scraper!"})
	require.NoError(t, err)

	log.Debug("hello")
	require.NoError(t, log.Close())
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "job_scraper", sanitize("job scraper!"))
	assert.Equal(t, "run", sanitize("!!!"))
	assert.Len(t, sanitize(string(make([]byte, 100))), 3)
}
