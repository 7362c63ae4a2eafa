package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLoggerCapturesLevels(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)

	logger.Debug("debug message", "key1", "value1", "number", 42)
	logger.Info("info message", OperationKey, OperationIndividual)
	logger.Warn("warning message", SampleSizeKey, 1)
	logger.Error("error message", fmt.Errorf("boom"), ErrorTypeKey, "ComputationError")

	require.NotEmpty(t, buffer.String())
	assert.True(t, logger.ContainsMessage("debug message"))
	assert.True(t, logger.ContainsMessage("info message"))
	assert.True(t, logger.ContainsMessage("warning message"))
	assert.True(t, logger.ContainsMessage("error message"))

	assert.True(t, logger.ContainsField("key1", "value1"))
	// JSON unmarshaling converts numbers to float64
	assert.True(t, logger.ContainsField("number", 42.0))
	assert.True(t, logger.ContainsField("error", "boom"))
	assert.True(t, logger.ContainsField(ErrorTypeKey, "ComputationError"))
}

func TestTestLoggerLevelFilter(t *testing.T) {
	logger, _ := NewTestLogger(LevelWarn)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("shown warn")

	assert.False(t, logger.ContainsMessage("hidden debug"))
	assert.False(t, logger.ContainsMessage("hidden info"))
	assert.True(t, logger.ContainsMessage("shown warn"))
	assert.False(t, logger.Enabled(context.Background(), LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), LevelError))
}

func TestTestLoggerWith(t *testing.T) {
	base, _ := NewTestLogger(LevelInfo)
	child := base.With(ModelNameKey, "Session", SessionIDKey, "abc")

	child.Info("scoped")
	base.Info("unscoped")

	entries, err := base.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Session", entries[0][ModelNameKey])
	assert.Equal(t, "abc", entries[0][SessionIDKey])
	_, ok := entries[1][ModelNameKey]
	assert.False(t, ok, "parent logger must not inherit child fields")
}

func TestTestLoggerConcurrentWrites(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Info("task done", TaskKey, i)
		}(i)
	}
	wg.Wait()

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 32)
}

func TestZerologLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: "json", Output: &buf})

	logger.Debug("dropped")
	logger.With(ModelNameKey, "Explainer").Info("fitted", FeaturesKey, 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "fitted", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Explainer", entry[ModelNameKey])
	assert.Equal(t, 3.0, entry[FeaturesKey])
}

func TestZerologLoggerErrorStack(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Output: &buf})

	err := errors.WithStack(errors.New("ranking function failed"))
	logger.Error("task failed", err, TaskKey, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry["error"], "ranking function failed")
	assert.Equal(t, 2.0, entry[TaskKey])
	assert.True(t, logger.Enabled(context.Background(), LevelDebug))
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	assert.False(t, GetLogger().Enabled(context.Background(), LevelError))

	tl, _ := NewTestLogger(LevelInfo)
	SetLogger(tl)
	defer SetLogger(nil)

	GetLogger().Info("routed")
	assert.True(t, tl.ContainsMessage("routed"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, "WARN", LevelWarn.String())
}
