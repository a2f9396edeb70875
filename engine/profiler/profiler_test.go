package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTick_LogsOncePerInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewProfiler(zap.New(core))
	p.updateInterval = time.Hour

	assert.False(t, p.Tick())
	assert.False(t, p.Tick())
	assert.Equal(t, 0, logs.Len())

	p.lastTime = time.Now().Add(-2 * time.Hour)
	require.True(t, p.Tick())
	require.Equal(t, 1, logs.Len())

	entry := logs.All()[0]
	assert.Equal(t, "profiler", entry.LoggerName)
	assert.Equal(t, "frame stats", entry.Message)
	assert.Contains(t, entry.ContextMap(), "fps")
	assert.Equal(t, 0, p.frameCount)
}

func TestNewProfiler_NilLogger(t *testing.T) {
	p := NewProfiler(nil)
	p.updateInterval = 0
	assert.True(t, p.Tick())
}
