package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_InvalidInterval(t *testing.T) {
	_, err := New(0, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestMonitor_Run(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m, err := New(20*time.Millisecond, zap.New(core).Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	m.Run(ctx)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("resource").Len() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	m.Wait()

	entry := logs.FilterMessage("resource").All()[0]
	fields := entry.ContextMap()
	for _, key := range []string{"cpu", "rss", "heap_alloc", "goroutines", "gc"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
}

func TestMonitor_StopsOnCancel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m, err := New(time.Hour, zap.New(core).Sugar())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	m.Run(ctx)
	cancel()
	m.Wait()

	assert.Equal(t, 1, logs.FilterMessage("resource").Len())
}
