package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestProfiler_ReportsOncePerInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithInterval(time.Second),
		WithLogger(zap.New(core)),
		WithTimeSource(func() time.Time { return now }),
	)

	for range 29 {
		now = now.Add(time.Second / 60)
		_, ok := p.Tick()
		require.False(t, ok)
	}

	now = now.Add(520 * time.Millisecond)
	s, ok := p.Tick()
	require.True(t, ok)
	assert.InDelta(t, 30/(29.0/60+0.52), s.FPS, 1e-6)
	assert.Equal(t, 1, logs.FilterMessage("profiler").Len())

	// window restarts
	now = now.Add(time.Millisecond)
	_, ok = p.Tick()
	assert.False(t, ok)
}
