package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-playground/engine/profiler"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeWindow reports running for a fixed number of polls.
type fakeWindow struct {
	polls int
}

func (w *fakeWindow) SetResizeCallback(func(int, int))                                        {}
func (w *fakeWindow) SetScrollCallback(func(float32))                                         {}
func (w *fakeWindow) SetKeyDownCallback(func(uint32))                                         {}
func (w *fakeWindow) SetKeyUpCallback(func(uint32))                                           {}
func (w *fakeWindow) SetMouseButtonCallback(func(window.MouseButton, bool, float32, float32)) {}
func (w *fakeWindow) SetMouseMoveCallback(func(float32, float32))                             {}
func (w *fakeWindow) SetTitle(string)                                                         {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor                              { return nil }
func (w *fakeWindow) IsRunning() bool                                                         { return w.polls > 0 }
func (w *fakeWindow) Close() error                                                            { return nil }
func (w *fakeWindow) Width() int                                                              { return 640 }
func (w *fakeWindow) Height() int                                                             { return 480 }

func (w *fakeWindow) PollEvents() bool {
	if w.polls == 0 {
		return false
	}
	w.polls--
	return true
}

type fakeClock struct {
	now   time.Time
	step  time.Duration
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func TestEngine_RunsHooksBeforeFrame(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), step: 5 * time.Millisecond}
	e := NewEngine(WithWindow(&fakeWindow{polls: 3}), WithClock(clock.Now, clock.Sleep))

	var order []string
	var times []float64
	e.AddPreFrameHook(func() { order = append(order, "dispatch") })
	e.AddPreFrameHook(func() { order = append(order, "drain") })
	e.SetFrameCallback(func(ms float64) {
		order = append(order, "frame")
		times = append(times, ms)
	})

	require.NoError(t, e.Run())
	assert.Equal(t, []string{
		"dispatch", "drain", "frame",
		"dispatch", "drain", "frame",
		"dispatch", "drain", "frame",
	}, order)
	require.Len(t, times, 3)
	assert.Equal(t, 5.0, times[0])
	assert.Less(t, times[0], times[1])
	assert.Less(t, times[1], times[2])
	assert.Empty(t, clock.slept)
}

func TestEngine_QuitStopsAfterCurrentFrame(t *testing.T) {
	e := NewEngine(WithWindow(&fakeWindow{polls: 100}))
	frames := 0
	e.SetFrameCallback(func(float64) {
		frames++
		if frames == 2 {
			e.Quit()
		}
	})
	require.NoError(t, e.Run())
	assert.Equal(t, 2, frames)
}

func TestEngine_FrameLimitSleeps(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0), step: time.Millisecond}
	e := NewEngine(WithWindow(&fakeWindow{polls: 1}), WithClock(clock.Now, clock.Sleep), WithRenderFrameLimit(100))
	e.SetFrameCallback(func(float64) {})

	require.NoError(t, e.Run())
	require.Len(t, clock.slept, 1)
	assert.Equal(t, 10*time.Millisecond-time.Millisecond, clock.slept[0])
}

func TestEngine_PanicIsReported(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	e := NewEngine(WithWindow(&fakeWindow{polls: 5}), WithLogger(zap.New(core)))
	e.SetFrameCallback(func(float64) { panic("boom") })

	err := e.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, logs.FilterMessage("frame panicked").Len())
}

func TestEngine_RunWithoutWindow(t *testing.T) {
	assert.Error(t, NewEngine().Run())
}

func TestEngine_ProfilerToggle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	now := time.Unix(0, 0)
	p := profiler.NewProfiler(
		profiler.WithInterval(time.Nanosecond),
		profiler.WithLogger(zap.New(core)),
		profiler.WithTimeSource(func() time.Time {
			now = now.Add(time.Millisecond)
			return now
		}),
	)
	e := NewEngine(WithWindow(&fakeWindow{polls: 4}), WithProfiler(p))
	assert.False(t, e.ProfilerEnabled())

	frames := 0
	e.SetFrameCallback(func(float64) {
		frames++
		switch frames {
		case 2:
			e.EnableProfiler()
		case 4:
			e.DisableProfiler()
		}
	})

	require.NoError(t, e.Run())
	assert.Equal(t, 4, frames)
	assert.False(t, e.ProfilerEnabled())
	assert.Equal(t, 2, logs.FilterMessage("profiler").Len())
}
