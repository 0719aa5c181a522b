package animator

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/engine/model"
)

type actionImpl struct {
	mu       sync.Mutex
	mixer    *mixerImpl
	clip     *model.AnimationClip
	bindings []binding

	time      float64
	timeScale float64
	weight    float64
	loop      LoopMode
	running   bool
	paused    bool

	// fade moves weight linearly toward fadeTarget over fadeRemaining seconds
	fadeTarget    float64
	fadeRemaining float64
	fading        bool
}

// Action is the playback state of one clip on one Mixer.
type Action interface {
	// Clip returns the clip this action plays.
	Clip() *model.AnimationClip

	// Play starts the action, or resumes it if paused. Playing a running action does nothing.
	//
	// Returns:
	//   - Action: the action, for chaining
	Play() Action

	// Stop halts the action and rewinds it to the start.
	//
	// Returns:
	//   - Action: the action, for chaining
	Stop() Action

	// Reset rewinds the action to the start and restores full weight without changing whether
	// it is running.
	//
	// Returns:
	//   - Action: the action, for chaining
	Reset() Action

	// SetPaused freezes or unfreezes playback time.
	//
	// Parameters:
	//   - paused: true to freeze
	SetPaused(paused bool)

	// IsRunning reports whether the action is playing and not paused.
	IsRunning() bool

	// SetLoop selects the end-of-clip behavior.
	//
	// Parameters:
	//   - mode: the loop mode
	//
	// Returns:
	//   - Action: the action, for chaining
	SetLoop(mode LoopMode) Action

	// SetTimeScale scales this action's playback speed.
	//
	// Parameters:
	//   - scale: the multiplier; negative plays backwards
	//
	// Returns:
	//   - Action: the action, for chaining
	SetTimeScale(scale float64) Action

	// Time returns the local playback time in seconds.
	Time() float64

	// SetTime jumps to a local playback time in seconds.
	//
	// Parameters:
	//   - t: the new time
	SetTime(t float64)

	// Weight returns the blend weight in [0, 1].
	Weight() float64

	// SetWeight sets the blend weight, clamped to [0, 1], and cancels any fade.
	//
	// Parameters:
	//   - w: the new weight
	SetWeight(w float64)

	// CrossFadeTo fades this action out and other in over duration seconds, starting other if
	// it is not running.
	//
	// Parameters:
	//   - other: the action to fade to
	//   - duration: the fade length in seconds
	CrossFadeTo(other Action, duration float64)
}

var _ Action = &actionImpl{}

func (a *actionImpl) Clip() *model.AnimationClip {
	return a.clip
}

func (a *actionImpl) Play() Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = true
	a.paused = false
	return a
}

func (a *actionImpl) Stop() Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
	a.time = 0
	a.fading = false
	return a
}

func (a *actionImpl) Reset() Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.time = 0
	a.weight = 1
	a.fading = false
	return a
}

func (a *actionImpl) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = paused
}

func (a *actionImpl) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running && !a.paused
}

func (a *actionImpl) SetLoop(mode LoopMode) Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loop = mode
	return a
}

func (a *actionImpl) SetTimeScale(scale float64) Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeScale = scale
	return a
}

func (a *actionImpl) Time() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.time
}

func (a *actionImpl) SetTime(t float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.time = t
}

func (a *actionImpl) Weight() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.weight
}

func (a *actionImpl) SetWeight(w float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.weight = math.Max(0, math.Min(1, w))
	a.fading = false
}

func (a *actionImpl) CrossFadeTo(other Action, duration float64) {
	o, ok := other.(*actionImpl)
	if !ok || o == a {
		return
	}
	a.fadeTo(0, duration)

	o.mu.Lock()
	if !o.running {
		o.running = true
		o.time = 0
		o.weight = 0
	}
	o.paused = false
	o.mu.Unlock()
	o.fadeTo(1, duration)
}

func (a *actionImpl) fadeTo(target, duration float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if duration <= 0 {
		a.weight = target
		a.fading = false
		return
	}
	a.fadeTarget = target
	a.fadeRemaining = duration
	a.fading = true
}

// advance moves playback by delta mixer seconds and returns the effective weight and whether the
// action contributes to this frame.
func (a *actionImpl) advance(delta float64) (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return 0, false
	}
	if a.paused {
		return a.weight, true
	}

	if a.fading {
		if delta >= a.fadeRemaining {
			a.weight = a.fadeTarget
			a.fading = false
		} else {
			a.weight += (a.fadeTarget - a.weight) * delta / a.fadeRemaining
			a.fadeRemaining -= delta
		}
		if !a.fading && a.weight == 0 {
			a.running = false
			a.time = 0
			return 0, false
		}
	}

	a.time += delta * a.timeScale
	duration := 0.0
	if a.clip != nil {
		duration = float64(a.clip.Duration)
	}
	if duration <= 0 {
		a.time = 0
		return a.weight, true
	}

	switch a.loop {
	case LoopOnce:
		if a.time >= duration {
			a.time = duration
			a.running = false
			// the final pose is still applied on this frame
			return a.weight, true
		}
		if a.time < 0 {
			a.time = 0
			a.running = false
			return a.weight, true
		}
	default:
		a.time = math.Mod(a.time, duration)
		if a.time < 0 {
			a.time += duration
		}
	}
	return a.weight, true
}
