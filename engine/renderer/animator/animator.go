package animator

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// LoopMode selects what an action does when it reaches the end of its clip.
type LoopMode int

const (
	// LoopRepeat wraps back to the start.
	LoopRepeat LoopMode = iota

	// LoopOnce holds the last frame and stops running.
	LoopOnce
)

// binding ties one track to the node it animates.
type binding struct {
	track *model.AnimationTrack
	node  game_object.GameObject
}

type mixerImpl struct {
	mu        sync.Mutex
	root      game_object.GameObject
	timeScale float64
	time      float64
	actions   map[*model.AnimationClip]*actionImpl
	order     []*actionImpl
}

// Mixer plays animation clips on a node hierarchy. Tracks are bound to nodes in the hierarchy by
// name when an action is first created; tracks whose node does not exist are ignored.
type Mixer interface {
	// Root returns the node the mixer animates.
	//
	// Returns:
	//   - game_object.GameObject: the root node
	Root() game_object.GameObject

	// ClipAction returns the action for a clip, creating it on first use. The same clip always
	// yields the same action.
	//
	// Parameters:
	//   - clip: the clip to play
	//
	// Returns:
	//   - Action: the action, stopped until Play is called
	ClipAction(clip *model.AnimationClip) Action

	// Update advances every running action by delta seconds, scaled by the mixer time scale, and
	// writes the blended pose into the bound nodes.
	//
	// Parameters:
	//   - delta: elapsed seconds since the previous update
	Update(delta float64)

	// Time returns the total scaled time the mixer has advanced.
	Time() float64

	// SetTimeScale scales all subsequent Update deltas.
	//
	// Parameters:
	//   - scale: the multiplier, 1 for real time
	SetTimeScale(scale float64)

	// StopAllAction stops every action created by this mixer.
	StopAllAction()
}

var _ Mixer = &mixerImpl{}

// NewMixer creates a mixer bound to root.
//
// Parameters:
//   - root: the hierarchy to animate
//   - options: functional options to configure the mixer
//
// Returns:
//   - Mixer: the new mixer
func NewMixer(root game_object.GameObject, options ...MixerBuilderOption) Mixer {
	m := &mixerImpl{
		root:      root,
		timeScale: 1,
		actions:   make(map[*model.AnimationClip]*actionImpl),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FindClip returns the clip with the given name.
//
// Parameters:
//   - clips: the clips to search
//   - name: the clip name
//
// Returns:
//   - *model.AnimationClip: the clip, or nil
//   - bool: true if a clip with that name exists
func FindClip(clips []*model.AnimationClip, name string) (*model.AnimationClip, bool) {
	for _, c := range clips {
		if c != nil && c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (m *mixerImpl) Root() game_object.GameObject {
	return m.root
}

func (m *mixerImpl) ClipAction(clip *model.AnimationClip) Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actions[clip]; ok {
		return a
	}

	a := &actionImpl{mixer: m, clip: clip, loop: LoopRepeat, timeScale: 1, weight: 1}
	if clip != nil && m.root != nil {
		for i := range clip.Tracks {
			tr := &clip.Tracks[i]
			node, ok := m.root.GetObjectByName(tr.NodeName)
			if !ok {
				continue
			}
			a.bindings = append(a.bindings, binding{track: tr, node: node})
		}
	}
	m.actions[clip] = a
	m.order = append(m.order, a)
	return a
}

func (m *mixerImpl) Time() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.time
}

func (m *mixerImpl) SetTimeScale(scale float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeScale = scale
}

func (m *mixerImpl) StopAllAction() {
	m.mu.Lock()
	actions := append([]*actionImpl(nil), m.order...)
	m.mu.Unlock()
	for _, a := range actions {
		a.Stop()
	}
}

// pose accumulates weighted samples for one node.
type pose struct {
	node               game_object.GameObject
	translation, scale mgl32.Vec3
	rotation           mgl32.Quat
	wT, wR, wS         float32
	hasT, hasR, hasS   bool
}

func (m *mixerImpl) Update(delta float64) {
	m.mu.Lock()
	delta *= m.timeScale
	m.time += delta
	actions := append([]*actionImpl(nil), m.order...)
	m.mu.Unlock()

	poses := make(map[uint64]*pose)
	var nodeOrder []uint64

	for _, a := range actions {
		weight, running := a.advance(delta)
		if !running || weight <= 0 {
			continue
		}
		t := a.Time()
		for _, b := range a.bindings {
			id := b.node.ID()
			p, ok := poses[id]
			if !ok {
				p = &pose{node: b.node}
				poses[id] = p
				nodeOrder = append(nodeOrder, id)
			}
			v := sampleTrack(b.track, float32(t))
			w := float32(weight)
			switch b.track.Path {
			case model.TrackTranslation:
				p.translation = p.translation.Add(mgl32.Vec3{v[0], v[1], v[2]}.Mul(w))
				p.wT += w
				p.hasT = true
			case model.TrackScale:
				p.scale = p.scale.Add(mgl32.Vec3{v[0], v[1], v[2]}.Mul(w))
				p.wS += w
				p.hasS = true
			case model.TrackRotation:
				q := mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
				if !p.hasR {
					p.rotation = q
					p.wR = w
					p.hasR = true
					continue
				}
				total := p.wR + w
				p.rotation = slerp(p.rotation, q, w/total)
				p.wR = total
			}
		}
	}

	for _, id := range nodeOrder {
		p := poses[id]
		if p.hasT && p.wT > 0 {
			t := p.translation.Mul(1 / p.wT)
			p.node.SetPosition(t[0], t[1], t[2])
		}
		if p.hasS && p.wS > 0 {
			s := p.scale.Mul(1 / p.wS)
			p.node.SetScale(s[0], s[1], s[2])
		}
		if p.hasR {
			p.node.SetQuaternion(p.rotation.Normalize())
		}
	}
}
