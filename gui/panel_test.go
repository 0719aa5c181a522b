package gui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	Color     string
	Wireframe bool
	Speed     float64
	Segments  int
	hidden    bool
}

func TestPanel_BindMissingFieldIsInert(t *testing.T) {
	s := &settings{}
	p := NewPanel("test")

	tests := []struct {
		name string
		sub  Subscription
	}{
		{"missing", p.BindColor(s, "Nope", nil)},
		{"wrong kind", p.BindBoolean(s, "Speed", nil)},
		{"unexported", p.BindBoolean(s, "hidden", nil)},
		{"not a pointer", p.BindRange(*s, "Speed", 0, 1, 0, nil)},
		{"nil target", p.BindColor(nil, "Color", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.sub.Active())
			tt.sub.Unbind()
		})
	}
	assert.Empty(t, p.Fields())
	assert.ErrorIs(t, p.Set("Nope", "#fff"), ErrUnknownField)
}

func TestPanel_SetWritesThroughAndNotifies(t *testing.T) {
	s := &settings{Color: "#ffea00"}
	p := NewPanel("test")

	var gotColor string
	var gotWire bool
	var gotSpeed float64
	p.BindColor(s, "Color", func(c string) { gotColor = c })
	p.BindBoolean(s, "Wireframe", func(b bool) { gotWire = b })
	p.BindRange(s, "Speed", 0, 0.1, 0.001, func(v float64) { gotSpeed = v })
	assert.Equal(t, []string{"Color", "Wireframe", "Speed"}, p.Fields())

	require.NoError(t, p.Set("Color", "0xFF0000"))
	assert.Equal(t, "#ff0000", s.Color)
	assert.Equal(t, "#ff0000", gotColor)

	require.NoError(t, p.Set("Color", 0x00ff00))
	assert.Equal(t, "#00ff00", s.Color)

	require.NoError(t, p.Set("Wireframe", true))
	assert.True(t, s.Wireframe)
	assert.True(t, gotWire)

	require.NoError(t, p.Set("Speed", 0.5))
	assert.InDelta(t, 0.1, s.Speed, 1e-12)
	assert.InDelta(t, 0.1, gotSpeed, 1e-12)

	require.NoError(t, p.Set("Speed", -3))
	assert.Equal(t, 0.0, s.Speed)

	require.NoError(t, p.Set("Speed", 0.0204))
	assert.InDelta(t, 0.020, s.Speed, 1e-12)

	assert.ErrorIs(t, p.Set("Wireframe", "yes"), ErrValueType)
	assert.ErrorIs(t, p.Set("Color", "teal"), ErrValueType)
	assert.ErrorIs(t, p.Set("Speed", "fast"), ErrValueType)
}

func TestPanel_IntRange(t *testing.T) {
	s := &settings{}
	p := NewPanel("test")
	p.BindRange(s, "Segments", 100, 1, 1, nil)

	require.NoError(t, p.Set("Segments", 42.6))
	assert.Equal(t, 43, s.Segments)
	require.NoError(t, p.Set("Segments", 500))
	assert.Equal(t, 100, s.Segments)
}

func TestPanel_Unbind(t *testing.T) {
	s := &settings{}
	p := NewPanel("test")
	calls := 0
	sub := p.BindBoolean(s, "Wireframe", func(bool) { calls++ })
	require.True(t, sub.Active())

	sub.Unbind()
	assert.False(t, sub.Active())
	assert.ErrorIs(t, p.Set("Wireframe", true), ErrUnknownField)
	assert.False(t, s.Wireframe)
	assert.Zero(t, calls)
	assert.Empty(t, p.Fields())
}

func TestPanel_ToggleNudgeGet(t *testing.T) {
	s := &settings{Speed: 0.01}
	p := NewPanel("test")
	p.BindBoolean(s, "Wireframe", nil)
	p.BindRange(s, "Speed", 0, 0.1, 0.001, nil)

	require.NoError(t, p.Toggle("Wireframe"))
	assert.True(t, s.Wireframe)
	require.NoError(t, p.Toggle("Wireframe"))
	assert.False(t, s.Wireframe)

	require.NoError(t, p.Nudge("Speed", 5))
	assert.InDelta(t, 0.015, s.Speed, 1e-12)

	v, ok := p.Get("Speed")
	require.True(t, ok)
	assert.InDelta(t, 0.015, v.(float64), 1e-12)

	kind, lo, hi, step, ok := p.Control("Speed")
	require.True(t, ok)
	assert.Equal(t, ControlRange, kind)
	assert.Equal(t, []float64{0, 0.1, 0.001}, []float64{lo, hi, step})

	assert.ErrorIs(t, p.Toggle("Speed"), ErrValueType)
	assert.ErrorIs(t, p.Nudge("Wireframe", 1), ErrValueType)
}

func TestPanel_Snapshot(t *testing.T) {
	s := &settings{Color: "#123456", Speed: 0.05}
	p := NewPanel("test")
	p.BindColor(s, "Color", nil)
	p.BindRange(s, "Speed", 0, 0.1, 0, nil)

	var snap settings
	require.NoError(t, p.Snapshot(&snap))
	assert.Equal(t, "#123456", snap.Color)
	assert.Equal(t, 0.05, snap.Speed)

	s.Color = "#000000"
	assert.Equal(t, "#123456", snap.Color)
}

func TestKeyBindings(t *testing.T) {
	s := &settings{}
	p := NewPanel("test")
	p.BindBoolean(s, "Wireframe", nil)
	p.BindColor(s, "Color", nil)

	kb := NewKeyBindings()
	kb.Bind('W', "toggle wireframe", ToggleAction(p, "Wireframe"))
	kb.Bind('C', "cycle colour", CycleAction(p, "Color", "#ff0000", "#00ff00"))
	kb.Bind('X', "broken", NudgeAction(p, "Missing", 1))

	ok, err := kb.Handle('W')
	require.True(t, ok)
	require.NoError(t, err)
	assert.True(t, s.Wireframe)

	for _, want := range []string{"#ff0000", "#00ff00", "#ff0000"} {
		_, err = kb.Handle('C')
		require.NoError(t, err)
		assert.Equal(t, want, s.Color)
	}

	ok, err = kb.Handle('X')
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrUnknownField)

	ok, err = kb.Handle('Z')
	assert.False(t, ok)
	assert.NoError(t, err)

	keys := []uint32{}
	for _, b := range kb.Bindings() {
		keys = append(keys, b.Key)
	}
	assert.Equal(t, []uint32{'C', 'W', 'X'}, keys)
}
