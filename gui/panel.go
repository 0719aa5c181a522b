// Package gui binds live-tunable settings to struct fields and drives them from keyboard
// shortcuts and a watched settings file.
package gui

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

var (
	// ErrUnknownField is returned by Set for a field no control is bound to.
	ErrUnknownField = errors.New("no control bound to field")

	// ErrValueType is returned by Set when the value cannot be converted to the control's type.
	ErrValueType = errors.New("value does not match control type")
)

// ControlKind is the type of a bound control.
type ControlKind int

const (
	ControlColor ControlKind = iota
	ControlBoolean
	ControlRange
)

var controlNames = map[ControlKind]string{
	ControlColor:   "color",
	ControlBoolean: "boolean",
	ControlRange:   "range",
}

func (k ControlKind) String() string {
	return controlNames[k]
}

// Subscription is a bound control. Unbind detaches it so later Sets neither write the field nor
// call the change callback.
type Subscription interface {
	// Unbind detaches the control. Calling it again does nothing.
	Unbind()

	// Active reports whether the control is still bound. Controls for missing fields are never
	// active.
	Active() bool
}

type binding struct {
	panel    *panel
	field    string
	kind     ControlKind
	target   any
	value    reflect.Value
	min, max float64
	step     float64
	onColor  func(string)
	onBool   func(bool)
	onRange  func(float64)
	active   bool
}

// inertSubscription is returned for bindings that could not be resolved.
type inertSubscription struct{}

func (inertSubscription) Unbind()      {}
func (inertSubscription) Active() bool { return false }

type panel struct {
	mu       sync.Mutex
	title    string
	log      *zap.Logger
	bindings map[string][]*binding
	order    []string
}

// Panel is a set of controls bound by reflection to exported fields of caller-owned structs.
// Binding to a missing field, an unexported field, or a field of the wrong kind yields an inert
// Subscription and is otherwise ignored.
//
// Set and the Bind methods must be called from the same goroutine as whatever reads the bound
// structs.
type Panel interface {
	// Title returns the panel title.
	Title() string

	// BindColor binds a string field holding a "#rrggbb" colour.
	//
	// Parameters:
	//   - target: a pointer to the struct owning the field
	//   - field: the exported field name
	//   - onChange: called with the normalised colour after each Set, may be nil
	//
	// Returns:
	//   - Subscription: the control, inert if the field cannot be bound
	BindColor(target any, field string, onChange func(string)) Subscription

	// BindBoolean binds a bool field.
	//
	// Parameters:
	//   - target: a pointer to the struct owning the field
	//   - field: the exported field name
	//   - onChange: called with the new value after each Set, may be nil
	//
	// Returns:
	//   - Subscription: the control, inert if the field cannot be bound
	BindBoolean(target any, field string, onChange func(bool)) Subscription

	// BindRange binds a numeric field to a slider over [min, max]. Values are snapped to step
	// (when step > 0) and clamped.
	//
	// Parameters:
	//   - target: a pointer to the struct owning the field
	//   - field: the exported field name of any int or float kind
	//   - min, max: the slider bounds
	//   - step: the slider increment, 0 for continuous
	//   - onChange: called with the stored value after each Set, may be nil
	//
	// Returns:
	//   - Subscription: the control, inert if the field cannot be bound
	BindRange(target any, field string, min, max, step float64, onChange func(float64)) Subscription

	// Set writes value to every active control bound to field and then calls their change
	// callbacks. Colours accept strings or 0xRRGGBB integers; booleans accept bools;
	// ranges accept any number.
	//
	// Parameters:
	//   - field: the bound field name
	//   - value: the new value
	//
	// Returns:
	//   - error: ErrUnknownField or ErrValueType (wrapped)
	Set(field string, value any) error

	// Get returns the current value of the first active control bound to field.
	Get(field string) (any, bool)

	// Control returns the kind and, for ranges, the bounds and step of the first active control
	// bound to field.
	Control(field string) (kind ControlKind, min, max, step float64, ok bool)

	// Toggle inverts a boolean control.
	Toggle(field string) error

	// Nudge moves a range control by steps increments (or 1% of its span for continuous ranges).
	Nudge(field string, steps float64) error

	// Fields returns the bound field names in binding order.
	Fields() []string

	// Snapshot deep-copies every struct with an active control into dst, matching fields by name.
	//
	// Parameters:
	//   - dst: a pointer to a struct
	//
	// Returns:
	//   - error: from copier if dst is incompatible
	Snapshot(dst any) error
}

var _ Panel = &panel{}

// NewPanel creates an empty panel.
//
// Parameters:
//   - title: the panel title
//   - options: functional options to configure the panel
//
// Returns:
//   - Panel: the panel
func NewPanel(title string, options ...PanelBuilderOption) Panel {
	p := &panel{
		title:    title,
		log:      logger.Log,
		bindings: make(map[string][]*binding),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *panel) Title() string {
	return p.title
}

// resolve returns the settable field value, or false when the field is missing or of a kind
// the control cannot drive.
func resolve(target any, field string, kind ControlKind) (reflect.Value, bool) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	f := v.Elem().FieldByName(field)
	if !f.IsValid() || !f.CanSet() {
		return reflect.Value{}, false
	}
	switch kind {
	case ControlColor:
		return f, f.Kind() == reflect.String
	case ControlBoolean:
		return f, f.Kind() == reflect.Bool
	default:
		return f, f.CanFloat() || f.CanInt() || f.CanUint()
	}
}

func (p *panel) bind(b *binding) Subscription {
	f, ok := resolve(b.target, b.field, b.kind)
	if !ok {
		p.log.Debug("gui: control not bound",
			zap.String("panel", p.title),
			zap.String("field", b.field),
			zap.Stringer("kind", b.kind))
		return inertSubscription{}
	}
	b.panel, b.value, b.active = p, f, true

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, seen := p.bindings[b.field]; !seen {
		p.order = append(p.order, b.field)
	}
	p.bindings[b.field] = append(p.bindings[b.field], b)
	return b
}

func (p *panel) BindColor(target any, field string, onChange func(string)) Subscription {
	return p.bind(&binding{field: field, kind: ControlColor, target: target, onColor: onChange})
}

func (p *panel) BindBoolean(target any, field string, onChange func(bool)) Subscription {
	return p.bind(&binding{field: field, kind: ControlBoolean, target: target, onBool: onChange})
}

func (p *panel) BindRange(target any, field string, min, max, step float64, onChange func(float64)) Subscription {
	if min > max {
		min, max = max, min
	}
	return p.bind(&binding{
		field: field, kind: ControlRange, target: target,
		min: min, max: max, step: step, onRange: onChange,
	})
}

func (p *panel) active(field string) []*binding {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*binding
	for _, b := range p.bindings[field] {
		if b.active {
			out = append(out, b)
		}
	}
	return out
}

func (p *panel) Set(field string, value any) error {
	bs := p.active(field)
	if len(bs) == 0 {
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	for _, b := range bs {
		if err := b.set(value); err != nil {
			return fmt.Errorf("%q: %w", field, err)
		}
	}
	return nil
}

func (p *panel) Get(field string) (any, bool) {
	bs := p.active(field)
	if len(bs) == 0 {
		return nil, false
	}
	return bs[0].get(), true
}

func (p *panel) Control(field string) (ControlKind, float64, float64, float64, bool) {
	bs := p.active(field)
	if len(bs) == 0 {
		return 0, 0, 0, 0, false
	}
	b := bs[0]
	return b.kind, b.min, b.max, b.step, true
}

func (p *panel) Toggle(field string) error {
	v, ok := p.Get(field)
	if !ok {
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	on, ok := v.(bool)
	if !ok {
		return fmt.Errorf("%q: %w", field, ErrValueType)
	}
	return p.Set(field, !on)
}

func (p *panel) Nudge(field string, steps float64) error {
	kind, lo, hi, step, ok := p.Control(field)
	if !ok {
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
	if kind != ControlRange {
		return fmt.Errorf("%q: %w", field, ErrValueType)
	}
	if step <= 0 {
		step = (hi - lo) / 100
	}
	v, _ := p.Get(field)
	return p.Set(field, v.(float64)+steps*step)
}

func (p *panel) Fields() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.order))
	for _, f := range p.order {
		for _, b := range p.bindings[f] {
			if b.active {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func (p *panel) Snapshot(dst any) error {
	p.mu.Lock()
	seen := make(map[any]bool)
	var targets []any
	fields := make([]string, 0, len(p.bindings))
	for f := range p.bindings {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		for _, b := range p.bindings[f] {
			if b.active && !seen[b.target] {
				seen[b.target] = true
				targets = append(targets, b.target)
			}
		}
	}
	p.mu.Unlock()

	for _, t := range targets {
		if err := copier.CopyWithOption(dst, t, copier.Option{DeepCopy: true}); err != nil {
			return err
		}
	}
	return nil
}

func (b *binding) Unbind() {
	b.panel.mu.Lock()
	defer b.panel.mu.Unlock()
	b.active = false
}

func (b *binding) Active() bool {
	b.panel.mu.Lock()
	defer b.panel.mu.Unlock()
	return b.active
}

func (b *binding) get() any {
	switch b.kind {
	case ControlColor:
		return b.value.String()
	case ControlBoolean:
		return b.value.Bool()
	default:
		return numberOf(b.value)
	}
}

func (b *binding) set(value any) error {
	switch b.kind {
	case ControlColor:
		c, err := colorOf(value)
		if err != nil {
			return err
		}
		s := c.String()
		b.value.SetString(s)
		if b.onColor != nil {
			b.onColor(s)
		}
	case ControlBoolean:
		on, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%T: %w", value, ErrValueType)
		}
		b.value.SetBool(on)
		if b.onBool != nil {
			b.onBool(on)
		}
	default:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%T: %w", value, ErrValueType)
		}
		storeNumber(b.value, b.snap(f))
		stored := numberOf(b.value)
		if b.onRange != nil {
			b.onRange(stored)
		}
	}
	return nil
}

// snap rounds v to the nearest step above min and clamps it to the range.
func (b *binding) snap(v float64) float64 {
	if b.step > 0 {
		v = b.min + math.Round((v-b.min)/b.step)*b.step
	}
	return common.Clamp(v, b.min, b.max)
}

func colorOf(value any) (common.Color, error) {
	switch v := value.(type) {
	case string:
		c, err := common.ParseColor(v)
		if err != nil {
			return common.Color{}, fmt.Errorf("%w: %w", ErrValueType, err)
		}
		return c, nil
	case common.Color:
		return v, nil
	default:
		if n, ok := toFloat(value); ok && n >= 0 && n <= 0xffffff {
			return common.ColorFromHex(uint32(n)), nil
		}
		return common.Color{}, fmt.Errorf("%T: %w", value, ErrValueType)
	}
}

func toFloat(value any) (float64, bool) {
	v := reflect.ValueOf(value)
	switch {
	case !v.IsValid():
		return 0, false
	case v.CanFloat():
		return v.Float(), true
	case v.CanInt():
		return float64(v.Int()), true
	case v.CanUint():
		return float64(v.Uint()), true
	}
	return 0, false
}

func numberOf(v reflect.Value) float64 {
	switch {
	case v.CanFloat():
		return v.Float()
	case v.CanInt():
		return float64(v.Int())
	default:
		return float64(v.Uint())
	}
}

func storeNumber(v reflect.Value, f float64) {
	switch {
	case v.CanFloat():
		v.SetFloat(f)
	case v.CanInt():
		v.SetInt(int64(math.Round(f)))
	default:
		v.SetUint(uint64(math.Max(0, math.Round(f))))
	}
}
