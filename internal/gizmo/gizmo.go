package gizmo

import (
	"fmt"

	"VanBuilder/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

type Mode int

const (
	Translate Mode = iota
	Rotate
	Scale
)

func (m Mode) String() string {
	switch m {
	case Translate:
		return "translate"
	case Rotate:
		return "rotate"
	case Scale:
		return "scale"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts a mode name or its keyboard shortcut (w, e, r).
func ParseMode(s string) (Mode, error) {
	switch s {
	case "translate", "w":
		return Translate, nil
	case "rotate", "e":
		return Rotate, nil
	case "scale", "r":
		return Scale, nil
	}
	return Translate, fmt.Errorf("unknown gizmo mode %q", s)
}

// Axis selects the handle being dragged.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// minScale keeps scale drags from collapsing or mirroring an object.
const minScale = 0.05

// Gizmo is the transform handle set attached to at most one node.
type Gizmo struct {
	mode     Mode
	object   *renderer.Node
	dragging bool

	onChange          []func()
	onDraggingChanged []func(bool)
}

func New() *Gizmo {
	return &Gizmo{mode: Translate}
}

func (g *Gizmo) Attach(n *renderer.Node) {
	if g.dragging && g.object != n {
		g.EndDrag()
	}
	g.object = n
}

// Detach releases the object, ending any drag in progress.
func (g *Gizmo) Detach() {
	if g.dragging {
		g.EndDrag()
	}
	g.object = nil
}

func (g *Gizmo) Object() *renderer.Node {
	return g.object
}

func (g *Gizmo) Attached() bool {
	return g.object != nil
}

func (g *Gizmo) Mode() Mode {
	return g.mode
}

func (g *Gizmo) SetMode(m Mode) {
	g.mode = m
}

func (g *Gizmo) Dragging() bool {
	return g.dragging
}

// OnChange registers fn to run after every transform the gizmo applies.
func (g *Gizmo) OnChange(fn func()) {
	g.onChange = append(g.onChange, fn)
}

// OnDraggingChanged registers fn to run when a drag starts (true) or stops (false).
func (g *Gizmo) OnDraggingChanged(fn func(bool)) {
	g.onDraggingChanged = append(g.onDraggingChanged, fn)
}

// BeginDrag starts a drag on the attached object. It reports false when
// nothing is attached.
func (g *Gizmo) BeginDrag() bool {
	if g.object == nil {
		return false
	}
	if !g.dragging {
		g.dragging = true
		g.emitDragging(true)
	}
	return true
}

func (g *Gizmo) EndDrag() {
	if !g.dragging {
		return
	}
	g.dragging = false
	g.emitDragging(false)
}

// Drag moves the attached object along one handle according to the current
// mode: world units for translate, radians for rotate, a relative factor
// for scale.
func (g *Gizmo) Drag(axis Axis, amount float32) {
	if g.object == nil || axis < AxisX || axis > AxisZ {
		return
	}
	n := g.object
	switch g.mode {
	case Translate:
		n.Position[axis] += amount
	case Rotate:
		var unit mgl32.Vec3
		unit[axis] = 1
		n.Rotation = mgl32.QuatRotate(amount, unit).Mul(n.Rotation).Normalize()
	case Scale:
		s := n.Scale[axis] * (1 + amount)
		if s < minScale {
			s = minScale
		}
		n.Scale[axis] = s
	}
	g.emitChange()
}

// Translate moves the attached object by delta in one step. It is only
// honoured in translate mode.
func (g *Gizmo) Translate(delta mgl32.Vec3) {
	if g.object == nil || g.mode != Translate {
		return
	}
	g.object.Position = g.object.Position.Add(delta)
	g.emitChange()
}

func (g *Gizmo) emitChange() {
	for _, fn := range g.onChange {
		fn()
	}
}

func (g *Gizmo) emitDragging(v bool) {
	for _, fn := range g.onDraggingChanged {
		fn(v)
	}
}
