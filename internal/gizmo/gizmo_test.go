package gizmo

import (
	"testing"

	"VanBuilder/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"w": Translate, "e": Rotate, "r": Scale, "scale": Scale}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("x"); err == nil {
		t.Error("Unknown mode should fail")
	}
}

func TestDragTranslateFiresChange(t *testing.T) {
	g := New()
	n := renderer.NewNode("obj")
	g.Attach(n)
	changes := 0
	g.OnChange(func() { changes++ })

	g.Drag(AxisY, 0.5)

	if n.Position != (mgl32.Vec3{0, 0.5, 0}) {
		t.Errorf("Expected position (0,0.5,0), got %v", n.Position)
	}
	if changes != 1 {
		t.Errorf("Expected 1 change event, got %d", changes)
	}
}

func TestDragRotate(t *testing.T) {
	g := New()
	n := renderer.NewNode("obj")
	g.Attach(n)
	g.SetMode(Rotate)

	g.Drag(AxisY, mgl32.DegToRad(90))

	front := n.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	if !front.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("Expected +X to rotate to -Z, got %v", front)
	}
	if n.Position != (mgl32.Vec3{}) {
		t.Error("Rotate mode must not move the object")
	}
}

func TestDragScaleHasFloor(t *testing.T) {
	g := New()
	n := renderer.NewNode("obj")
	g.Attach(n)
	g.SetMode(Scale)

	g.Drag(AxisX, -5)

	if n.Scale.X() != minScale {
		t.Errorf("Expected scale clamped to %f, got %f", minScale, n.Scale.X())
	}
}

func TestDragWithoutObjectIsNoop(t *testing.T) {
	g := New()
	changes := 0
	g.OnChange(func() { changes++ })

	g.Drag(AxisX, 1)

	if changes != 0 {
		t.Error("Detached gizmo should not emit changes")
	}
	if g.BeginDrag() {
		t.Error("BeginDrag without an object should fail")
	}
}

func TestDraggingChangedEvents(t *testing.T) {
	g := New()
	g.Attach(renderer.NewNode("obj"))
	var events []bool
	g.OnDraggingChanged(func(v bool) { events = append(events, v) })

	g.BeginDrag()
	g.BeginDrag()
	g.Detach()

	if len(events) != 2 || !events[0] || events[1] {
		t.Errorf("Expected [true false], got %v", events)
	}
	if g.Dragging() {
		t.Error("Detach should end the drag")
	}
}
