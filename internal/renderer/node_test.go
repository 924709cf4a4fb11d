package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNodeAddReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	child := NewNode("child")

	a.Add(child)
	b.Add(child)

	if len(a.Children()) != 0 {
		t.Errorf("Expected child to leave its old parent, got %d children", len(a.Children()))
	}
	if child.Parent() != b {
		t.Error("Expected child to be attached to the new parent")
	}
}

func TestNodeRemoveChildren(t *testing.T) {
	root := NewNode("root")
	c1, c2 := NewNode("c1"), NewNode("c2")
	root.Add(c1)
	root.Add(c2)

	root.RemoveChildren()

	if len(root.Children()) != 0 || c1.Parent() != nil || c2.Parent() != nil {
		t.Error("RemoveChildren should detach every child")
	}
}

func TestNodeWorldMatrix(t *testing.T) {
	root := NewNode("root")
	root.SetPosition(1, 2, 3)
	root.SetScale(2, 2, 2)
	child := NewNode("child")
	child.SetPosition(1, 0, 0)
	root.Add(child)

	got := mgl32.TransformCoordinate(mgl32.Vec3{}, child.WorldMatrix())

	if !got.ApproxEqual(mgl32.Vec3{3, 2, 3}) {
		t.Errorf("Expected world origin (3,2,3), got %v", got)
	}
}

func TestFindByName(t *testing.T) {
	root := NewNode("van")
	floor := NewNode("floor")
	root.Add(NewNode("back"))
	root.Add(floor)

	if root.FindByName("floor") != floor {
		t.Error("FindByName should find nested node")
	}
	if root.FindByName("roof") != nil {
		t.Error("FindByName should return nil for missing node")
	}
}

func TestBoundingBoxOfRotatedChild(t *testing.T) {
	root := NewNode("root")
	root.SetPosition(1, 1, 1)
	child := NewMeshNode("box", CreateBox(2, 1, 1))
	child.SetRotationEuler(mgl32.Vec3{0, mgl32.DegToRad(90), 0})
	root.Add(child)

	box := BoundingBoxOf(root)

	size := box.Size()
	if !size.ApproxEqualThreshold(mgl32.Vec3{1, 1, 2}, 1e-5) {
		t.Errorf("Expected rotated size (1,1,2), got %v", size)
	}
	if !box.Center().ApproxEqualThreshold(mgl32.Vec3{1, 1, 1}, 1e-5) {
		t.Errorf("Expected center (1,1,1), got %v", box.Center())
	}
}

func TestBoundingBoxOfEmptyNode(t *testing.T) {
	if !BoundingBoxOf(NewNode("empty")).IsEmpty() {
		t.Error("Node without geometry should have an empty box")
	}
}
