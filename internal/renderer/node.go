package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is a scene graph element. A node carries a local transform, an
// optional mesh and any number of children.
type Node struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Mesh     *Mesh
	Visible  bool
	Metadata map[string]interface{}

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Visible:  true,
	}
}

// NewMeshNode wraps a mesh in a node of its own.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	return n
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Add attaches child to n, detaching it from any previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It reports whether child was a direct child.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// RemoveChildren detaches every direct child of n.
func (n *Node) RemoveChildren() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Traverse visits n and all of its descendants depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// FindByName returns the first node in the subtree with the given name.
func (n *Node) FindByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// IsAncestorOf reports whether other lies in the subtree rooted at n.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) SetPosition(x, y, z float32) {
	n.Position = mgl32.Vec3{x, y, z}
}

func (n *Node) SetScale(x, y, z float32) {
	n.Scale = mgl32.Vec3{x, y, z}
}

// SetRotationEuler sets the rotation from XYZ-ordered Euler angles in radians.
func (n *Node) SetRotationEuler(angles mgl32.Vec3) {
	n.Rotation = EulerToQuat(angles)
}

// RotationEuler returns the rotation as XYZ-ordered Euler angles in radians.
func (n *Node) RotationEuler() mgl32.Vec3 {
	return QuatToEuler(n.Rotation)
}

// LocalMatrix composes translation, rotation and scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	rot := n.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}
	translation := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	scale := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return translation.Mul4(rot.Mat4()).Mul4(scale)
}

// WorldMatrix walks up the parent chain.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// EulerToQuat converts XYZ-ordered Euler angles (radians) to a quaternion.
func EulerToQuat(angles mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(angles.X(), mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(angles.Y(), mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(angles.Z(), mgl32.Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz).Normalize()
}

// QuatToEuler is the inverse of EulerToQuat.
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	if q == (mgl32.Quat{}) {
		return mgl32.Vec3{}
	}
	return matrixToEuler(q.Normalize().Mat4())
}

func matrixToEuler(m mgl32.Mat4) mgl32.Vec3 {
	m11, m12, m13 := float64(m.At(0, 0)), float64(m.At(0, 1)), float64(m.At(0, 2))
	m22, m23 := float64(m.At(1, 1)), float64(m.At(1, 2))
	m32, m33 := float64(m.At(2, 1)), float64(m.At(2, 2))

	y := math.Asin(math.Max(-1, math.Min(1, m13)))
	var x, z float64
	if math.Abs(m13) < 0.9999999 {
		x = math.Atan2(-m23, m33)
		z = math.Atan2(-m12, m11)
	} else {
		x = math.Atan2(m32, m22)
		z = 0
	}
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}
