package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that any point will extend.
func EmptyAABB() AABB {
	return AABB{
		Min: mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

func NewAABB(min, max mgl32.Vec3) AABB {
	b := EmptyAABB()
	b.ExtendPoint(min)
	b.ExtendPoint(max)
	return b
}

func (b AABB) IsEmpty() bool {
	return b.Max.X() < b.Min.X() || b.Max.Y() < b.Min.Y() || b.Max.Z() < b.Min.Z()
}

func (b *AABB) ExtendPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

func (b *AABB) Union(other AABB) {
	if other.IsEmpty() {
		return
	}
	b.ExtendPoint(other.Min)
	b.ExtendPoint(other.Max)
}

func (b AABB) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) ContainsPoint(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// Transform returns the box enclosing all eight corners of b after m.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	out := EmptyAABB()
	if b.IsEmpty() {
		return out
	}
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min.X(), b.Min.Y(), b.Min.Z()}
		if i&1 != 0 {
			corner[0] = b.Max.X()
		}
		if i&2 != 0 {
			corner[1] = b.Max.Y()
		}
		if i&4 != 0 {
			corner[2] = b.Max.Z()
		}
		out.ExtendPoint(mgl32.TransformCoordinate(corner, m))
	}
	return out
}

// BoundingBoxOf computes the world-space box of every mesh in the subtree
// rooted at n. A subtree without geometry yields an empty box.
func BoundingBoxOf(n *Node) AABB {
	box := EmptyAABB()
	n.Traverse(func(node *Node) {
		if node.Mesh == nil || node.Mesh.VertexCount() == 0 {
			return
		}
		box.Union(node.Mesh.Bounds().Transform(node.WorldMatrix()))
	})
	return box
}
