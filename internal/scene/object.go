package scene

import (
	"VanBuilder/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// PlacedObject is a piece of furniture the user dropped into the van. It owns
// the root node of the loaded model; the clickable meshes sit below it.
type PlacedObject struct {
	ID       uuid.UUID
	Category string
	Root     *renderer.Node
}

func NewPlacedObject(category string, root *renderer.Node) *PlacedObject {
	return &PlacedObject{
		ID:       uuid.New(),
		Category: category,
		Root:     root,
	}
}

// Transform is a snapshot of a PlacedObject's placement.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func (o *PlacedObject) Transform() Transform {
	return Transform{
		Position: o.Root.Position,
		Rotation: o.Root.Rotation,
		Scale:    o.Root.Scale,
	}
}

func (o *PlacedObject) SetTransform(t Transform) {
	o.Root.Position = t.Position
	o.Root.Rotation = t.Rotation
	o.Root.Scale = t.Scale
}

func (o *PlacedObject) Position() mgl32.Vec3 {
	return o.Root.Position
}

func (o *PlacedObject) SetPosition(p mgl32.Vec3) {
	o.Root.Position = p
}

// Bounds returns the world-space box of the object's geometry.
func (o *PlacedObject) Bounds() renderer.AABB {
	return renderer.BoundingBoxOf(o.Root)
}

// Owns reports whether n is the root or one of its descendants.
func (o *PlacedObject) Owns(n *renderer.Node) bool {
	return o.Root.IsAncestorOf(n)
}

// HitTest reports the nearest ray hit on any of the object's meshes.
func (o *PlacedObject) HitTest(ray renderer.Ray) (renderer.Intersection, bool) {
	hits := renderer.IntersectObject(ray, o.Root, true)
	if len(hits) == 0 {
		return renderer.Intersection{}, false
	}
	return hits[0], true
}
