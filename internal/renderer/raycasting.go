package renderer

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Intersection is one ray hit against a mesh node.
type Intersection struct {
	Distance float32
	Point    mgl32.Vec3
	Node     *Node // The node owning the hit mesh
	Face     int   // Triangle index within the mesh
}

// RayIntersectTriangle tests if a ray intersects a triangle from either side.
// Returns: (intersected, distance, intersection point)
// Uses Möller-Trumbore algorithm
func RayIntersectTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return false, 0, mgl32.Vec3{} // Ray is parallel to triangle
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	t := f * edge2.Dot(q)

	if t > epsilon {
		return true, t, ray.At(t)
	}

	return false, 0, mgl32.Vec3{} // Line intersection but not ray intersection
}

// RayIntersectAABB is the slab test. The returned distance is the entry
// point, or the exit point when the ray starts inside the box.
func RayIntersectAABB(ray Ray, box AABB) (bool, float32) {
	if box.IsEmpty() {
		return false, 0
	}
	tmin := float32(-math.MaxFloat32)
	tmax := float32(math.MaxFloat32)

	for i := 0; i < 3; i++ {
		if ray.Direction[i] == 0 {
			if ray.Origin[i] < box.Min[i] || ray.Origin[i] > box.Max[i] {
				return false, 0
			}
			continue
		}
		t1 := (box.Min[i] - ray.Origin[i]) / ray.Direction[i]
		t2 := (box.Max[i] - ray.Origin[i]) / ray.Direction[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return false, 0
	}
	if tmin < 0 {
		return true, tmax
	}
	return true, tmin
}

// NDCToRay builds a world space ray from the camera through a point in
// normalized device coordinates ([-1,1] on both axes, +Y up).
func NDCToRay(camera *Camera, ndc mgl32.Vec2) Ray {
	invViewProj := camera.GetViewProjection().Inv()

	near := mgl32.TransformCoordinate(mgl32.Vec3{ndc.X(), ndc.Y(), -1}, invViewProj)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndc.X(), ndc.Y(), 1}, invViewProj)

	return Ray{
		Origin:    camera.Position,
		Direction: far.Sub(near).Normalize(),
	}
}

// ScreenToNDC converts a pixel position (origin top-left) to NDC.
func ScreenToNDC(screenX, screenY float32, windowWidth, windowHeight int) mgl32.Vec2 {
	return mgl32.Vec2{
		2.0*screenX/float32(windowWidth) - 1.0,
		1.0 - 2.0*screenY/float32(windowHeight),
	}
}

// IntersectObject tests the ray against node's mesh and, when recursive,
// against every descendant mesh. Hits are sorted nearest first.
func IntersectObject(ray Ray, node *Node, recursive bool) []Intersection {
	var hits []Intersection
	intersectNode(ray, node, recursive, &hits)
	sortIntersections(hits)
	return hits
}

// IntersectObjects is the batched form of IntersectObject over several roots.
func IntersectObjects(ray Ray, nodes []*Node, recursive bool) []Intersection {
	var hits []Intersection
	for _, n := range nodes {
		intersectNode(ray, n, recursive, &hits)
	}
	sortIntersections(hits)
	return hits
}

func intersectNode(ray Ray, node *Node, recursive bool, hits *[]Intersection) {
	if node == nil || !node.Visible {
		return
	}
	if node.Mesh != nil && node.Mesh.TriangleCount() > 0 {
		intersectMesh(ray, node, hits)
	}
	if !recursive {
		return
	}
	for _, c := range node.children {
		intersectNode(ray, c, recursive, hits)
	}
}

func intersectMesh(ray Ray, node *Node, hits *[]Intersection) {
	world := node.WorldMatrix()
	if ok, _ := RayIntersectAABB(ray, node.Mesh.Bounds().Transform(world)); !ok {
		return
	}

	best := Intersection{Distance: float32(math.MaxFloat32), Face: -1}
	for i := 0; i < node.Mesh.TriangleCount(); i++ {
		v0, v1, v2, ok := node.Mesh.Triangle(i)
		if !ok {
			continue
		}
		v0 = mgl32.TransformCoordinate(v0, world)
		v1 = mgl32.TransformCoordinate(v1, world)
		v2 = mgl32.TransformCoordinate(v2, world)
		if hit, t, p := RayIntersectTriangle(ray, v0, v1, v2); hit && t < best.Distance {
			best = Intersection{Distance: t, Point: p, Node: node, Face: i}
		}
	}
	if best.Face >= 0 {
		*hits = append(*hits, best)
	}
}

func sortIntersections(hits []Intersection) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
}
