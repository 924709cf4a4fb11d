package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaterial provides a basic material to fall back on
var DefaultMaterial = &Material{
	Name:         "default",
	DiffuseColor: [3]float32{0.8, 0.8, 0.8},
	Alpha:        1.0,
}

type Material struct {
	DiffuseColor [3]float32 // Base color used by the rasterizer
	Alpha        float32    // Transparency (0.0 = transparent, 1.0 = opaque)
	Name         string     // Material name for debugging
}

// Mesh is the drawable and pickable geometry attached to a Node, in the
// node's local space.
type Mesh struct {
	Vertices   []float32 // Vertex position data, xyz triples
	Faces      []int32   // Triangle indices into Vertices
	Material   *Material
	SourcePath string // Original file path, empty for generated meshes

	bounds      AABB
	boundsValid bool
}

func CreateMesh(vertices []mgl32.Vec3, indices []int32) *Mesh {
	m := &Mesh{
		Vertices: flattenVertices(vertices),
		Faces:    indices,
	}
	m.ensureMaterial()
	return m
}

// CreateBox builds an axis-aligned box mesh centered on the origin.
func CreateBox(width, height, depth float32) *Mesh {
	hx, hy, hz := width/2, height/2, depth/2
	vertices := []mgl32.Vec3{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	indices := []int32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 1, 5, 0, 5, 4, // bottom
		3, 6, 2, 3, 7, 6, // top
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}
	return CreateMesh(vertices, indices)
}

func (m *Mesh) ensureMaterial() {
	if m.Material == nil {
		mat := *DefaultMaterial
		m.Material = &mat
	}
}

// Vertex returns the i-th vertex position.
func (m *Mesh) Vertex(i int32) mgl32.Vec3 {
	o := int(i) * 3
	return mgl32.Vec3{m.Vertices[o], m.Vertices[o+1], m.Vertices[o+2]}
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m *Mesh) TriangleCount() int {
	return len(m.Faces) / 3
}

// Triangle returns the corners of the i-th triangle. Out of range indices
// yield ok == false.
func (m *Mesh) Triangle(i int) (v0, v1, v2 mgl32.Vec3, ok bool) {
	n := int32(m.VertexCount())
	a, b, c := m.Faces[i*3], m.Faces[i*3+1], m.Faces[i*3+2]
	if a < 0 || b < 0 || c < 0 || a >= n || b >= n || c >= n {
		return v0, v1, v2, false
	}
	return m.Vertex(a), m.Vertex(b), m.Vertex(c), true
}

// Bounds returns the local-space bounding box, cached after the first call.
func (m *Mesh) Bounds() AABB {
	if m.boundsValid {
		return m.bounds
	}
	b := EmptyAABB()
	for i := 0; i < m.VertexCount(); i++ {
		b.ExtendPoint(m.Vertex(int32(i)))
	}
	m.bounds = b
	m.boundsValid = true
	return b
}

// InvalidateBounds must be called after Vertices is edited in place.
func (m *Mesh) InvalidateBounds() {
	m.boundsValid = false
}

func flattenVertices(vertices []mgl32.Vec3) []float32 {
	flattened := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		flattened = append(flattened, v.X(), v.Y(), v.Z())
	}
	return flattened
}
