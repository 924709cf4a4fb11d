package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ClearColor is the background of rendered frames.
var ClearColor = color.RGBA{R: 235, G: 235, B: 240, A: 255}

// LightDirection is the direction towards the key light, used for flat shading.
var LightDirection = mgl32.Vec3{-0.3, 0.8, 0.5}.Normalize()

const ambient = 0.35

// FrameBuffer holds a color target and a depth buffer.
type FrameBuffer struct {
	Width  int
	Height int
	Color  *image.RGBA
	ZBuf   []float32 // NDC depth per pixel, initialised to +inf
}

func NewFrameBuffer(w, h int) *FrameBuffer {
	w, h = max(w, 0), max(h, 0)
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  image.NewRGBA(image.Rect(0, 0, w, h)),
		ZBuf:   make([]float32, w*h),
	}
	for i := range fb.ZBuf {
		fb.ZBuf[i] = float32(math.Inf(1))
	}
	for i := 0; i < len(fb.Color.Pix); i += 4 {
		fb.Color.Pix[i] = ClearColor.R
		fb.Color.Pix[i+1] = ClearColor.G
		fb.Color.Pix[i+2] = ClearColor.B
		fb.Color.Pix[i+3] = ClearColor.A
	}
	return fb
}

// RenderFrame draws every visible mesh in the scene from the camera into a new
// image. Triangles with a vertex behind the camera are skipped.
func RenderFrame(scene *Scene, camera *Camera, width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	fb := NewFrameBuffer(width, height)
	vp := camera.GetViewProjection()

	var draw func(n *Node)
	draw = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			rasterizeMesh(fb, n.Mesh, n.WorldMatrix(), vp)
		}
		for _, c := range n.children {
			draw(c)
		}
	}
	draw(scene.Root)

	return fb.Color
}

func rasterizeMesh(fb *FrameBuffer, mesh *Mesh, world, vp mgl32.Mat4) {
	mesh.ensureMaterial()
	mvp := vp.Mul4(world)
	base := mesh.Material.DiffuseColor

	for i := 0; i < mesh.TriangleCount(); i++ {
		v0, v1, v2, ok := mesh.Triangle(i)
		if !ok {
			continue
		}

		// Face normal for flat shading
		w0 := mgl32.TransformCoordinate(v0, world)
		w1 := mgl32.TransformCoordinate(v1, world)
		w2 := mgl32.TransformCoordinate(v2, world)
		normal := w1.Sub(w0).Cross(w2.Sub(w0))
		if normal.Len() < 1e-8 {
			continue
		}
		ndl := float32(math.Abs(float64(normal.Normalize().Dot(LightDirection))))
		shade := ambient + (1-ambient)*ndl

		var sx, sy, sz [3]float32
		visible := true
		for k, v := range [3]mgl32.Vec3{v0, v1, v2} {
			clip := mvp.Mul4x1(v.Vec4(1))
			if clip.W() <= 0 {
				visible = false
				break
			}
			sx[k] = (clip.X()/clip.W() + 1) * 0.5 * float32(fb.Width)
			sy[k] = (1 - clip.Y()/clip.W()) * 0.5 * float32(fb.Height)
			sz[k] = clip.Z() / clip.W()
		}
		if !visible {
			continue
		}

		c := color.RGBA{
			R: clamp255(base[0] * shade * 255),
			G: clamp255(base[1] * shade * 255),
			B: clamp255(base[2] * shade * 255),
			A: 255,
		}
		rasterizeTriangle(fb, sx, sy, sz, c)
	}
}

func rasterizeTriangle(fb *FrameBuffer, x, y, z [3]float32, c color.RGBA) {
	minX := int(math.Floor(float64(min3(x[0], x[1], x[2]))))
	maxX := int(math.Ceil(float64(max3(x[0], x[1], x[2]))))
	minY := int(math.Floor(float64(min3(y[0], y[1], y[2]))))
	maxY := int(math.Ceil(float64(max3(y[0], y[1], y[2]))))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	det := (y[1]-y[2])*(x[0]-x[2]) + (x[2]-x[1])*(y[0]-y[2])
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	for py := minY; py <= maxY; py++ {
		fy := float32(py) + 0.5
		for px := minX; px <= maxX; px++ {
			fx := float32(px) + 0.5
			b0 := ((y[1]-y[2])*(fx-x[2]) + (x[2]-x[1])*(fy-y[2])) * invDet
			b1 := ((y[2]-y[0])*(fx-x[2]) + (x[0]-x[2])*(fy-y[2])) * invDet
			b2 := 1 - b0 - b1
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}
			depth := b0*z[0] + b1*z[1] + b2*z[2]
			idx := py*fb.Width + px
			if depth < -1 || depth >= fb.ZBuf[idx] {
				continue
			}
			fb.ZBuf[idx] = depth
			fb.Color.SetRGBA(px, py, c)
		}
	}
}

func clamp255(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func min3(a, b, c float32) float32 {
	return float32(math.Min(float64(a), math.Min(float64(b), float64(c))))
}

func max3(a, b, c float32) float32 {
	return float32(math.Max(float64(a), math.Max(float64(b), float64(c))))
}
