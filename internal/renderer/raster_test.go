package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRenderFrameDrawsVisibleMesh(t *testing.T) {
	scene := NewScene()
	box := NewMeshNode("box", CreateBox(1, 1, 1))
	box.Mesh.Material.DiffuseColor = [3]float32{1, 0, 0}
	scene.Add(box)
	cam := NewDefaultCamera(64, 64)
	cam.Position = mgl32.Vec3{0, 0, 4}

	img := RenderFrame(scene, cam, 64, 64)

	center := img.RGBAAt(32, 32)
	if center == ClearColor {
		t.Error("Center pixel should be covered by the box")
	}
	if center.R <= center.G || center.R <= center.B {
		t.Errorf("Expected a red-dominant pixel, got %v", center)
	}
	if corner := img.RGBAAt(0, 0); corner != ClearColor {
		t.Errorf("Corner pixel should keep the clear color, got %v", corner)
	}
}

func TestRenderFrameSkipsHiddenNodes(t *testing.T) {
	scene := NewScene()
	box := NewMeshNode("box", CreateBox(1, 1, 1))
	box.Visible = false
	scene.Add(box)
	cam := NewDefaultCamera(32, 32)
	cam.Position = mgl32.Vec3{0, 0, 4}

	img := RenderFrame(scene, cam, 32, 32)

	if img.RGBAAt(16, 16) != ClearColor {
		t.Error("Hidden node should not be drawn")
	}
}

func TestRenderFrameWithoutViewport(t *testing.T) {
	scene := NewScene()
	scene.Add(NewMeshNode("box", CreateBox(1, 1, 1)))
	cam := NewDefaultCamera(32, 32)

	if img := RenderFrame(scene, cam, 0, 32); img != nil {
		t.Errorf("Expected no frame for a zero width, got %v", img.Bounds())
	}
	if img := RenderFrame(scene, cam, -4, -4); img != nil {
		t.Errorf("Expected no frame for negative sizes, got %v", img.Bounds())
	}
	if fb := NewFrameBuffer(-1, 8); fb.Width != 0 || len(fb.ZBuf) != 0 {
		t.Errorf("Expected an empty buffer, got %dx%d", fb.Width, fb.Height)
	}
}
