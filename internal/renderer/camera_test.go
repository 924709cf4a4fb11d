package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewDefaultCamera(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	if cam == nil {
		t.Fatal("NewDefaultCamera returned nil")
	}

	if cam.Position == (mgl32.Vec3{0, 0, 0}) {
		t.Error("Camera position should not be at origin")
	}

	if math.Abs(float64(cam.AspectRatio)-800.0/600.0) > 1e-6 {
		t.Errorf("Expected aspect ratio %f, got %f", 800.0/600.0, cam.AspectRatio)
	}
}

func TestCameraGetProjectionMatrix(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	proj := cam.GetProjectionMatrix()

	if proj.At(3, 3) != 0.0 {
		t.Error("Perspective projection should have w=0 at (3,3)")
	}
}

func TestCameraFrontDefaultsToNegativeZ(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	front := cam.Front()

	if !front.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("Expected front (0,0,-1), got %v", front)
	}
}

func TestCameraProjectCenter(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{0, 0, 5}

	ndc, ok := cam.Project(mgl32.Vec3{0, 0, 0})

	if !ok {
		t.Fatal("Point in front of the camera should project")
	}
	if math.Abs(float64(ndc.X())) > 1e-5 || math.Abs(float64(ndc.Y())) > 1e-5 {
		t.Errorf("Expected projection at the center, got %v", ndc)
	}
}

func TestCameraProjectBehind(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{0, 0, 5}

	if _, ok := cam.Project(mgl32.Vec3{0, 0, 10}); ok {
		t.Error("Point behind the camera should not project")
	}
}

func TestCameraLookAt(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{4, 3, 4}
	target := mgl32.Vec3{1, 1, 1}

	cam.LookAt(target)

	want := target.Sub(cam.Position).Normalize()
	if !cam.Front().ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("Expected front %v, got %v", want, cam.Front())
	}
	ndc, ok := cam.Project(target)
	if !ok || math.Abs(float64(ndc.X())) > 1e-4 || math.Abs(float64(ndc.Y())) > 1e-4 {
		t.Errorf("Target should project to the center, got %v (ok=%v)", ndc, ok)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	angles := mgl32.Vec3{0.3, -0.7, 1.1}

	got := QuatToEuler(EulerToQuat(angles))

	if !got.ApproxEqualThreshold(angles, 1e-4) {
		t.Errorf("Expected %v, got %v", angles, got)
	}
}
