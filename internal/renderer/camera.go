// camera.go
package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Camera struct {
	Position   mgl32.Vec3 // Camera position in world space
	Rotation   mgl32.Vec3 // XYZ Euler angles in radians
	Projection mgl32.Mat4 // Projection matrix

	Fov         float32 // Field of view in degrees
	Near        float32 // Near clipping plane
	Far         float32 // Far clipping plane
	AspectRatio float32 // Width / height
}

func NewDefaultCamera(width int32, height int32) *Camera {
	if height <= 0 {
		height = 1
	}
	camera := Camera{
		Position:    mgl32.Vec3{0, 2, 6},
		Fov:         45.0,
		Near:        0.1,
		Far:         1000.0,
		AspectRatio: float32(width) / float32(height),
	}
	camera.UpdateProjection()
	return &camera
}

func (c *Camera) UpdateProjection() {
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.AspectRatio, c.Near, c.Far)
}

// Setter methods that automatically update projection
func (c *Camera) SetFov(fov float32) {
	c.Fov = fov
	c.UpdateProjection()
}

func (c *Camera) SetAspectRatio(aspectRatio float32) {
	c.AspectRatio = aspectRatio
	c.UpdateProjection()
}

// Orientation is the camera's rotation as a quaternion.
func (c *Camera) Orientation() mgl32.Quat {
	return EulerToQuat(c.Rotation)
}

// Front is the viewing direction; a camera looks down its local -Z.
func (c *Camera) Front() mgl32.Vec3 {
	return c.Orientation().Rotate(mgl32.Vec3{0, 0, -1})
}

func (c *Camera) Up() mgl32.Vec3 {
	return c.Orientation().Rotate(mgl32.Vec3{0, 1, 0})
}

// LookAt orients the camera towards target, keeping world Y as up.
func (c *Camera) LookAt(target mgl32.Vec3) {
	if target.ApproxEqual(c.Position) {
		return
	}
	view := mgl32.LookAtV(c.Position, target, mgl32.Vec3{0, 1, 0})
	// The camera's world rotation is the inverse (transpose) of the view rotation
	c.Rotation = matrixToEuler(view.Mat3().Transpose().Mat4())
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	world := mgl32.Translate3D(c.Position.X(), c.Position.Y(), c.Position.Z()).Mul4(c.Orientation().Mat4())
	return world.Inv()
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.GetViewMatrix())
}

// Project maps a world position to normalized device coordinates. Z is the
// NDC depth; ok is false when the point is behind the camera.
func (c *Camera) Project(world mgl32.Vec3) (ndc mgl32.Vec3, ok bool) {
	clip := c.GetViewProjection().Mul4x1(world.Vec4(1))
	if clip.W() <= 0 {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{clip.X() / clip.W(), clip.Y() / clip.W(), clip.Z() / clip.W()}, true
}
