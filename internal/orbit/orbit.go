// Package orbit implements an orbit camera around a target point.
package orbit

import (
	"math"

	"VanBuilder/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

type Controller struct {
	Camera      *renderer.Camera
	Target      mgl32.Vec3
	Enabled     bool
	MinDistance float32
	MaxDistance float32
}

func New(camera *renderer.Camera, target mgl32.Vec3) *Controller {
	c := &Controller{
		Camera:      camera,
		Target:      target,
		Enabled:     true,
		MinDistance: 0.5,
		MaxDistance: 50,
	}
	camera.LookAt(target)
	return c
}

// Rotate orbits the camera by azimuth and polar deltas in radians. It
// reports false while the controller is disabled.
func (c *Controller) Rotate(azimuth, polar float32) bool {
	if !c.Enabled {
		return false
	}
	offset := c.Camera.Position.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		return false
	}

	theta := math.Atan2(float64(offset.X()), float64(offset.Z())) + float64(azimuth)
	phi := math.Acos(clamp(float64(offset.Y()/radius), -1, 1)) + float64(polar)
	// Keep away from the poles so LookAt stays well defined
	phi = clamp(phi, 0.01, math.Pi-0.01)

	r := float64(radius)
	c.Camera.Position = c.Target.Add(mgl32.Vec3{
		float32(r * math.Sin(phi) * math.Sin(theta)),
		float32(r * math.Cos(phi)),
		float32(r * math.Sin(phi) * math.Cos(theta)),
	})
	c.Camera.LookAt(c.Target)
	return true
}

// Zoom scales the distance to the target by factor, within the limits.
func (c *Controller) Zoom(factor float32) bool {
	if !c.Enabled || factor <= 0 {
		return false
	}
	offset := c.Camera.Position.Sub(c.Target)
	dist := offset.Len() * factor
	dist = mgl32.Clamp(dist, c.MinDistance, c.MaxDistance)
	c.Camera.Position = c.Target.Add(offset.Normalize().Mul(dist))
	c.Camera.LookAt(c.Target)
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
