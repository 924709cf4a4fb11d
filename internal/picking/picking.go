// Package picking resolves pointer positions to placed objects.
package picking

import (
	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"
	"VanBuilder/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ClickTracker tells clicks from drags: a pointer-up only counts as a click
// when it lands on exactly the pointer-down coordinate.
type ClickTracker struct {
	down    mgl32.Vec2
	pressed bool
}

func (c *ClickTracker) Down(p mgl32.Vec2) {
	c.down = p
	c.pressed = true
}

// Up ends the press. ok is true only for a bit-identical release position.
func (c *ClickTracker) Up(p mgl32.Vec2) (mgl32.Vec2, bool) {
	if !c.pressed {
		return p, false
	}
	c.pressed = false
	return p, p == c.down
}

// Picker casts rays from the camera into the registered objects.
type Picker struct {
	Camera   *renderer.Camera
	Registry *scene.Registry
}

func NewPicker(camera *renderer.Camera, registry *scene.Registry) *Picker {
	return &Picker{Camera: camera, Registry: registry}
}

// Pick returns the nearest object under ndc, or nil.
func (p *Picker) Pick(ndc mgl32.Vec2) *scene.PlacedObject {
	objects := p.Registry.All()
	if len(objects) == 0 {
		return nil
	}

	ray := renderer.NDCToRay(p.Camera, ndc)

	if len(objects) == 1 {
		if _, hit := objects[0].HitTest(ray); hit {
			return objects[0]
		}
		return nil
	}

	hits := renderer.IntersectObjects(ray, p.Registry.Roots(), true)
	if len(hits) == 0 {
		return nil
	}
	owner := p.Registry.OwnerOf(hits[0].Node)
	if owner == nil {
		logger.Log.Warn("Hit node has no registered owner", zap.String("node", hits[0].Node.Name))
	}
	return owner
}
