// Package bounds keeps placed objects inside the van interior.
package bounds

import (
	"errors"
	"fmt"

	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"
	"VanBuilder/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrMissingReferenceGeometry is returned while the van model, or one of its
// reference sub-meshes, is not available.
var ErrMissingReferenceGeometry = errors.New("missing reference geometry")

// Names of the van sub-meshes that bound the interior.
const (
	Back  = "back"
	Floor = "floor"
	Truck = "truck"
	Side  = "side"
	Top   = "top"
	Front = "front"
)

var planeNames = [...]string{Back, Floor, Truck, Side, Top, Front}

// shifts smaller than this are float noise from a previous clamp
const epsilon = 1e-5

// ReferencePlanes holds the world boxes of the six reference sub-meshes.
type ReferencePlanes map[string]renderer.AABB

// PlanesFromVan looks up every reference sub-mesh below van by name.
func PlanesFromVan(van *renderer.Node) (ReferencePlanes, error) {
	if van == nil {
		return nil, fmt.Errorf("%w: van not loaded", ErrMissingReferenceGeometry)
	}
	planes := make(ReferencePlanes, len(planeNames))
	for _, name := range planeNames {
		n := van.FindByName(name)
		if n == nil {
			return nil, fmt.Errorf("%w: no %q mesh", ErrMissingReferenceGeometry, name)
		}
		box := renderer.BoundingBoxOf(n)
		if box.IsEmpty() {
			return nil, fmt.Errorf("%w: %q mesh has no geometry", ErrMissingReferenceGeometry, name)
		}
		planes[name] = box
	}
	return planes, nil
}

// Envelope is the box the objects must stay in, shrunk on every side by margin.
//
//	X in [back.max.x, front.min.x]
//	Y in [floor.max.y, top.min.y]
//	Z in [side.max.z, truck.min.z]
func (p ReferencePlanes) Envelope(margin float32) renderer.AABB {
	m := mgl32.Vec3{margin, margin, margin}
	return renderer.NewAABB(
		mgl32.Vec3{p[Back].Max.X(), p[Floor].Max.Y(), p[Side].Max.Z()}.Add(m),
		mgl32.Vec3{p[Front].Min.X(), p[Top].Min.Y(), p[Truck].Min.Z()}.Sub(m),
	)
}

type Clamper struct {
	Margin float32

	planes ReferencePlanes
}

func NewClamper(margin float32) *Clamper {
	return &Clamper{Margin: margin}
}

// Refresh recomputes the reference planes from the van model. On error the
// clamper is left without planes and Clamp fails until the next Refresh.
func (c *Clamper) Refresh(van *renderer.Node) error {
	planes, err := PlanesFromVan(van)
	if err != nil {
		c.planes = nil
		return err
	}
	c.planes = planes
	logger.Log.Debug("Reference planes refreshed", zap.Int("planes", len(planes)))
	return nil
}

func (c *Clamper) Ready() bool {
	return c.planes != nil
}

// Envelope returns the current clamp envelope.
func (c *Clamper) Envelope() (renderer.AABB, error) {
	if c.planes == nil {
		return renderer.AABB{}, ErrMissingReferenceGeometry
	}
	return c.planes.Envelope(c.Margin), nil
}

// Clamp moves obj back inside the envelope, one shift per axis. An object
// larger than the envelope on an axis is aligned with the minimum face.
// It reports whether obj moved. Nothing is changed on error.
func (c *Clamper) Clamp(obj *scene.PlacedObject) (bool, error) {
	env, err := c.Envelope()
	if err != nil {
		return false, err
	}
	if obj == nil {
		return false, nil
	}
	box := obj.Bounds()
	if box.IsEmpty() {
		return false, nil
	}

	shift := correction(box, env)
	if shift == (mgl32.Vec3{}) {
		return false, nil
	}
	obj.SetPosition(obj.Position().Add(shift))
	return true, nil
}

// ClampAll clamps every registered object and returns how many moved.
func (c *Clamper) ClampAll(reg *scene.Registry) (int, error) {
	if c.planes == nil {
		return 0, ErrMissingReferenceGeometry
	}
	moved := 0
	for _, obj := range reg.All() {
		ok, err := c.Clamp(obj)
		if err != nil {
			return moved, err
		}
		if ok {
			moved++
		}
	}
	return moved, nil
}

func correction(box, env renderer.AABB) mgl32.Vec3 {
	var shift mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		lo, hi := env.Min[axis], env.Max[axis]
		var d float32
		switch {
		case box.Max[axis]-box.Min[axis] > hi-lo:
			d = lo - box.Min[axis]
		case box.Min[axis] < lo:
			d = lo - box.Min[axis]
		case box.Max[axis] > hi:
			d = hi - box.Max[axis]
		}
		if d > epsilon || d < -epsilon {
			shift[axis] = d
		}
	}
	return shift
}
