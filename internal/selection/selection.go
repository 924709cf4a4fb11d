// Package selection keeps the gizmo, the selected object and the info panel
// in agreement.
package selection

import (
	"math"

	"VanBuilder/internal/catalog"
	"VanBuilder/internal/gizmo"
	"VanBuilder/internal/logger"
	"VanBuilder/internal/orbit"
	"VanBuilder/internal/renderer"
	"VanBuilder/internal/scene"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	Selected
)

func (s State) String() string {
	if s == Selected {
		return "selected"
	}
	return "idle"
}

// PanelInfo is what the info panel shows for the selected object.
type PanelInfo struct {
	ID       uuid.UUID
	Category string
	Label    string
	Image    string
}

// Dimensions of the selected object's world box, in metres rounded to
// two decimals. Length is along X, height along Y and width along Z.
type Dimensions struct {
	Length float32
	Height float32
	Width  float32
}

func DimensionsOf(box renderer.AABB) Dimensions {
	if box.IsEmpty() {
		return Dimensions{}
	}
	size := box.Size()
	return Dimensions{
		Length: round2(size.X()),
		Height: round2(size.Y()),
		Width:  round2(size.Z()),
	}
}

func round2(v float32) float32 {
	return float32(math.Round(float64(v)*100) / 100)
}

// Listener receives UI updates. SelectionChanged gets nil when nothing is
// selected; delete is available exactly when info is non-nil.
type Listener interface {
	SelectionChanged(info *PanelInfo)
	DimensionsUpdated(d Dimensions)
}

type nopListener struct{}

func (nopListener) SelectionChanged(*PanelInfo) {}
func (nopListener) DimensionsUpdated(Dimensions) {}

type Controller struct {
	registry *scene.Registry
	catalog  *catalog.Catalog
	gizmo    *gizmo.Gizmo
	listener Listener

	selected *scene.PlacedObject
}

// New wires the controller to the gizmo and registry. The orbit controller
// is disabled while the gizmo is being dragged; it may be nil.
func New(reg *scene.Registry, cat *catalog.Catalog, g *gizmo.Gizmo, orb *orbit.Controller, l Listener) *Controller {
	if l == nil {
		l = nopListener{}
	}
	c := &Controller{
		registry: reg,
		catalog:  cat,
		gizmo:    g,
		listener: l,
	}

	if orb != nil {
		g.OnDraggingChanged(func(dragging bool) {
			orb.Enabled = !dragging
		})
	}
	reg.OnChange(func(kind scene.ChangeKind, obj *scene.PlacedObject) {
		switch kind {
		case scene.Removed:
			if obj == c.selected {
				c.Clear()
			}
		case scene.Cleared:
			c.Clear()
		}
	})
	return c
}

func (c *Controller) State() State {
	if c.selected == nil {
		return Idle
	}
	return Selected
}

func (c *Controller) Selected() *scene.PlacedObject {
	return c.selected
}

func (c *Controller) CanDelete() bool {
	return c.selected != nil
}

// Select makes obj the selection, attaching the gizmo and refreshing the
// panel. A nil obj is the same as Clear.
func (c *Controller) Select(obj *scene.PlacedObject) {
	if obj == nil {
		c.Clear()
		return
	}
	if c.registry.Find(obj.ID) != obj {
		logger.Log.Warn("Ignoring selection of unregistered object", zap.Stringer("id", obj.ID))
		return
	}

	c.selected = obj
	c.gizmo.Attach(obj.Root)

	info := &PanelInfo{ID: obj.ID, Category: obj.Category, Label: obj.Category}
	if entry, err := c.catalog.Lookup(obj.Category); err == nil {
		info.Label = entry.Label
		info.Image = entry.Image
	}
	c.listener.SelectionChanged(info)
	c.RefreshDimensions()
}

// Clear detaches the gizmo and hides the panel.
func (c *Controller) Clear() {
	c.gizmo.Detach()
	if c.selected == nil {
		return
	}
	c.selected = nil
	c.listener.SelectionChanged(nil)
}

// RefreshDimensions recomputes the selected object's dimensions and pushes
// them to the listener.
func (c *Controller) RefreshDimensions() {
	if c.selected == nil {
		return
	}
	c.listener.DimensionsUpdated(DimensionsOf(c.selected.Bounds()))
}

// SetMode only changes the gizmo mode; the selection is untouched.
func (c *Controller) SetMode(m gizmo.Mode) {
	c.gizmo.SetMode(m)
}

// Delete removes the selected object from the scene and registry. It
// reports false, changing nothing, when nothing is selected.
func (c *Controller) Delete() bool {
	obj := c.selected
	if obj == nil {
		return false
	}
	c.Clear()
	c.registry.Unregister(obj)
	logger.Log.Info("Object deleted", zap.Stringer("id", obj.ID), zap.String("category", obj.Category))
	return true
}
