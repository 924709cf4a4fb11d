package scene

import (
	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangeKind tells listeners what happened to the registry.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Cleared
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Cleared:
		return "cleared"
	}
	return "unknown"
}

// ChangeFunc is notified after every registry mutation. obj is nil for Cleared.
type ChangeFunc func(kind ChangeKind, obj *PlacedObject)

// Registry is the authoritative list of interactive objects. Every mutation
// updates the scene graph in the same call, so the two never diverge.
type Registry struct {
	scene     *renderer.Scene
	objects   []*PlacedObject
	byID      map[uuid.UUID]*PlacedObject
	listeners []ChangeFunc
}

func NewRegistry(s *renderer.Scene) *Registry {
	return &Registry{
		scene:   s,
		objects: make([]*PlacedObject, 0),
		byID:    make(map[uuid.UUID]*PlacedObject),
	}
}

// OnChange subscribes fn to registry changes.
func (r *Registry) OnChange(fn ChangeFunc) {
	r.listeners = append(r.listeners, fn)
}

// Register adds obj to the scene and to the registry. Registering an object
// twice is a no-op.
func (r *Registry) Register(obj *PlacedObject) {
	if obj == nil || obj.Root == nil {
		return
	}
	if _, exists := r.byID[obj.ID]; exists {
		return
	}
	r.scene.Add(obj.Root)
	r.objects = append(r.objects, obj)
	r.byID[obj.ID] = obj

	logger.Log.Debug("Object registered",
		zap.Stringer("id", obj.ID),
		zap.String("category", obj.Category),
		zap.Int("count", len(r.objects)))
	r.notify(Added, obj)
}

// Unregister removes obj's meshes and root from the scene and drops it from
// the registry. It reports whether obj was registered.
func (r *Registry) Unregister(obj *PlacedObject) bool {
	if obj == nil {
		return false
	}
	for i, o := range r.objects {
		if o == obj {
			r.objects = append(r.objects[:i], r.objects[i+1:]...)
			delete(r.byID, obj.ID)
			obj.Root.RemoveChildren()
			r.scene.Remove(obj.Root)

			logger.Log.Debug("Object unregistered",
				zap.Stringer("id", obj.ID),
				zap.Int("count", len(r.objects)))
			r.notify(Removed, obj)
			return true
		}
	}
	return false
}

func (r *Registry) Find(id uuid.UUID) *PlacedObject {
	return r.byID[id]
}

// OwnerOf maps any node (typically a hit mesh) to the registered object
// whose subtree contains it.
func (r *Registry) OwnerOf(n *renderer.Node) *PlacedObject {
	for p := n; p != nil; p = p.Parent() {
		for _, o := range r.objects {
			if o.Root == p {
				return o
			}
		}
	}
	return nil
}

// All returns registered objects in insertion order. The slice must not be
// modified.
func (r *Registry) All() []*PlacedObject {
	return r.objects
}

// Roots returns the root node of every registered object.
func (r *Registry) Roots() []*renderer.Node {
	roots := make([]*renderer.Node, len(r.objects))
	for i, o := range r.objects {
		roots[i] = o.Root
	}
	return roots
}

func (r *Registry) Len() int {
	return len(r.objects)
}

// Clear removes every object from the registry and the scene.
func (r *Registry) Clear() {
	for _, o := range r.objects {
		r.scene.Remove(o.Root)
	}
	r.objects = r.objects[:0]
	r.byID = make(map[uuid.UUID]*PlacedObject)
	r.notify(Cleared, nil)
}

func (r *Registry) notify(kind ChangeKind, obj *PlacedObject) {
	for _, fn := range r.listeners {
		fn(kind, obj)
	}
}
