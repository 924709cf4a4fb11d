package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand"
	"time"

	"VanBuilder/internal/bounds"
	"VanBuilder/internal/catalog"
	"VanBuilder/internal/config"
	"VanBuilder/internal/gizmo"
	"VanBuilder/internal/loader"
	"VanBuilder/internal/logger"
	"VanBuilder/internal/navigation"
	"VanBuilder/internal/orbit"
	"VanBuilder/internal/persistence"
	"VanBuilder/internal/picking"
	"VanBuilder/internal/renderer"
	"VanBuilder/internal/scene"
	"VanBuilder/internal/selection"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var defaultOrbitTarget = mgl32.Vec3{0, 1, 0}

// Session owns one configurator: the scene, its camera and every controller
// acting on them. All methods must be called from the goroutine running the
// session (Run, or the caller of Tick); other goroutines go through Do.
type Session struct {
	Config    config.Config
	Scene     *renderer.Scene
	Camera    *renderer.Camera
	Registry  *scene.Registry
	Catalog   *catalog.Catalog
	Models    *loader.Async
	Picker    *picking.Picker
	Gizmo     *gizmo.Gizmo
	Orbit     *orbit.Controller
	Selection *selection.Controller
	Clamper   *bounds.Clamper
	Store     persistence.Store

	clicks  picking.ClickTracker
	van     *renderer.Node
	vanType string
	// generation is bumped on reset so loads issued before it are dropped
	generation int
	// unclamped holds new objects placed before any van planes existed
	unclamped map[*scene.PlacedObject]struct{}
	tasks     chan func()
	rng       *rand.Rand
}

func NewSession(cfg config.Config, store persistence.Store, cat *catalog.Catalog, ui selection.Listener) *Session {
	s := &Session{
		Config:  cfg,
		Scene:   renderer.NewScene(),
		Camera:  renderer.NewDefaultCamera(int32(cfg.ViewportWidth), int32(cfg.ViewportHeight)),
		Catalog: cat,
		Models:  loader.NewAsync(cfg.LoaderWorkers, nil),
		Gizmo:   gizmo.New(),
		Clamper: bounds.NewClamper(cfg.ClampMargin),
		Store:   store,

		unclamped: make(map[*scene.PlacedObject]struct{}),
		tasks:     make(chan func(), 64),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.Registry = scene.NewRegistry(s.Scene)
	s.Picker = picking.NewPicker(s.Camera, s.Registry)
	s.Orbit = orbit.New(s.Camera, defaultOrbitTarget)
	s.Selection = selection.New(s.Registry, cat, s.Gizmo, s.Orbit, ui)
	s.Gizmo.OnChange(s.onGizmoChange)

	logger.Log.Info("Session created",
		zap.Int("workers", cfg.LoaderWorkers),
		zap.Float32("clampMargin", cfg.ClampMargin))
	return s
}

// onGizmoChange keeps a translated object inside the van and refreshes the
// panel dimensions.
func (s *Session) onGizmoChange() {
	obj := s.Selection.Selected()
	if obj == nil {
		return
	}
	if s.Gizmo.Mode() == gizmo.Translate {
		if _, err := s.Clamper.Clamp(obj); err != nil {
			logger.Log.Debug("Clamp skipped", zap.Error(err))
			return
		}
	}
	s.Selection.RefreshDimensions()
}

// PointerDown records where a press started.
func (s *Session) PointerDown(ndc mgl32.Vec2) {
	s.clicks.Down(ndc)
}

// PointerUp picks under the pointer when the release completes a click.
// Drags (orbit gestures) leave the selection alone.
func (s *Session) PointerUp(ndc mgl32.Vec2) {
	p, click := s.clicks.Up(ndc)
	if !click {
		return
	}
	s.Selection.Select(s.Picker.Pick(p))
}

// KeyPressed handles the w/e/r gizmo mode shortcuts. It reports whether the
// key was used.
func (s *Session) KeyPressed(key string) bool {
	m, err := gizmo.ParseMode(key)
	if err != nil {
		return false
	}
	s.Selection.SetMode(m)
	return true
}

func (s *Session) BeginDrag() bool {
	return s.Gizmo.BeginDrag()
}

func (s *Session) Drag(axis gizmo.Axis, amount float32) {
	s.Gizmo.Drag(axis, amount)
}

func (s *Session) EndDrag() {
	s.Gizmo.EndDrag()
}

// Delete removes the selected object. Without a selection it does nothing.
func (s *Session) Delete() bool {
	return s.Selection.Delete()
}

// AddFromCatalog loads a model of the given category. Fixed entries go to
// their drop position, the rest to a random spot near the centre.
func (s *Session) AddFromCatalog(category string) error {
	entry, err := s.Catalog.Lookup(category)
	if err != nil {
		return err
	}

	pos := mgl32.Vec3(entry.DropPosition)
	if !entry.Fixed {
		r := s.Config.DropRadius
		pos = mgl32.Vec3{
			(s.rng.Float32()*2 - 1) * r,
			0,
			(s.rng.Float32()*2 - 1) * r,
		}
	}
	s.spawn(entry, uuid.New(), scene.Transform{
		Position: pos,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}, true)
	return nil
}

// Spawn loads entry's model in the background and registers it on
// completion with exactly the given identity and transform. Restored
// objects come back through here and are never clamped.
func (s *Session) Spawn(entry catalog.Entry, id uuid.UUID, t scene.Transform) {
	s.spawn(entry, id, t, false)
}

// spawn with clamp set keeps a newly dropped object inside the van, or
// remembers it for the next van load when no planes exist yet.
func (s *Session) spawn(entry catalog.Entry, id uuid.UUID, t scene.Transform, clamp bool) {
	gen := s.generation
	s.Models.Load(entry.Model, func(root *renderer.Node, err error) {
		if gen != s.generation {
			logger.Log.Debug("Dropping load from a previous session", zap.String("path", entry.Model))
			return
		}
		if err != nil {
			logger.Log.Warn("Could not place object",
				zap.String("category", entry.Category),
				zap.Error(err))
			return
		}
		obj := scene.NewPlacedObject(entry.Category, root)
		obj.ID = id
		obj.SetTransform(t)
		if clamp {
			_, err := s.Clamper.Clamp(obj)
			if errors.Is(err, bounds.ErrMissingReferenceGeometry) {
				s.unclamped[obj] = struct{}{}
			} else if err != nil {
				logger.Log.Warn("Clamp failed", zap.Error(err))
			}
		}
		s.Registry.Register(obj)
	})
}

// LoadVan stores the van class and loads its model. Once loaded it
// replaces the previous van, the reference planes are recomputed and the
// objects dropped while no van was loaded are clamped.
func (s *Session) LoadVan(vanType string) error {
	if !navigation.ValidVanType(vanType) {
		return fmt.Errorf("unknown van type %q", vanType)
	}
	if err := s.Store.Set(persistence.KeyVanType, vanType); err != nil {
		return err
	}
	s.vanType = vanType

	path := s.Config.VanModel(vanType)
	s.Models.Load(path, func(root *renderer.Node, err error) {
		// A newer LoadVan call wins
		if s.vanType != vanType {
			return
		}
		if err != nil {
			logger.Log.Error("Failed to load van", zap.String("path", path), zap.Error(err))
			return
		}
		if s.van != nil {
			s.Scene.Remove(s.van)
		}
		s.van = root
		s.Scene.Add(root)
		s.Orbit.Target = renderer.BoundingBoxOf(root).Center()

		if err := s.Clamper.Refresh(root); err != nil {
			logger.Log.Warn("Van has no usable reference planes", zap.String("path", path), zap.Error(err))
			return
		}
		moved := s.clampUnplaced()
		s.Selection.RefreshDimensions()
		logger.Log.Info("Van loaded", zap.String("type", vanType), zap.Int("clamped", moved))
	})
	return nil
}

func (s *Session) clampUnplaced() int {
	moved := 0
	for obj := range s.unclamped {
		if s.Registry.Find(obj.ID) != obj {
			continue
		}
		if ok, _ := s.Clamper.Clamp(obj); ok {
			moved++
		}
	}
	clear(s.unclamped)
	return moved
}

// ClampAll forces every registered object inside the van.
func (s *Session) ClampAll() (int, error) {
	moved, err := s.Clamper.ClampAll(s.Registry)
	if err == nil {
		s.Selection.RefreshDimensions()
	}
	return moved, err
}

func (s *Session) Van() *renderer.Node {
	return s.van
}

func (s *Session) VanType() string {
	return s.vanType
}

// Save writes the camera and placed objects to the store.
func (s *Session) Save() error {
	return persistence.Save(s.Store, s.Camera, s.Registry)
}

// Restore replaces the current objects with the saved ones. Objects come
// back as their models finish loading.
func (s *Session) Restore() error {
	snap, err := persistence.Load(s.Store)
	if err != nil && !errors.Is(err, persistence.ErrMalformedState) {
		return err
	}
	if err != nil {
		logger.Log.Warn("Saved scene ignored", zap.Error(err))
	}

	s.generation++
	s.Registry.Clear()
	clear(s.unclamped)
	snap.Camera.Apply(s.Camera)
	n := persistence.Restore(snap, s.Catalog, s)
	logger.Log.Info("Scene restore started", zap.Int("objects", n))
	return nil
}

// Reset wipes the store except the van type and empties the scene.
func (s *Session) Reset() error {
	vanType := persistence.VanType(s.Store)
	if err := persistence.Reset(s.Store, vanType); err != nil {
		return err
	}
	s.generation++
	s.Registry.Clear()
	clear(s.unclamped)

	def := renderer.NewDefaultCamera(int32(s.Config.ViewportWidth), int32(s.Config.ViewportHeight))
	s.Camera.Position = def.Position
	s.Camera.LookAt(s.Orbit.Target)
	logger.Log.Info("Session reset", zap.String("vanType", vanType))
	return nil
}

// Export renders the current view into path (.webp or .png). Unsupported
// exports are dropped silently.
func (s *Session) Export(path string) error {
	var frame image.Image
	if img := renderer.RenderFrame(s.Scene, s.Camera, s.Config.ViewportWidth, s.Config.ViewportHeight); img != nil {
		frame = img
	}
	err := persistence.ExportFrame(path, frame, s.Config.ExportWidth)
	if errors.Is(err, persistence.ErrExportUnsupported) {
		logger.Log.Debug("Export aborted", zap.String("path", path), zap.Error(err))
		return nil
	}
	return err
}

// DumpSceneGraph writes the scene graph for diagnostics.
func (s *Session) DumpSceneGraph(w io.Writer) error {
	return persistence.DumpSceneGraph(w, s.Scene)
}

// Route is where "continue" leads for the stored van type.
func (s *Session) Route() navigation.Page {
	return navigation.Route(persistence.VanType(s.Store))
}

// Do queues fn to run on the session goroutine.
func (s *Session) Do(fn func()) {
	s.tasks <- fn
}

// Tick runs queued tasks and applies finished loads without blocking. It
// returns the number of completions applied.
func (s *Session) Tick() int {
	for idle := false; !idle; {
		select {
		case fn := <-s.tasks:
			fn()
		default:
			idle = true
		}
	}
	return s.Models.Drain()
}

// Run processes tasks and load completions until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.tasks:
			fn()
		case c := <-s.Models.Completed():
			c.Apply()
		}
	}
}

// Close waits for in-flight loads and stops the loader pool.
func (s *Session) Close() {
	s.Models.Close()
}
