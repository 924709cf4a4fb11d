// Package persistence saves and restores the configurator state through a
// string key-value store.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"VanBuilder/internal/catalog"
	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"
	"VanBuilder/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMalformedState is returned when stored scene data cannot be decoded.
var ErrMalformedState = errors.New("malformed persisted state")

const (
	KeyCameraPositionX = "camera.position.x"
	KeyCameraPositionY = "camera.position.y"
	KeyCameraPositionZ = "camera.position.z"
	KeyCameraRotationX = "camera.rotation.x"
	KeyCameraRotationY = "camera.rotation.y"
	KeyCameraRotationZ = "camera.rotation.z"
	KeySceneObjects    = "scene.objects"
	KeyVanType         = "vanType"
)

// SchemaVersion is written with every saved scene.
const SchemaVersion = 1

var cameraPositionKeys = [3]string{KeyCameraPositionX, KeyCameraPositionY, KeyCameraPositionZ}
var cameraRotationKeys = [3]string{KeyCameraRotationX, KeyCameraRotationY, KeyCameraRotationZ}

type PersistedScene struct {
	Version int               `json:"version"`
	Objects []PersistedObject `json:"objects"`
}

type PersistedObject struct {
	ID       string     `json:"id"`
	Category string     `json:"category"`
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"` // Quaternion w, x, y, z
	Scale    [3]float32 `json:"scale"`
}

func persistObject(o *scene.PlacedObject) PersistedObject {
	t := o.Transform()
	return PersistedObject{
		ID:       o.ID.String(),
		Category: o.Category,
		Position: t.Position,
		Rotation: [4]float32{t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2]},
		Scale:    t.Scale,
	}
}

// Transform validates the entry and converts it back to a transform.
func (p PersistedObject) Transform() (scene.Transform, error) {
	values := make([]float32, 0, 10)
	values = append(values, p.Position[:]...)
	values = append(values, p.Rotation[:]...)
	values = append(values, p.Scale[:]...)
	for _, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return scene.Transform{}, fmt.Errorf("%w: non-finite transform", ErrMalformedState)
		}
	}

	rot := mgl32.Quat{W: p.Rotation[0], V: mgl32.Vec3{p.Rotation[1], p.Rotation[2], p.Rotation[3]}}
	if rot.Len() < 1e-6 {
		return scene.Transform{}, fmt.Errorf("%w: zero rotation", ErrMalformedState)
	}
	if p.Scale[0] == 0 || p.Scale[1] == 0 || p.Scale[2] == 0 {
		return scene.Transform{}, fmt.Errorf("%w: zero scale", ErrMalformedState)
	}
	return scene.Transform{
		Position: p.Position,
		Rotation: rot.Normalize(),
		Scale:    p.Scale,
	}, nil
}

// CameraPose is the saved camera position and Euler rotation.
type CameraPose struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
}

func (c CameraPose) Apply(cam *renderer.Camera) {
	cam.Position = c.Position
	cam.Rotation = c.Rotation
}

// Snapshot is everything Load read back from a store.
type Snapshot struct {
	Camera  CameraPose
	Objects []PersistedObject
}

// Save writes the camera pose and every registered object.
func Save(store Store, cam *renderer.Camera, reg *scene.Registry) error {
	for i, key := range cameraPositionKeys {
		if err := store.Set(key, formatFloat(cam.Position[i])); err != nil {
			return fmt.Errorf("save camera: %w", err)
		}
	}
	for i, key := range cameraRotationKeys {
		if err := store.Set(key, formatFloat(cam.Rotation[i])); err != nil {
			return fmt.Errorf("save camera: %w", err)
		}
	}

	ps := PersistedScene{Version: SchemaVersion, Objects: make([]PersistedObject, 0, reg.Len())}
	for _, o := range reg.All() {
		ps.Objects = append(ps.Objects, persistObject(o))
	}
	data, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := store.Set(KeySceneObjects, string(data)); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}

	logger.Log.Info("Scene saved", zap.Int("objects", len(ps.Objects)))
	return nil
}

// Load reads the saved state. Missing keys give a zero camera and no
// objects; an undecodable scene entry returns ErrMalformedState together
// with the camera pose that could be read.
func Load(store Store) (*Snapshot, error) {
	snap := &Snapshot{}
	for i, key := range cameraPositionKeys {
		snap.Camera.Position[i] = readFloat(store, key)
	}
	for i, key := range cameraRotationKeys {
		snap.Camera.Rotation[i] = readFloat(store, key)
	}

	raw, ok, err := store.Get(KeySceneObjects)
	if err != nil {
		return snap, fmt.Errorf("load scene: %w", err)
	}
	if !ok || raw == "" {
		return snap, nil
	}

	var ps PersistedScene
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if ps.Version != SchemaVersion {
		return snap, fmt.Errorf("%w: unsupported version %d", ErrMalformedState, ps.Version)
	}
	snap.Objects = ps.Objects
	return snap, nil
}

// Spawner instantiates a catalog model with a known identity and transform.
// Instantiation may complete later; Restore does not wait for it.
type Spawner interface {
	Spawn(entry catalog.Entry, id uuid.UUID, t scene.Transform)
}

// Restore hands every valid snapshot entry to sp. Entries with an unknown
// category or a malformed transform are skipped with a warning, without
// affecting the others. It returns how many entries were spawned.
func Restore(snap *Snapshot, cat *catalog.Catalog, sp Spawner) int {
	spawned := 0
	for i, o := range snap.Objects {
		entry, err := cat.Lookup(o.Category)
		if err != nil {
			logger.Log.Warn("Skipping saved object", zap.Int("index", i), zap.Error(err))
			continue
		}
		t, err := o.Transform()
		if err != nil {
			logger.Log.Warn("Skipping saved object", zap.Int("index", i), zap.String("category", o.Category), zap.Error(err))
			continue
		}
		id, err := uuid.Parse(o.ID)
		if err != nil {
			id = uuid.New()
		}
		sp.Spawn(entry, id, t)
		spawned++
	}
	return spawned
}

// Reset wipes the store and keeps only the van type.
func Reset(store Store, vanType string) error {
	if err := store.Clear(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if vanType == "" {
		return nil
	}
	if err := store.Set(KeyVanType, vanType); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// VanType returns the stored van class, or "" when none is stored.
func VanType(store Store) string {
	v, ok, err := store.Get(KeyVanType)
	if err != nil || !ok {
		return ""
	}
	return v
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func readFloat(store Store, key string) float32 {
	raw, ok, err := store.Get(key)
	if err != nil || !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		logger.Log.Debug("Ignoring invalid camera value", zap.String("key", key), zap.String("value", raw))
		return 0
	}
	return float32(v)
}
