package persistence

import (
	"errors"
	"testing"

	"VanBuilder/internal/catalog"
	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"
	"VanBuilder/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testCatalog = catalog.New(
	catalog.Entry{Category: "bed", Label: "Bed", Model: "bed.obj"},
	catalog.Entry{Category: "seat", Label: "Seat", Model: "seat.obj"},
)

// syncSpawner registers a unit box for every spawn straight away.
type syncSpawner struct {
	reg *scene.Registry
}

func (s syncSpawner) Spawn(entry catalog.Entry, id uuid.UUID, t scene.Transform) {
	root := renderer.NewNode(entry.Category)
	root.Add(renderer.NewMeshNode("body", renderer.CreateBox(1, 1, 1)))
	obj := scene.NewPlacedObject(entry.Category, root)
	obj.ID = id
	obj.SetTransform(t)
	s.reg.Register(obj)
}

func place(reg *scene.Registry, category string, pos, euler, scale mgl32.Vec3) *scene.PlacedObject {
	root := renderer.NewNode(category)
	root.Add(renderer.NewMeshNode("body", renderer.CreateBox(1, 1, 1)))
	root.Position = pos
	root.SetRotationEuler(euler)
	root.Scale = scale
	obj := scene.NewPlacedObject(category, root)
	reg.Register(obj)
	return obj
}

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Use(zap.New(core))
	t.Cleanup(func() { logger.Use(prev) })
	return logs
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	reg := scene.NewRegistry(renderer.NewScene())
	a := place(reg, "bed", mgl32.Vec3{1.25, 0.3, -0.7}, mgl32.Vec3{0, 1.2, 0}, mgl32.Vec3{1, 1, 1})
	b := place(reg, "seat", mgl32.Vec3{-0.4, 0.1, 0.33}, mgl32.Vec3{0.1, -0.5, 0.2}, mgl32.Vec3{0.8, 1.1, 1})
	cam := renderer.NewDefaultCamera(800, 600)
	cam.Position = mgl32.Vec3{3.5, 2.25, -4.125}
	cam.Rotation = mgl32.Vec3{-0.3, 0.75, 0}

	require.NoError(t, Save(store, cam, reg))

	snap, err := Load(store)
	require.NoError(t, err)
	restored := scene.NewRegistry(renderer.NewScene())
	assert.Equal(t, 2, Restore(snap, testCatalog, syncSpawner{restored}))
	cam2 := renderer.NewDefaultCamera(800, 600)
	snap.Camera.Apply(cam2)

	assert.Equal(t, cam.Position, cam2.Position)
	assert.Equal(t, cam.Rotation, cam2.Rotation)
	require.Equal(t, 2, restored.Len())
	for _, orig := range []*scene.PlacedObject{a, b} {
		got := restored.Find(orig.ID)
		require.NotNil(t, got, "object %s not restored", orig.ID)
		assert.Equal(t, orig.Category, got.Category)
		want, have := orig.Transform(), got.Transform()
		assert.True(t, want.Position.ApproxEqualThreshold(have.Position, 1e-3))
		assert.True(t, want.Scale.ApproxEqualThreshold(have.Scale, 1e-3))
		assert.True(t, want.Rotation.ApproxEqualThreshold(have.Rotation, 1e-3))
	}
}

func TestSaveWritesOnlyCameraAndObjects(t *testing.T) {
	store := NewMemoryStore()
	reg := scene.NewRegistry(renderer.NewScene())
	place(reg, "bed", mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

	require.NoError(t, Save(store, renderer.NewDefaultCamera(800, 600), reg))

	assert.Equal(t, []string{
		KeyCameraPositionX, KeyCameraPositionY, KeyCameraPositionZ,
		KeyCameraRotationX, KeyCameraRotationY, KeyCameraRotationZ,
		KeySceneObjects,
	}, store.Keys())
}

func TestLoadEmptyStore(t *testing.T) {
	snap, err := Load(NewMemoryStore())

	require.NoError(t, err)
	assert.Empty(t, snap.Objects)
	assert.Equal(t, CameraPose{}, snap.Camera)
}

func TestLoadMalformedScene(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeySceneObjects, "{not json")
	store.Set(KeyCameraPositionY, "2.5")

	snap, err := Load(store)

	assert.True(t, errors.Is(err, ErrMalformedState), "got %v", err)
	assert.Equal(t, float32(2.5), snap.Camera.Position.Y())
	assert.Empty(t, snap.Objects)
}

func TestLoadUnsupportedVersion(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeySceneObjects, `{"version":7,"objects":[]}`)

	_, err := Load(store)

	assert.ErrorIs(t, err, ErrMalformedState)
}

func TestInvalidCameraValuesDefaultToZero(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeyCameraPositionX, "abc")
	store.Set(KeyCameraPositionZ, "NaN")
	store.Set(KeyCameraRotationY, "1.5")

	snap, err := Load(store)

	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, snap.Camera.Position)
	assert.Equal(t, mgl32.Vec3{0, 1.5, 0}, snap.Camera.Rotation)
}

func TestRestoreSkipsUnknownCategory(t *testing.T) {
	logs := observe(t)
	snap := &Snapshot{Objects: []PersistedObject{
		{ID: uuid.NewString(), Category: "hammock", Rotation: [4]float32{1, 0, 0, 0}, Scale: [3]float32{1, 1, 1}},
		{ID: uuid.NewString(), Category: "bed", Rotation: [4]float32{1, 0, 0, 0}, Scale: [3]float32{1, 1, 1}},
	}}
	reg := scene.NewRegistry(renderer.NewScene())

	n := Restore(snap, testCatalog, syncSpawner{reg})

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, "bed", reg.All()[0].Category)
	warnings := logs.FilterMessage("Skipping saved object").FilterLevelExact(zapcore.WarnLevel)
	assert.Equal(t, 1, warnings.Len())
}

func TestRestoreSkipsMalformedEntries(t *testing.T) {
	observe(t)
	snap := &Snapshot{Objects: []PersistedObject{
		{Category: "bed", Rotation: [4]float32{0, 0, 0, 0}, Scale: [3]float32{1, 1, 1}},
		{Category: "bed", Rotation: [4]float32{1, 0, 0, 0}, Scale: [3]float32{0, 1, 1}},
		{ID: "not-a-uuid", Category: "seat", Rotation: [4]float32{2, 0, 0, 0}, Scale: [3]float32{1, 1, 1}},
	}}
	reg := scene.NewRegistry(renderer.NewScene())

	n := Restore(snap, testCatalog, syncSpawner{reg})

	require.Equal(t, 1, n)
	obj := reg.All()[0]
	assert.NotEqual(t, uuid.Nil, obj.ID)
	assert.InDelta(t, 1, obj.Root.Rotation.Len(), 1e-6, "Rotation should be normalised")
}

func TestResetKeepsOnlyVanType(t *testing.T) {
	store := NewMemoryStore()
	reg := scene.NewRegistry(renderer.NewScene())
	place(reg, "bed", mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	store.Set(KeyVanType, "large")
	require.NoError(t, Save(store, renderer.NewDefaultCamera(800, 600), reg))

	require.NoError(t, Reset(store, VanType(store)))

	assert.Equal(t, []string{KeyVanType}, store.Keys())
	assert.Equal(t, "large", VanType(store))
	snap, err := Load(store)
	require.NoError(t, err)
	assert.Empty(t, snap.Objects)
}

func TestResetWithoutVanType(t *testing.T) {
	store := NewMemoryStore()
	store.Set("other", "x")

	require.NoError(t, Reset(store, ""))

	assert.Empty(t, store.Keys())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLiteStore(t.TempDir() + "/state/vanbuilder.db")
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(KeyVanType)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyVanType, "small"))
	require.NoError(t, s.Set(KeyVanType, "large"))
	require.NoError(t, s.Set(KeyCameraPositionX, "1.5"))
	v, ok, err := s.Get(KeyVanType)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "large", v)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyCameraPositionX, KeyVanType}, keys)

	require.NoError(t, Reset(s, "large"))
	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyVanType}, keys)
}
