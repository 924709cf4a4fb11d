package loader

import (
	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"
	"sync"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// CacheStats provides debugging and profiling information
type CacheStats struct {
	CachedModels int
	CacheHits    int
	CacheMisses  int
}

// ModelCache parses each model file once and hands out independent copies.
type ModelCache struct {
	models map[string]*renderer.Node // path -> parsed prototype
	mu     sync.Mutex
	stats  CacheStats
	load   func(string) (*renderer.Node, error)
}

func NewModelCache() *ModelCache {
	return &ModelCache{
		models: make(map[string]*renderer.Node),
		load:   LoadModel,
	}
}

// Load returns a fresh copy of the model at path, parsing it on first use.
func (c *ModelCache) Load(path string) (*renderer.Node, error) {
	c.mu.Lock()
	proto, ok := c.models[path]
	if ok {
		c.stats.CacheHits++
	} else {
		c.stats.CacheMisses++
	}
	c.mu.Unlock()

	if !ok {
		var err error
		proto, err = c.load(path)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.models[path] = proto
		c.stats.CachedModels = len(c.models)
		c.mu.Unlock()
		logger.Log.Info("Model loaded and cached", zap.String("path", path))
	}

	return CloneNode(proto)
}

func (c *ModelCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// CloneNode deep-copies a node tree, meshes included. The copy has no parent.
func CloneNode(src *renderer.Node) (*renderer.Node, error) {
	dst := renderer.NewNode(src.Name)
	dst.Position = src.Position
	dst.Rotation = src.Rotation
	dst.Scale = src.Scale
	dst.Visible = src.Visible
	if src.Mesh != nil {
		mesh := &renderer.Mesh{}
		if err := copier.CopyWithOption(mesh, src.Mesh, copier.Option{DeepCopy: true}); err != nil {
			return nil, err
		}
		dst.Mesh = mesh
	}
	for _, child := range src.Children() {
		c, err := CloneNode(child)
		if err != nil {
			return nil, err
		}
		dst.Add(c)
	}
	return dst, nil
}
