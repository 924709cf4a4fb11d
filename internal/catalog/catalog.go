package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCategory is returned when a category has no catalog entry.
var ErrUnknownCategory = errors.New("unknown category")

// Entry describes one placeable furniture model.
type Entry struct {
	Category string `yaml:"category"`
	Label    string `yaml:"label"`
	Model    string `yaml:"model"` // Path to the OBJ file
	Image    string `yaml:"image"` // Info panel picture
	Fixed    bool   `yaml:"fixed"` // Dropped at DropPosition instead of a random spot

	// DropPosition is used for fixed entries.
	DropPosition [3]float32 `yaml:"drop_position"`
}

type Catalog struct {
	entries map[string]Entry
}

type file struct {
	Entries []Entry `yaml:"entries"`
}

func New(entries ...Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		c.entries[e.Category] = e
	}
	return c
}

// Default is the built-in furniture set, with model paths relative to assetDir.
func Default(assetDir string) *Catalog {
	model := func(name string) string { return filepath.Join(assetDir, "models", name+".obj") }
	image := func(name string) string { return filepath.Join(assetDir, "images", name+".png") }
	return New(
		Entry{Category: "bed", Label: "Bed", Model: model("bed"), Image: image("bed")},
		Entry{Category: "kitchen", Label: "Kitchen block", Model: model("kitchen"), Image: image("kitchen")},
		Entry{Category: "cabinet", Label: "Cabinet", Model: model("cabinet"), Image: image("cabinet")},
		Entry{Category: "table", Label: "Table", Model: model("table"), Image: image("table")},
		Entry{Category: "seat", Label: "Seat", Model: model("seat"), Image: image("seat")},
		Entry{Category: "toilet", Label: "Toilet", Model: model("toilet"), Image: image("toilet"), Fixed: true},
	)
}

// Load reads a YAML catalog. Relative model and image paths are resolved
// against the catalog file's directory.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	c := New()
	for i, e := range f.Entries {
		if e.Category == "" || e.Model == "" {
			return nil, fmt.Errorf("catalog: entry %d needs category and model", i)
		}
		if !filepath.IsAbs(e.Model) {
			e.Model = filepath.Join(base, e.Model)
		}
		if e.Image != "" && !filepath.IsAbs(e.Image) {
			e.Image = filepath.Join(base, e.Image)
		}
		if e.Label == "" {
			e.Label = e.Category
		}
		c.entries[e.Category] = e
	}
	return c, nil
}

func (c *Catalog) Lookup(category string) (Entry, error) {
	e, ok := c.entries[category]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return e, nil
}

// Categories lists every category in sorted order.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
