package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultPath is where the configurator looks for its settings.
const DefaultPath = "config/vanbuilder.json"

// envPrefix is prepended to every environment override.
const envPrefix = "VANBUILDER_"

type Config struct {
	StorePath   string `json:"store_path"`
	AssetDir    string `json:"asset_dir"`
	CatalogPath string `json:"catalog_path,omitempty"` // Empty means the built-in catalog

	SmallVanModel string `json:"small_van_model"`
	LargeVanModel string `json:"large_van_model"`

	// ClampMargin keeps objects this far from the van walls
	ClampMargin float32 `json:"clamp_margin"`
	// DropRadius is the half-size of the square new objects are dropped into
	DropRadius float32 `json:"drop_radius"`

	ViewportWidth  int `json:"viewport_width"`
	ViewportHeight int `json:"viewport_height"`
	LoaderWorkers  int `json:"loader_workers"`

	ExportFormat string `json:"export_format"`
	ExportWidth  int    `json:"export_width"`

	LogLevel    string `json:"log_level"`
	Development bool   `json:"development"`
}

func Default() Config {
	return Config{
		StorePath:      "data/vanbuilder.db",
		AssetDir:       "assets",
		SmallVanModel:  "assets/models/van_small.obj",
		LargeVanModel:  "assets/models/van_large.obj",
		ClampMargin:    0.02,
		DropRadius:     0.5,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		LoaderWorkers:  4,
		ExportFormat:   "webp",
		ExportWidth:    0,
		LogLevel:       "info",
		Development:    false,
	}
}

// Load reads path over the defaults. A missing file yields Default(); a
// file that does not parse is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from VANBUILDER_* environment variables.
func (c *Config) ApplyEnv() {
	c.StorePath = getEnv("STORE_PATH", c.StorePath)
	c.AssetDir = getEnv("ASSET_DIR", c.AssetDir)
	c.CatalogPath = getEnv("CATALOG_PATH", c.CatalogPath)
	c.SmallVanModel = getEnv("SMALL_VAN_MODEL", c.SmallVanModel)
	c.LargeVanModel = getEnv("LARGE_VAN_MODEL", c.LargeVanModel)
	c.ClampMargin = getEnvAsFloat("CLAMP_MARGIN", c.ClampMargin)
	c.DropRadius = getEnvAsFloat("DROP_RADIUS", c.DropRadius)
	c.ViewportWidth = getEnvAsInt("VIEWPORT_WIDTH", c.ViewportWidth)
	c.ViewportHeight = getEnvAsInt("VIEWPORT_HEIGHT", c.ViewportHeight)
	c.LoaderWorkers = getEnvAsInt("LOADER_WORKERS", c.LoaderWorkers)
	c.ExportFormat = getEnv("EXPORT_FORMAT", c.ExportFormat)
	c.ExportWidth = getEnvAsInt("EXPORT_WIDTH", c.ExportWidth)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Development = getEnvAsBool("DEVELOPMENT", c.Development)
}

// VanModel returns the van model for a van class, falling back to the
// small van.
func (c Config) VanModel(vanType string) string {
	if vanType == "large" {
		return c.LargeVanModel
	}
	return c.SmallVanModel
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float32) float32 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if f, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(f)
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
