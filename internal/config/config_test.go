package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	os.WriteFile(path, []byte(`{"clamp_margin": 0.1, "loader_workers": 2}`), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ClampMargin != 0.1 || cfg.LoaderWorkers != 2 {
		t.Errorf("Expected margin 0.1 and 2 workers, got %f and %d", cfg.ClampMargin, cfg.LoaderWorkers)
	}
	if cfg.StorePath != Default().StorePath {
		t.Errorf("Unset fields should keep defaults, got %q", cfg.StorePath)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	os.WriteFile(path, []byte(`{"clamp_margin": `), 0644)

	if _, err := Load(path); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cfg.json")
	want := Default()
	want.ExportFormat = "png"

	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("VANBUILDER_CLAMP_MARGIN", "0.25")
	t.Setenv("VANBUILDER_LOADER_WORKERS", "8")
	t.Setenv("VANBUILDER_DEVELOPMENT", "true")
	t.Setenv("VANBUILDER_VIEWPORT_WIDTH", "wide")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.ClampMargin != 0.25 {
		t.Errorf("Expected margin 0.25, got %f", cfg.ClampMargin)
	}
	if cfg.LoaderWorkers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.LoaderWorkers)
	}
	if !cfg.Development {
		t.Error("Expected development mode")
	}
	if cfg.ViewportWidth != Default().ViewportWidth {
		t.Errorf("Invalid int should keep the default, got %d", cfg.ViewportWidth)
	}
}

func TestVanModel(t *testing.T) {
	cfg := Default()
	if cfg.VanModel("large") != cfg.LargeVanModel {
		t.Error("Expected the large van model")
	}
	if cfg.VanModel("") != cfg.SmallVanModel {
		t.Error("Expected the small van model as fallback")
	}
}
