package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"VanBuilder/internal/renderer"
)

func writeOBJ(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAsyncDeliversOnDrain(t *testing.T) {
	path := writeOBJ(t, "chair.obj", twoGroupOBJ)
	async := NewAsync(2, nil)
	defer async.Close()

	var got *renderer.Node
	async.Load(path, func(root *renderer.Node, err error) {
		if err != nil {
			t.Errorf("Unexpected load error: %v", err)
		}
		got = root
	})
	async.Wait()

	if got != nil {
		t.Fatal("Callback must not run before Drain")
	}
	if n := async.Drain(); n != 1 {
		t.Errorf("Expected 1 completion, got %d", n)
	}
	if got == nil || len(got.Children()) != 2 {
		t.Error("Expected the loaded model after Drain")
	}
}

func TestAsyncReportsErrors(t *testing.T) {
	async := NewAsync(1, nil)
	defer async.Close()

	var gotErr error
	async.Load(filepath.Join(t.TempDir(), "missing.obj"), func(root *renderer.Node, err error) {
		gotErr = err
	})
	async.Wait()
	async.Drain()

	if gotErr == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestCacheReturnsIndependentCopies(t *testing.T) {
	path := writeOBJ(t, "chair.obj", twoGroupOBJ)
	cache := NewModelCache()

	a, err := cache.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := cache.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	a.SetPosition(5, 5, 5)
	a.Children()[0].Mesh.Vertices[0] = 42

	if b.Position.X() == 5 {
		t.Error("Copies should not share transforms")
	}
	if b.Children()[0].Mesh.Vertices[0] == 42 {
		t.Error("Copies should not share vertex data")
	}
	stats := cache.Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v", stats)
	}
}

func TestAsyncLoadAfterClose(t *testing.T) {
	path := writeOBJ(t, "chair.obj", twoGroupOBJ)
	async := NewAsync(1, nil)
	async.Close()

	var gotErr error
	async.Load(path, func(root *renderer.Node, err error) {
		gotErr = err
	})

	waited := make(chan struct{})
	go func() {
		async.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait blocked after a load on a closed loader")
	}

	if n := async.Drain(); n != 1 {
		t.Errorf("Expected 1 completion, got %d", n)
	}
	if !errors.Is(gotErr, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", gotErr)
	}
}
