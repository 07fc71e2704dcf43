package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := c.Set(ctx, "k", []byte("layout bytes"), NoExpiry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok %v, err %v", ok, err)
	}
	if string(data) != "layout bytes" {
		t.Errorf("Get returned %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key failed: %v", err)
	}
}

func TestFileCacheNamespaces(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, LayoutKey("[RC]"), []byte("l"), NoExpiry); err != nil {
		t.Fatalf("Set layout failed: %v", err)
	}
	if err := c.Set(ctx, ArtifactKey("[RC]", "svg", 1), []byte("a"), NoExpiry); err != nil {
		t.Fatalf("Set artifact failed: %v", err)
	}
	if err := c.Set(ctx, "adhoc", []byte("m"), NoExpiry); err != nil {
		t.Fatalf("Set adhoc failed: %v", err)
	}

	// One subdirectory per key namespace, unkeyed entries under misc.
	for _, ns := range []string{"layout", "artifact", "misc"} {
		if _, err := os.Stat(filepath.Join(dir, ns)); err != nil {
			t.Errorf("namespace directory %q missing: %v", ns, err)
		}
	}

	if data, ok, _ := c.Get(ctx, LayoutKey("[RC]")); !ok || string(data) != "l" {
		t.Errorf("layout entry lost: ok %v, data %q", ok, data)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired entry returned as hit")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), NoExpiry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("NullCache stored a value: ok %v, err %v", ok, err)
	}
}

func TestKeys(t *testing.T) {
	if LayoutKey("[RC]") != LayoutKey("[RC]") {
		t.Error("LayoutKey is not deterministic")
	}
	if LayoutKey("[RC]") == LayoutKey("[CR]") {
		t.Error("different circuits share a layout key")
	}
	if ArtifactKey("[RC]", "svg", 1) == ArtifactKey("[RC]", "png", 1) {
		t.Error("different formats share an artifact key")
	}
	if ArtifactKey("[RC]", "png", 1) == ArtifactKey("[RC]", "png", 2) {
		t.Error("different scales share an artifact key")
	}
	if LayoutKey("[RC]") == ArtifactKey("[RC]", "svg", 1) {
		t.Error("layout and artifact keys collide")
	}
}
