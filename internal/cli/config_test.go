package cli

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestReadCDCFromArg(t *testing.T) {
	text, err := readCDC([]string{"[R(RC)]"}, "")
	if err != nil {
		t.Fatalf("readCDC() error: %v", err)
	}
	if text != "[R(RC)]" {
		t.Errorf("readCDC() = %q, want %q", text, "[R(RC)]")
	}
}

func TestReadCDCFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circuit.cdc")
	if err := os.WriteFile(path, []byte("  [R(RC)]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	text, err := readCDC(nil, path)
	if err != nil {
		t.Fatalf("readCDC() error: %v", err)
	}
	if text != "[R(RC)]" {
		t.Errorf("readCDC() = %q, want trimmed %q", text, "[R(RC)]")
	}

	if _, err := readCDC(nil, filepath.Join(t.TempDir(), "missing.cdc")); err == nil {
		t.Error("readCDC() should fail on a missing file")
	}
}

func TestLoadRegistry(t *testing.T) {
	reg, err := loadRegistry("")
	if err != nil {
		t.Fatalf("loadRegistry() error: %v", err)
	}
	if _, ok := reg.Lookup("R"); !ok {
		t.Error("loadRegistry() should include the builtin elements")
	}

	path := filepath.Join(t.TempDir(), "elements.toml")
	src := "[[elements]]\nmnemonic = \"Zarc\"\nname = \"ZARC\"\n\n[[elements.parameters]]\nsymbol = \"R\"\nvalue = 1.0\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	reg, err = loadRegistry(path)
	if err != nil {
		t.Fatalf("loadRegistry() with defs error: %v", err)
	}
	if _, ok := reg.Lookup("Zarc"); !ok {
		t.Error("loadRegistry() should include custom definitions")
	}
}

func TestDefaultCacheDir(t *testing.T) {
	dir := defaultCacheDir()
	if dir == "" {
		t.Error("defaultCacheDir() returned empty string")
	}
	if filepath.Base(dir) != "cdckit" && dir != ".cdckit-cache" {
		t.Errorf("defaultCacheDir() = %q, want a cdckit directory", dir)
	}
}

func TestFmtLimit(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{1e-6, "1e-06"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		if got := fmtLimit(tt.value); got != tt.want {
			t.Errorf("fmtLimit(%g) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestOpenCacheDisabled(t *testing.T) {
	c, err := openCache(t.Context(), "", "", true)
	if err != nil {
		t.Fatalf("openCache() error: %v", err)
	}
	defer c.Close()

	if err := c.Set(t.Context(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok, _ := c.Get(t.Context(), "k"); ok {
		t.Error("null cache should never report a hit")
	}
}
