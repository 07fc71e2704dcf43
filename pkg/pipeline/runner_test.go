package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/voltlab/cdckit/pkg/cache"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestExecute(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), quietLogger())

	result, err := runner.Execute(context.Background(), Options{
		CDC:     "[ R ( R C ) ]",
		Formats: []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.CDC != "[R(RC)]" {
		t.Errorf("CDC = %q, want canonical %q", result.CDC, "[R(RC)]")
	}
	if result.Hash == "" || len(result.Hash) != 64 {
		t.Errorf("Hash = %q, want 64 hex chars", result.Hash)
	}
	if result.Stats.NodeCount != 5 || result.Stats.LinkCount != 5 {
		t.Errorf("stats = %d nodes, %d links, want 5/5", result.Stats.NodeCount, result.Stats.LinkCount)
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("missing json artifact")
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), "digraph circuit") {
		t.Error("dot artifact is not a DOT graph")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, quietLogger())

	tests := []struct {
		name string
		opts Options
	}{
		{"empty cdc", Options{}},
		{"bad format", Options{CDC: "[R]", Formats: []string{"gif"}}},
		{"syntax error", Options{CDC: "[RC"}},
		{"unencodable", Options{CDC: "[(R)]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runner.Execute(context.Background(), tt.opts); err == nil {
				t.Error("Execute succeeded, want error")
			}
		})
	}
}

func TestLayoutCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	runner := NewRunner(fc, quietLogger())
	opts := Options{CDC: "[(RC)(RC)]"}
	ctx := context.Background()

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if first.CacheInfo.LayoutHit {
		t.Error("first run reported a layout cache hit")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run missed the layout cache")
	}
	if second.Layout.CDC != first.Layout.CDC || len(second.Layout.Nodes) != len(first.Layout.Nodes) {
		t.Error("cached layout differs from computed layout")
	}

	// Refresh bypasses the cache.
	third, err := runner.Execute(ctx, Options{CDC: "[(RC)(RC)]", Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute failed: %v", err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("refresh run reported a layout cache hit")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{CDC: "[R]"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("default formats = %v, want [json]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("default scale = %g, want %g", opts.Scale, DefaultScale)
	}
	if opts.Registry == nil {
		t.Error("default registry not set")
	}
}
