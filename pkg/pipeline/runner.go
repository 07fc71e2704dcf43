package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voltlab/cdckit/pkg/cache"
	"github.com/voltlab/cdckit/pkg/cdc"
	"github.com/voltlab/cdckit/pkg/codec"
	"github.com/voltlab/cdckit/pkg/layout"
	"github.com/voltlab/cdckit/pkg/render/nodelink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Circuit is the parsed circuit tree.
	Circuit *cdc.Circuit

	// CDC and Extended are the canonical serializations.
	CDC      string
	Extended string

	// Hash is the content hash of the canonical CDC text.
	Hash string

	// Layout is the node-link descriptor.
	Layout *layout.Descriptor

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Parse. Pure computation, never cached.
	parseStart := time.Now()
	c, err := cdc.Parse(opts.CDC, opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Circuit = c
	result.CDC = c.CDC()
	result.Extended = c.Extended()
	result.Hash = cache.Hash([]byte(result.CDC))
	result.Stats.ParseTime = time.Since(parseStart)

	logger.Info("parsed circuit",
		"cdc", result.CDC,
		"elements", len(c.Elements()),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	d, layoutHit, err := r.ComputeLayout(ctx, c, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(d.Nodes)
	result.Stats.LinkCount = len(d.Links)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.Render(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayout materializes the circuit as a positioned graph, serving
// the descriptor from cache when possible. The second return reports a
// cache hit.
func (r *Runner) ComputeLayout(ctx context.Context, c *cdc.Circuit, opts Options) (*layout.Descriptor, bool, error) {
	canonical := c.CDC()
	key := cache.LayoutKey(canonical)

	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err != nil {
			r.logger(opts).Warn("layout cache read failed", "err", err)
		} else if ok {
			d, err := layout.Read(bytes.NewReader(data))
			if err == nil {
				return d, true, nil
			}
			// Corrupt entry; drop it and recompute.
			_ = r.Cache.Delete(ctx, key)
		}
	}

	gen, err := codec.Generate(c)
	if err != nil {
		return nil, false, err
	}
	d := layout.FromGenerated(gen, canonical)

	if data, err := d.Marshal(); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.NoExpiry); err != nil {
			r.logger(opts).Warn("layout cache write failed", "err", err)
		}
	}
	return d, false, nil
}

// Render produces the requested output formats from a layout descriptor.
// The second return reports whether every artifact came from the cache.
func (r *Runner) Render(ctx context.Context, d *layout.Descriptor, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	for _, format := range opts.Formats {
		data, hit, err := r.renderOne(ctx, d, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		allHit = allHit && hit
	}
	return artifacts, allHit, nil
}

func (r *Runner) renderOne(ctx context.Context, d *layout.Descriptor, format string, opts Options) ([]byte, bool, error) {
	// JSON and DOT are cheap enough to always recompute.
	switch format {
	case FormatJSON:
		data, err := d.Marshal()
		return data, false, err
	case FormatDOT:
		return []byte(nodelink.ToDOT(d, nodelink.Options{Detailed: opts.Detailed})), false, nil
	}

	key := cache.ArtifactKey(d.CDC, format, opts.Scale)
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			return data, true, nil
		}
	}

	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: opts.Detailed})
	var data []byte
	var err error
	switch format {
	case FormatSVG:
		data, err = nodelink.RenderSVG(dot)
	case FormatPNG:
		data, err = nodelink.RenderPNG(dot, opts.Scale)
	case FormatPDF:
		data, err = nodelink.RenderPDF(dot)
	default:
		return nil, false, fmt.Errorf("invalid format: %q", format)
	}
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.NoExpiry); err != nil {
		r.logger(opts).Warn("artifact cache write failed", "format", format, "err", err)
	}
	return data, false, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
