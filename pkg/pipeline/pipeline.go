// Package pipeline provides the core conversion pipeline for cdckit.
//
// This package implements the complete parse → layout → render pipeline
// shared by the CLI, the HTTP API, and the interactive editor. By
// centralizing this logic, every entry point validates, caches, and
// renders the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read circuit description text into a circuit tree
//  2. Layout: Materialize the tree as a graph with grid positions
//  3. Render: Generate output in various formats (JSON, DOT, SVG, PNG, PDF)
//
// Layout and render results are cached, keyed by the canonical CDC text,
// so repeated requests for the same circuit are served from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    CDC:     "[R(RC)]",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/voltlab/cdckit/pkg/circuit"
	"github.com/voltlab/cdckit/pkg/errors"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// DefaultScale is the default PNG scale factor.
const DefaultScale = 2.0

// Options contains all configuration for the conversion pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// CDC is the circuit description text to process. Required.
	CDC string `json:"cdc"`

	// Formats selects the rendered outputs. Defaults to ["json"].
	Formats []string `json:"formats,omitempty"`

	// Detailed includes grid positions in diagram labels.
	Detailed bool `json:"detailed,omitempty"`

	// Scale is the PNG scale factor. Defaults to DefaultScale.
	Scale float64 `json:"scale,omitempty"`

	// Refresh bypasses the cache and recomputes everything.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger       `json:"-"`
	Registry *circuit.Registry `json:"-"` // defaults to circuit.Builtin()

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateCDCInput(o.CDC); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Registry == nil {
		o.Registry = circuit.Builtin()
	}
	o.validated = true
	return nil
}
