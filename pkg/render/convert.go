// Package render converts circuit diagrams between output formats.
//
// The [nodelink] subpackage turns a layout descriptor into a Graphviz
// node-link diagram in SVG. [ToPDF] and [ToPNG] take that SVG further by
// shelling out to rsvg-convert from librsvg, which handles the fonts and
// stroke styling Graphviz emits better than pure-Go rasterizers do.
//
// [nodelink]: github.com/voltlab/cdckit/pkg/render/nodelink
package render

import (
	"bytes"
	"fmt"
	"os/exec"
)

// converter is the external tool both exports shell out to.
const converter = "rsvg-convert"

// ToPDF converts a diagram SVG to PDF for print and paper figures.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// ToPNG rasterizes a diagram SVG at the given scale factor; scale 2
// doubles the pixel dimensions. Diagrams are drawn on a transparent
// canvas, so the PNG gets a white background to stay readable in viewers
// that default to dark themes.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return convert(svg, "-f", "png", "-b", "white", "-z", fmt.Sprintf("%.2f", scale))
}

// convert pipes the SVG through rsvg-convert with the given arguments.
func convert(svg []byte, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(converter); err != nil {
		return nil, fmt.Errorf("%s not found; install librsvg (brew install librsvg / apt install librsvg2-bin)", converter)
	}

	cmd := exec.Command(converter, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %v: %s", converter, err, stderr.String())
	}
	return out.Bytes(), nil
}
