// Package pkg provides the core libraries for cdckit circuit conversion.
//
// # Overview
//
// cdckit converts impedance-spectroscopy equivalent circuits between two
// representations: an editable node-link graph and nested-bracket circuit
// description code (CDC), where "[...]" is a series connection and "(...)"
// a parallel one. The pkg directory is organized into five main areas:
//
//  1. [circuit] - Element domain model (definitions, parameters, registry)
//  2. [graph] - Mutable circuit graph (source, sink, elements, junctions)
//  3. [cdc] / [codec] - CDC syntax tree, parser, and graph encoder/decoder
//  4. [layout] / [render] - Positioned node-link descriptors and diagrams
//  5. [pipeline] / [server] / [store] / [cache] - Orchestration and serving
//
// # Architecture
//
// The typical data flow through cdckit:
//
//	CDC text
//	     ↓
//	[cdc] package (parse into a syntax tree)
//	     ↓
//	[codec] package (materialize graph + grid positions)
//	     ↓
//	[layout] package (serializable node-link descriptor)
//	     ↓
//	[render] package (DOT/SVG/PNG/PDF output)
//
// and back: an edited [graph.Graph] is encoded by [codec.Encode] into the
// canonical CDC text shown to the user after every change.
//
// # Quick Start
//
// Parse CDC text and render a diagram:
//
//	import (
//	    "github.com/voltlab/cdckit/pkg/cdc"
//	    "github.com/voltlab/cdckit/pkg/circuit"
//	    "github.com/voltlab/cdckit/pkg/codec"
//	    "github.com/voltlab/cdckit/pkg/layout"
//	    "github.com/voltlab/cdckit/pkg/render/nodelink"
//	)
//
//	// 1. Parse
//	c, _ := cdc.Parse("[R(RC)]", circuit.Builtin())
//
//	// 2. Materialize the graph with grid positions
//	gen, _ := codec.Generate(c)
//
//	// 3. Build the node-link descriptor
//	d := layout.FromGenerated(gen, c.CDC())
//
//	// 4. Render to SVG
//	svg, _ := nodelink.RenderSVG(nodelink.ToDOT(d, nodelink.Options{}))
//
// # Main Packages
//
// [circuit] - Element definitions and the mnemonic registry. Builtin()
// covers the standard fitting elements (R, C, L, La, Q, W, Ws, Wo, G, H, K);
// custom elements load from TOML.
//
// [graph] - The mutable circuit graph edited interactively. Terminals are
// fixed (source id -1, sink id -2), elements count up from 0, junctions
// count down from -3. Link creation order is preserved so encoding is
// deterministic.
//
// [cdc] - The CDC syntax tree with canonical basic and extended renderings
// plus the parser. Extended form carries parameter values, fixed flags,
// fitting limits, and labels in brace blocks.
//
// [codec] - The bidirectional converter. Encode walks the graph and emits
// the syntax tree, diagnosing short circuits, dangling nodes, and
// unresolvable merges. Generate goes the other way and assigns grid
// positions (column = series step, row = parallel branch).
//
// [layout] - Flat, serializable node-link descriptors (JSON/BSON) consumed
// by renderers and API clients.
//
// [render] / [render/nodelink] - Graphviz-based diagram rendering and
// SVG-to-PDF/PNG conversion via librsvg.
//
// [pipeline] - The parse → layout → render pipeline used by CLI and server,
// with content-addressed caching of layouts and artifacts.
//
// [cache] - File, Redis, and null cache backends.
//
// [store] - Saved circuit persistence: in-memory for tests and single
// processes, MongoDB for the serve mode.
//
// [server] - The HTTP API (chi router) exposing parse, layout, render,
// element introspection, and circuit CRUD.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/codec/...      # Specific package
//
// [circuit]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/circuit
// [graph]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/graph
// [cdc]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/cdc
// [codec]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/codec
// [layout]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/layout
// [render]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/cache
// [store]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/store
// [server]: https://pkg.go.dev/github.com/voltlab/cdckit/pkg/server
package pkg
