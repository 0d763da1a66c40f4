// Package pkg provides the core libraries for Sankey flow visualization.
//
// # Overview
//
// A Sankey diagram shows how weight moves through a sequence of categorical
// stages. Each input row is one weighted path (weight, stage 1 label, stage 2
// label, ...); rows sharing a label at a stage form a node, and rows sharing
// a consecutive pair of labels form a ribbon between two nodes.
//
// # Architecture
//
// The typical data flow:
//
//	CSV / JSON / YAML / TOML / in-memory rows
//	         ↓
//	    [table] package (normalize and validate)
//	         ↓
//	    [flow] package (aggregate nodes and transitions)
//	         ↓
//	    [layout] package (columns, boxes and ribbon geometry)
//	         ↓
//	    [render] package (draw onto an SVG or raster surface)
//	         ↓
//	    SVG/PNG/PDF/JSON/DOT output
//
// # Quick Start
//
// Draw a diagram in one call:
//
//	d, _ := sankey.Draw(nil, [][]any{
//	    {3, "a", "x"},
//	    {1, "a", "y"},
//	    {2, "b", "x"},
//	})
//	os.Stdout.Write(d.Surface.(*svg.Canvas).Bytes())
//
// Or run the cached pipeline used by the CLI and server:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Input:   "flows.csv",
//	    Formats: []string{"svg", "png"},
//	})
//
// # Main Packages
//
// [table] - Input adapters. Normalizes labeled frames, matrices and nested
// slices, and reads CSV, JSON, YAML and TOML.
//
// [flow] - Aggregation into stages, nodes and flows in first-seen order.
//
// [layout] - Geometry: column positions, stacked node boxes and ribbon
// slots. [layout.Layout] is the serializable result.
//
// [render] - Drawing onto a [render.Surface], colormaps and SVG conversion.
//
//   - [render/svg]: SVG surface
//   - [render/raster]: PNG surface (gg and freetype)
//   - [render/sink]: Output formats (SVG, PNG, PDF, JSON)
//   - [render/nodelink]: Graphviz node-link diagrams
//
// [sankey] - One-call Draw and Compute facade.
//
// ## Infrastructure
//
// [pipeline] - Load, layout and render with per-stage caching, shared by the
// CLI and the HTTP server.
//
// [cache] - File, redis and null caches with content-addressed keys.
//
// [io] - JSON import and export of layouts.
//
// [observability] - Hooks for pipeline, cache and HTTP events, with a
// Prometheus implementation in [observability/prom].
//
// [errors] - Coded errors shared by every package.
//
// [table]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/table
// [flow]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/flow
// [layout]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/layout
// [layout.Layout]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/layout#Layout
// [render]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/render
// [render.Surface]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/render#Surface
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/render/svg
// [render/raster]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/render/raster
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/render/nodelink
// [sankey]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/sankey
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/sankey/pkg/errors
package pkg
