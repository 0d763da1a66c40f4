// Package sink turns a computed [layout.Layout] into final output bytes.
//
// # Overview
//
//   - SVG: [RenderSVG] draws onto an in-memory [svg.Canvas]
//   - PNG: [RenderPNG] draws onto a [raster.Canvas] (no external tools)
//   - PDF: [RenderPDF] converts the SVG output (requires rsvg-convert)
//   - JSON: [RenderJSON] exports the geometry and label colors
//
// Every sink accepts the same [render.Option] values, so one set of styling
// options yields matching output in every format:
//
//	opts := []render.Option{render.WithFlowColorBy(render.ByTarget)}
//	svg := sink.RenderSVG(l, sink.WithDrawOptions(opts...))
//	png, err := sink.RenderPNG(l, sink.WithDrawOptions(opts...), sink.WithScale(3))
//
// [layout.Layout]: github.com/matzehuels/sankey/pkg/layout.Layout
// [svg.Canvas]: github.com/matzehuels/sankey/pkg/render/svg.Canvas
// [raster.Canvas]: github.com/matzehuels/sankey/pkg/render/raster.Canvas
package sink
