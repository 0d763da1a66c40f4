// Package render draws Sankey layouts onto a drawing surface.
//
// # Overview
//
// Rendering is split between this package, which turns a [layout.Layout]
// into drawing calls, and the surfaces that execute them:
//
//   - [svg]: an SVG document builder
//   - [raster]: an anti-aliased bitmap backed by fogleman/gg
//   - [sink]: ready-made byte outputs (SVG, PNG, PDF, JSON)
//   - [nodelink]: a Graphviz node-link view of the same flow graph
//
// # Drawing
//
// [Draw] paints every band as a translucent ribbon, every node as a filled
// rectangle, then node labels and stage titles on top:
//
//	canvas := svg.New(l.FrameWidth, l.FrameHeight)
//	d := render.Draw(canvas, l, render.WithFlowColorBy(render.ByTarget))
//	os.Stdout.Write(canvas.Bytes())
//
// The returned [Diagram] keeps the surface and the label colors, so callers
// can continue drawing annotations with matching colors.
//
// # Colors
//
// Nodes are colored by label through a [Colormap]; the same label has the
// same color in every stage. [JetR] is the default. [ParseColormap] resolves
// the names accepted on the command line.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg).
//
// [svg]: github.com/matzehuels/sankey/pkg/render/svg
// [raster]: github.com/matzehuels/sankey/pkg/render/raster
// [sink]: github.com/matzehuels/sankey/pkg/render/sink
// [nodelink]: github.com/matzehuels/sankey/pkg/render/nodelink
package render
