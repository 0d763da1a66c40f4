// Package nodelink renders flow graphs as traditional node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz: one
// box per node, one column per stage, and one arrow per flow with a pen
// width proportional to its weight. It is the alternative to the Sankey
// drawing when exact proportions matter less than topology.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
