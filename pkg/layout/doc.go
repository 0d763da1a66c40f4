// Package layout computes the geometry of a Sankey diagram.
//
// [Compute] turns an aggregated [flow.Graph] into a [Layout]: one [Column]
// per stage holding stacked [NodeBox] rectangles, and one [Band] per flow
// recording where it leaves its source node and enters its target node.
//
// All columns share a single scale, so equal weights always have equal
// heights regardless of the stage they appear in. The heaviest stage spans
// the full usable height of the frame.
//
// The layout is pure data and carries no color or styling; see package
// render for drawing it.
package layout
