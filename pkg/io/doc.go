// Package io provides JSON import and export for computed Sankey layouts.
//
// # Overview
//
// The format carries the full geometry of a [layout.Layout] so that
// external tools can draw the diagram themselves, and so that the pipeline
// can cache layouts between runs. A layout decoded with [ReadJSON] renders
// identically to the one that was encoded.
//
// # JSON Format
//
//	{
//	  "width": 800, "height": 600, "margin_top": 32,
//	  "scale": 139, "node_gap": 4, "order": "first-seen",
//	  "labels": ["a", "x", "b", "y"],
//	  "stages": [
//	    {"index": 0, "name": "1", "total": 4, "x0": 20, "x1": 40,
//	     "nodes": [{"label": "a", "weight": 2, "x0": 20, "x1": 40, "y0": 32, "y1": 310}]}
//	  ],
//	  "flows": [
//	    {"stage": 0, "source": "a", "target": "x", "weight": 1,
//	     "x0": 40, "x1": 760, "source_span": [32, 171], "target_span": [32, 171]}
//	  ],
//	  "colors": {"a": "#800000"}
//	}
//
// The "colors" object is only written when colors are supplied through
// [WithColors]. It is ignored on import.
//
// # Import
//
// Use [ImportJSON] to read a layout from a file path, or [ReadJSON] to read
// from any io.Reader. Both check that every flow references nodes present in
// the adjacent stages.
//
// # Export
//
// Use [ExportJSON] to write a layout to a file, or [WriteJSON] to write to
// any io.Writer.
//
// [layout.Layout]: github.com/matzehuels/sankey/pkg/layout.Layout
package io
