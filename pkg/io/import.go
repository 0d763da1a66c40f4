package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/layout"
)

// ReadJSON decodes a layout written by [WriteJSON].
//
// It returns an INVALID_FORMAT error if the JSON is malformed, or if a flow
// names a stage or node that is not part of the document. ReadJSON does not
// close r. A labels list that misses node labels is completed in stacking
// order so that every node has a palette slot.
func ReadJSON(r io.Reader) (layout.Layout, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return layout.Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}

	l := layout.Layout{
		FrameWidth:  data.Width,
		FrameHeight: data.Height,
		MarginTop:   data.MarginTop,
		Scale:       data.Scale,
		NodeGap:     data.NodeGap,
		Order:       layout.Order(data.Order),
		Labels:      data.Labels,
		Columns:     make([]layout.Column, len(data.Stages)),
	}
	for i, st := range data.Stages {
		col := layout.Column{Index: i, Name: st.Name, Total: st.Total, X0: st.X0, X1: st.X1, Nodes: make([]layout.NodeBox, len(st.Nodes))}
		for j, n := range st.Nodes {
			col.Nodes[j] = layout.NodeBox{Stage: i, Label: n.Label, Weight: n.Weight, X0: n.X0, X1: n.X1, Y0: n.Y0, Y1: n.Y1}
		}
		l.Columns[i] = col
	}
	if len(l.Labels) > 0 {
		l.Labels = l.NodeLabels()
	}

	if len(data.Flows) > 0 {
		l.Bands = make([]layout.Band, len(data.Flows))
	}
	for i, f := range data.Flows {
		if _, ok := l.Node(f.Stage, f.Source); !ok {
			return layout.Layout{}, errors.New(errors.ErrCodeInvalidFormat, "flow %d: unknown source %q in stage %d", i, f.Source, f.Stage)
		}
		if _, ok := l.Node(f.Stage+1, f.Target); !ok {
			return layout.Layout{}, errors.New(errors.ErrCodeInvalidFormat, "flow %d: unknown target %q in stage %d", i, f.Target, f.Stage+1)
		}
		l.Bands[i] = layout.Band{
			Stage: f.Stage, Source: f.Source, Target: f.Target, Weight: f.Weight,
			X0: f.X0, X1: f.X1,
			SourceSpan: layout.Span{Y0: f.SourceSpan[0], Y1: f.SourceSpan[1]},
			TargetSpan: layout.Span{Y0: f.TargetSpan[0], Y1: f.TargetSpan[1]},
		}
	}
	return l, nil
}

// ImportJSON reads a layout from the JSON file at path.
func ImportJSON(path string) (layout.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
