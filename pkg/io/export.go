package io

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/matzehuels/sankey/pkg/layout"
	"github.com/matzehuels/sankey/pkg/render"
)

type document struct {
	Width     float64           `json:"width"`
	Height    float64           `json:"height"`
	MarginTop float64           `json:"margin_top"`
	Scale     float64           `json:"scale"`
	NodeGap   float64           `json:"node_gap"`
	Order     string            `json:"order,omitempty"`
	Labels    []string          `json:"labels,omitempty"`
	Stages    []stage           `json:"stages"`
	Flows     []band            `json:"flows"`
	Colors    map[string]string `json:"colors,omitempty"`
}

type stage struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Total float64 `json:"total"`
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Nodes []node  `json:"nodes"`
}

type node struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Y0     float64 `json:"y0"`
	Y1     float64 `json:"y1"`
}

type band struct {
	Stage      int        `json:"stage"`
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Weight     float64    `json:"weight"`
	X0         float64    `json:"x0"`
	X1         float64    `json:"x1"`
	SourceSpan [2]float64 `json:"source_span"`
	TargetSpan [2]float64 `json:"target_span"`
}

// Option configures [WriteJSON].
type Option func(*document)

// WithColors records label colors as "#rrggbb" strings.
func WithColors(colors map[string]color.Color) Option {
	return func(d *document) {
		if len(colors) == 0 {
			return
		}
		d.Colors = make(map[string]string, len(colors))
		for label, c := range colors {
			d.Colors[label], _ = render.HexAlpha(c)
		}
	}
}

// WriteJSON encodes l as indented JSON and writes it to w.
func WriteJSON(l layout.Layout, w io.Writer, opts ...Option) error {
	out := document{
		Width:     l.FrameWidth,
		Height:    l.FrameHeight,
		MarginTop: l.MarginTop,
		Scale:     l.Scale,
		NodeGap:   l.NodeGap,
		Order:     string(l.Order),
		Labels:    l.Labels,
		Stages:    make([]stage, len(l.Columns)),
		Flows:     make([]band, len(l.Bands)),
	}
	for _, opt := range opts {
		opt(&out)
	}

	for i, c := range l.Columns {
		st := stage{Index: c.Index, Name: c.Name, Total: c.Total, X0: c.X0, X1: c.X1, Nodes: make([]node, len(c.Nodes))}
		for j, n := range c.Nodes {
			st.Nodes[j] = node{Label: n.Label, Weight: n.Weight, X0: n.X0, X1: n.X1, Y0: n.Y0, Y1: n.Y1}
		}
		out.Stages[i] = st
	}
	for i, b := range l.Bands {
		out.Flows[i] = band{
			Stage: b.Stage, Source: b.Source, Target: b.Target, Weight: b.Weight,
			X0: b.X0, X1: b.X1,
			SourceSpan: [2]float64{b.SourceSpan.Y0, b.SourceSpan.Y1},
			TargetSpan: [2]float64{b.TargetSpan.Y0, b.TargetSpan.Y1},
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes l to a JSON file at path.
func ExportJSON(l layout.Layout, path string, opts ...Option) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(l, f, opts...)
}
