package pipeline

import (
	"fmt"

	"github.com/matzehuels/sankey/pkg/flow"
	"github.com/matzehuels/sankey/pkg/layout"
	"github.com/matzehuels/sankey/pkg/render"
	"github.com/matzehuels/sankey/pkg/render/nodelink"
	"github.com/matzehuels/sankey/pkg/render/sink"
)

// Render generates output artifacts in the requested formats. The DOT
// format is available for both visualization types; it describes the flow
// graph, not the placed diagram.
func Render(g *flow.Graph, l layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if opts.IsNodelink() {
		return renderNodelink(g, l, opts)
	}
	return renderSankey(g, l, opts)
}

// renderSankey generates sankey diagram outputs.
func renderSankey(g *flow.Graph, l layout.Layout, opts Options) (map[string][]byte, error) {
	drawOpts, err := opts.DrawOptions()
	if err != nil {
		return nil, err
	}
	sinkOpts := []sink.Option{sink.WithDrawOptions(drawOpts...), sink.WithScale(opts.Scale)}
	bg, err := opts.BackgroundColor()
	if err != nil {
		return nil, err
	}
	if bg != nil {
		sinkOpts = append(sinkOpts, sink.WithBackground(bg))
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, sinkOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, sinkOpts...)
		case FormatPDF:
			data, err = sink.RenderPDF(l, sinkOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(l, sinkOpts...)
		case FormatDOT:
			data, err = dot(g, l, opts)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		opts.Logger.Debug("rendered artifact", "format", format, "bytes", len(data))
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderNodelink generates node-link outputs through Graphviz.
func renderNodelink(g *flow.Graph, l layout.Layout, opts Options) (map[string][]byte, error) {
	src, err := dot(g, l, opts)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(string(src))
		case FormatPNG:
			data, err = nodelink.RenderPNG(string(src), opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(string(src))
		case FormatDOT:
			data = src
		default:
			err = fmt.Errorf("unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		opts.Logger.Debug("rendered artifact", "format", format, "bytes", len(data))
		artifacts[format] = data
	}
	return artifacts, nil
}

// dot builds the DOT source of g, filling nodes with the same label colors
// the sankey diagram uses.
func dot(g *flow.Graph, l layout.Layout, opts Options) ([]byte, error) {
	cm, err := render.ParseColormap(opts.Colormap)
	if err != nil {
		return nil, err
	}
	return []byte(nodelink.ToDOT(g, nodelink.Options{
		Detailed: opts.Detailed,
		Colors:   render.Palette(l.Labels, cm),
	})), nil
}
