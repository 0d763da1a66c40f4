package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/flow"
	"github.com/matzehuels/sankey/pkg/render"
)

const (
	minPenWidth = 1.0
	maxPenWidth = 12.0
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes weights in node and edge labels.
	Detailed bool
	// Colors fills each node with the color of its label. Nodes without a
	// color are white.
	Colors map[string]color.Color
}

// ToDOT converts a flow graph to Graphviz DOT format. Each stage becomes a
// rank, left to right, and each flow an edge whose pen width grows with its
// weight. The result can be rendered using [RenderSVG], [RenderPDF], or
// [RenderPNG].
func ToDOT(g *flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.6, color=\"#00000066\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for _, st := range g.Stages {
		fmt.Fprintf(&buf, "\n  subgraph \"stage%d\" {\n    rank=same;\n", st.Index)
		for _, n := range st.Nodes {
			fmt.Fprintf(&buf, "    %q [%s];\n", nodeID(n.Stage, n.Label), strings.Join(fmtAttrs(n, opts), ", "))
		}
		buf.WriteString("  }\n")
	}

	maxW := maxFlow(g)
	buf.WriteString("\n")
	for _, tr := range g.Transitions {
		for _, f := range tr {
			attrs := []string{fmt.Sprintf("penwidth=%.2f", penWidth(f.Weight, maxW))}
			if opts.Detailed {
				attrs = append(attrs, fmt.Sprintf("label=%q", fmtWeight(f.Weight)))
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n",
				nodeID(f.Stage, f.Source), nodeID(f.Stage+1, f.Target), strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID qualifies a label by its stage; the same label may appear in
// several stages.
func nodeID(stage int, label string) string {
	return strconv.Itoa(stage) + ":" + label
}

func fmtLabel(n flow.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return n.Label + "\n" + fmtWeight(n.Weight)
}

func fmtAttrs(n flow.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if c, ok := opts.Colors[n.Label]; ok && c != nil {
		hex, _ := render.HexAlpha(c)
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", hex))
	}
	if n.Weight <= 0 {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=grey")
	}
	return attrs
}

func fmtWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

func maxFlow(g *flow.Graph) float64 {
	var m float64
	for _, tr := range g.Transitions {
		for _, f := range tr {
			m = max(m, f.Weight)
		}
	}
	return m
}

func penWidth(w, maxW float64) float64 {
	if maxW <= 0 {
		return minPenWidth
	}
	return minPenWidth + (maxPenWidth-minPenWidth)*w/maxW
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from the
// origin with its natural size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
