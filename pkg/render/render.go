package render

import (
	"image/color"

	"github.com/matzehuels/sankey/pkg/layout"
)

// Default styling values.
const (
	DefaultFlowAlpha = 0.4
	DefaultNodeAlpha = 0.5
	DefaultFontSize  = 12.0

	titleOffset = 8.0
)

// FlowColorBy selects which end of a band supplies its color.
type FlowColorBy int

const (
	BySource FlowColorBy = iota
	ByTarget
)

// Option configures [Draw].
type Option func(*drawer)

type drawer struct {
	colormap    Colormap
	colors      map[string]color.Color
	labelColors func(string) color.Color
	flowColor   color.Color
	flowColorBy FlowColorBy
	flowAlpha   float64
	nodeAlpha   float64
	labelColor  color.Color
	titleColor  color.Color
	stageLabels bool
	fontSize    float64
}

// WithColormap sets the colormap used to color labels.
func WithColormap(cm Colormap) Option { return func(d *drawer) { d.colormap = cm } }

// WithColors supplies explicit label colors. Labels missing from the map,
// or mapped to nil, fall back to the colormap.
func WithColors(c map[string]color.Color) Option { return func(d *drawer) { d.colors = c } }

// WithLabelColors colors labels with fn. A nil result falls back to
// [WithColors] and then the colormap.
func WithLabelColors(fn func(label string) color.Color) Option {
	return func(d *drawer) { d.labelColors = fn }
}

// WithFlowColor draws every band in c instead of its node color.
func WithFlowColor(c color.Color) Option { return func(d *drawer) { d.flowColor = c } }

// WithFlowColorBy colors bands by their source (default) or target node.
func WithFlowColorBy(by FlowColorBy) Option { return func(d *drawer) { d.flowColorBy = by } }

// WithFlowAlpha sets band opacity (default 0.4).
func WithFlowAlpha(a float64) Option { return func(d *drawer) { d.flowAlpha = clamp01(a) } }

// WithNodeAlpha sets node opacity (default 0.5).
func WithNodeAlpha(a float64) Option { return func(d *drawer) { d.nodeAlpha = clamp01(a) } }

// WithLabelColor sets the node label color. Nil hides labels.
func WithLabelColor(c color.Color) Option { return func(d *drawer) { d.labelColor = c } }

// WithTitleColor sets the stage title color. Nil hides titles.
func WithTitleColor(c color.Color) Option { return func(d *drawer) { d.titleColor = c } }

// WithStageLabels toggles the stage titles above each column.
func WithStageLabels(show bool) Option { return func(d *drawer) { d.stageLabels = show } }

// WithFontSize sets the size of labels and titles.
func WithFontSize(size float64) Option {
	return func(d *drawer) {
		if size > 0 {
			d.fontSize = size
		}
	}
}

// Diagram is the result of [Draw].
type Diagram struct {
	Layout  layout.Layout
	Colors  map[string]color.Color
	Surface Surface
}

// Draw paints l onto s: bands first, then nodes, then text.
func Draw(s Surface, l layout.Layout, opts ...Option) *Diagram {
	d := drawer{
		colormap:    JetR,
		flowAlpha:   DefaultFlowAlpha,
		nodeAlpha:   DefaultNodeAlpha,
		labelColor:  color.Black,
		titleColor:  color.Black,
		stageLabels: true,
		fontSize:    DefaultFontSize,
	}
	for _, opt := range opts {
		opt(&d)
	}

	colors := d.palette(l)

	for _, b := range l.Bands {
		if b.Weight <= 0 {
			continue
		}
		s.FillPath(Ribbon(b), WithAlpha(d.bandColor(b, colors), d.flowAlpha))
	}

	for _, col := range l.Columns {
		for _, n := range col.Nodes {
			if n.Height() <= 0 {
				continue
			}
			s.FillRect(n.X0, n.Y0, n.Width(), n.Height(), WithAlpha(colors[n.Label], d.nodeAlpha))
		}
	}

	if d.labelColor != nil {
		st := TextStyle{Size: d.fontSize, Color: d.labelColor}
		for _, col := range l.Columns {
			for _, n := range col.Nodes {
				if n.Height() > 0 {
					s.Text(n.CenterX(), n.CenterY(), n.Label, st)
				}
			}
		}
	}

	if d.stageLabels && d.titleColor != nil {
		st := TextStyle{Size: d.fontSize, Color: d.titleColor, Baseline: BaselineBottom}
		y := max(l.MarginTop-titleOffset, d.fontSize)
		for _, col := range l.Columns {
			s.Text(col.CenterX(), y, col.Name, st)
		}
	}

	return &Diagram{Layout: l, Colors: colors, Surface: s}
}

// palette assigns a color to every node label of l.
func (d *drawer) palette(l layout.Layout) map[string]color.Color {
	colors := Palette(l.NodeLabels(), d.colormap)
	for label := range colors {
		if c := d.colors[label]; c != nil {
			colors[label] = c
		}
		if d.labelColors == nil {
			continue
		}
		if c := d.labelColors(label); c != nil {
			colors[label] = c
		}
	}
	return colors
}

func (d *drawer) bandColor(b layout.Band, colors map[string]color.Color) color.Color {
	switch {
	case d.flowColor != nil:
		return d.flowColor
	case d.flowColorBy == ByTarget:
		return colors[b.Target]
	default:
		return colors[b.Source]
	}
}

// Ribbon returns the outline of b. The top edge is a cubic curve from the
// top of the source span to the top of the target span with both control
// points on the horizontal midpoint; the bottom edge mirrors it.
func Ribbon(b layout.Band) Path {
	mid := (b.X0 + b.X1) / 2
	s, t := b.SourceSpan, b.TargetSpan

	var p Path
	p.MoveTo(b.X0, s.Y0)
	p.CubicTo(mid, s.Y0, mid, t.Y0, b.X1, t.Y0)
	p.LineTo(b.X1, t.Y1)
	p.CubicTo(mid, t.Y1, mid, s.Y1, b.X0, s.Y1)
	p.Close()
	return p
}
