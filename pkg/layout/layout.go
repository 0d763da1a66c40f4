package layout

import (
	"cmp"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/flow"
)

// Frame defaults, in frame units (pixels in SVG output).
const (
	DefaultWidth        = 800.0
	DefaultHeight       = 600.0
	DefaultMarginX      = 20.0
	DefaultMarginTop    = 32.0
	DefaultMarginBottom = 12.0
	DefaultNodeGap      = 4.0

	nodeWidthRatio = 0.1
	minNodeWidth   = 4.0
	maxNodeWidth   = 40.0
)

// Order selects how nodes are stacked within a column.
type Order string

const (
	// OrderFirstSeen stacks nodes in the order their label first appears.
	OrderFirstSeen Order = "first-seen"
	// OrderLabel stacks nodes by label, lexically.
	OrderLabel Order = "label"
	// OrderWeight stacks heavier nodes first; equal weights keep
	// first-seen order.
	OrderWeight Order = "weight"
)

// ParseOrder converts a user-supplied name to an Order. The empty string
// selects [OrderFirstSeen].
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(s)); o {
	case "":
		return OrderFirstSeen, nil
	case OrderFirstSeen, OrderLabel, OrderWeight:
		return o, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid order: %q (must be one of: first-seen, label, weight)", s)
}

// Options configures [Compute]. Zero values select the defaults.
type Options struct {
	Width        float64
	Height       float64
	MarginX      float64
	MarginTop    float64
	MarginBottom float64

	// NodeWidth is the width of every node. Zero derives it from the stage
	// pitch.
	NodeWidth float64
	// Spacing is the horizontal distance between the left edges of
	// adjacent columns. Zero spreads the columns across the frame.
	Spacing float64
	// NodeGap is the vertical gap between consecutive nodes of a column.
	// Nil selects DefaultNodeGap; use [Gap](0) for no gap at all.
	NodeGap *float64

	Order  Order
	Logger *log.Logger

	gap float64 // resolved NodeGap
}

// Gap returns a pointer to v for [Options.NodeGap].
func Gap(v float64) *float64 { return &v }

func (o *Options) setDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.MarginX == 0 {
		o.MarginX = DefaultMarginX
	}
	if o.MarginTop == 0 {
		o.MarginTop = DefaultMarginTop
	}
	if o.MarginBottom == 0 {
		o.MarginBottom = DefaultMarginBottom
	}
	o.gap = DefaultNodeGap
	if o.NodeGap != nil {
		o.gap = *o.NodeGap
	}
	if o.Order == "" {
		o.Order = OrderFirstSeen
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"width", o.Width}, {"height", o.Height},
		{"margin-x", o.MarginX}, {"margin-top", o.MarginTop}, {"margin-bottom", o.MarginBottom},
		{"node-width", o.NodeWidth}, {"spacing", o.Spacing}, {"node-gap", o.gap},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be finite, got %g", v.name, v.value)
		}
		if v.value < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative, got %g", v.name, v.value)
		}
	}
	if _, err := ParseOrder(string(o.Order)); err != nil {
		return err
	}
	return nil
}

// Compute places the nodes and bands of g inside the frame described by
// opts.
//
// One scale is shared by all columns: the heaviest stage fills the usable
// height (the frame minus its margins and that stage's gaps) and lighter
// stages leave proportional space at the bottom. Inside a node, outgoing
// bands are stacked in the order of their target nodes and incoming bands in
// the order of their source nodes, each taking a share of the node height
// proportional to its weight.
//
// A node of zero weight is logged as a warning and placed with zero height.
func Compute(g *flow.Graph, opts Options) (Layout, error) {
	if g == nil || len(g.Stages) == 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "nothing to lay out")
	}
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return Layout{}, err
	}

	stages := len(g.Stages)
	usableW := opts.Width - 2*opts.MarginX
	nodeW := opts.NodeWidth
	if nodeW == 0 {
		pitch := usableW / float64(max(stages-1, 1))
		nodeW = min(maxNodeWidth, max(minNodeWidth, pitch*nodeWidthRatio))
	}
	if nodeW > usableW {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "frame width %g leaves no room for nodes of width %g", opts.Width, nodeW)
	}
	spacing := opts.Spacing
	if spacing == 0 && stages > 1 {
		spacing = (usableW - nodeW) / float64(stages-1)
	}

	ordered := make([][]flow.Node, stages)
	maxGaps := 0
	for s, st := range g.Stages {
		ordered[s] = sortNodes(st.Nodes, opts.Order)
		nonEmpty := 0
		for _, n := range st.Nodes {
			if n.Weight > 0 {
				nonEmpty++
			}
		}
		maxGaps = max(maxGaps, nonEmpty-1)
	}

	usableH := opts.Height - opts.MarginTop - opts.MarginBottom - opts.gap*float64(maxGaps)
	if usableH <= 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "frame height %g is too small for %d gaps of %g", opts.Height, maxGaps, opts.gap)
	}

	var scale float64
	if total := g.MaxStageTotal(); total > 0 {
		scale = usableH / total
	}

	l := Layout{
		FrameWidth:  opts.Width,
		FrameHeight: opts.Height,
		MarginTop:   opts.MarginTop,
		Scale:       scale,
		NodeGap:     opts.gap,
		Order:       opts.Order,
		Labels:      g.Labels,
		Columns:     make([]Column, stages),
	}

	for s, st := range g.Stages {
		x0 := opts.MarginX + float64(s)*spacing
		if stages == 1 {
			x0 = opts.MarginX + (usableW-nodeW)/2
		}
		col := Column{Index: s, Name: st.Name, Total: st.Total, X0: x0, X1: x0 + nodeW}
		col.Nodes = make([]NodeBox, 0, len(ordered[s]))

		y := opts.MarginTop
		placed := 0
		for _, n := range ordered[s] {
			box := NodeBox{Stage: s, Label: n.Label, Weight: n.Weight, X0: col.X0, X1: col.X1}
			if n.Weight <= 0 {
				opts.Logger.Warn("node has zero weight", "stage", st.Name, "label", n.Label)
				box.Y0, box.Y1 = y, y
				col.Nodes = append(col.Nodes, box)
				continue
			}
			if placed > 0 {
				y += opts.gap
			}
			box.Y0 = y
			box.Y1 = y + scale*n.Weight
			y = box.Y1
			placed++
			col.Nodes = append(col.Nodes, box)
		}
		l.Columns[s] = col
	}

	for s, tr := range g.Transitions {
		l.Bands = append(l.Bands, placeBands(l.Columns[s], l.Columns[s+1], tr)...)
	}

	opts.Logger.Debug("computed layout",
		"stages", stages, "nodes", g.NodeCount(), "flows", g.FlowCount(), "scale", scale)
	return l, nil
}

// placeBands assigns spans to the flows of one transition. The returned
// bands keep the order of flows.
func placeBands(src, dst Column, flows []flow.Flow) []Band {
	srcPos := positions(src)
	dstPos := positions(dst)

	bands := make([]Band, len(flows))
	for i, f := range flows {
		bands[i] = Band{
			Stage: f.Stage, Source: f.Source, Target: f.Target, Weight: f.Weight,
			X0: src.X1, X1: dst.X0,
		}
	}

	// Source side: group by source node, stack by target position.
	for _, box := range src.Nodes {
		idx := sides(flows, func(f flow.Flow) bool { return f.Source == box.Label })
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(dstPos[flows[a].Target], dstPos[flows[b].Target])
		})
		stack(box, idx, flows, func(i int, sp Span) { bands[i].SourceSpan = sp })
	}

	// Target side: group by target node, stack by source position.
	for _, box := range dst.Nodes {
		idx := sides(flows, func(f flow.Flow) bool { return f.Target == box.Label })
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(srcPos[flows[a].Source], srcPos[flows[b].Source])
		})
		stack(box, idx, flows, func(i int, sp Span) { bands[i].TargetSpan = sp })
	}
	return bands
}

func sides(flows []flow.Flow, match func(flow.Flow) bool) []int {
	var idx []int
	for i, f := range flows {
		if match(f) {
			idx = append(idx, i)
		}
	}
	return idx
}

// stack partitions the height of box among the flows at idx, in order.
func stack(box NodeBox, idx []int, flows []flow.Flow, set func(int, Span)) {
	var total float64
	for _, i := range idx {
		total += flows[i].Weight
	}
	y := box.Y0
	for n, i := range idx {
		var h float64
		if total > 0 {
			h = box.Height() * flows[i].Weight / total
		}
		sp := Span{Y0: y, Y1: y + h}
		if n == len(idx)-1 && total > 0 {
			sp.Y1 = box.Y1
		}
		set(i, sp)
		y = sp.Y1
	}
}

func positions(c Column) map[string]int {
	pos := make(map[string]int, len(c.Nodes))
	for i, b := range c.Nodes {
		pos[b.Label] = i
	}
	return pos
}

func sortNodes(nodes []flow.Node, order Order) []flow.Node {
	out := slices.Clone(nodes)
	switch order {
	case OrderLabel:
		slices.SortStableFunc(out, func(a, b flow.Node) int { return cmp.Compare(a.Label, b.Label) })
	case OrderWeight:
		slices.SortStableFunc(out, func(a, b flow.Node) int { return cmp.Compare(b.Weight, a.Weight) })
	}
	return out
}

func sortBy(bands []Band, key func(Band) float64) {
	slices.SortStableFunc(bands, func(a, b Band) int { return cmp.Compare(key(a), key(b)) })
}
