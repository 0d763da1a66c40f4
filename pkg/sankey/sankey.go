// Package sankey draws Sankey diagrams from tabular flow data in one call.
//
// Each row of the input is one weighted path: the first column is the
// weight and every further column is the label at one stage.
//
//	d, err := sankey.Draw(nil, [][]any{
//	    {1, "a", "x"},
//	    {2, "b", "x"},
//	    {1, "a", "y"},
//	})
//	os.Stdout.Write(d.Surface.(*svg.Canvas).Bytes())
//
// Draw accepts any input [table.Normalize] understands and any
// [render.Surface]; passing nil draws onto a new SVG canvas sized to the
// frame. For the geometry alone, use [Compute].
package sankey

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/sankey/pkg/flow"
	"github.com/matzehuels/sankey/pkg/layout"
	"github.com/matzehuels/sankey/pkg/render"
	"github.com/matzehuels/sankey/pkg/render/svg"
	"github.com/matzehuels/sankey/pkg/table"
)

// Option configures [Draw] and [Compute].
type Option func(*config)

type config struct {
	layout layout.Options
	draw   []render.Option
}

// WithLayout replaces all layout options at once.
func WithLayout(opts layout.Options) Option {
	return func(c *config) {
		logger := c.layout.Logger
		c.layout = opts
		if c.layout.Logger == nil {
			c.layout.Logger = logger
		}
	}
}

// WithSize sets the frame size.
func WithSize(width, height float64) Option {
	return func(c *config) { c.layout.Width, c.layout.Height = width, height }
}

// WithNodeGap sets the vertical gap between nodes. Zero means none.
func WithNodeGap(gap float64) Option { return func(c *config) { c.layout.NodeGap = layout.Gap(gap) } }

// WithNodeWidth sets the width of every node.
func WithNodeWidth(w float64) Option { return func(c *config) { c.layout.NodeWidth = w } }

// WithOrder sets the stacking order of nodes within a stage.
func WithOrder(o layout.Order) Option { return func(c *config) { c.layout.Order = o } }

// WithLogger receives warnings such as zero-weight nodes.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.layout.Logger = l } }

// WithDrawOptions passes styling options through to [render.Draw].
func WithDrawOptions(opts ...render.Option) Option {
	return func(c *config) { c.draw = append(c.draw, opts...) }
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Compute normalizes data, aggregates it and lays it out. Input errors are
// returned before any geometry is computed.
func Compute(data any, opts ...Option) (layout.Layout, error) {
	c := newConfig(opts)
	return compute(data, c)
}

func compute(data any, c config) (layout.Layout, error) {
	t, err := table.Normalize(data)
	if err != nil {
		return layout.Layout{}, err
	}
	return layout.Compute(flow.Aggregate(t), c.layout)
}

// Draw computes the layout of data and paints it onto s. A nil s draws onto
// a new [svg.Canvas], available as the returned diagram's Surface.
func Draw(s render.Surface, data any, opts ...Option) (*render.Diagram, error) {
	c := newConfig(opts)
	l, err := compute(data, c)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = svg.New(l.FrameWidth, l.FrameHeight)
	}
	return render.Draw(s, l, c.draw...), nil
}
