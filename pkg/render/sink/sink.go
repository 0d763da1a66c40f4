package sink

import (
	"bytes"
	"image/color"

	"github.com/matzehuels/sankey/pkg/io"
	"github.com/matzehuels/sankey/pkg/layout"
	"github.com/matzehuels/sankey/pkg/render"
	"github.com/matzehuels/sankey/pkg/render/raster"
	"github.com/matzehuels/sankey/pkg/render/svg"
)

// Option configures the sinks.
type Option func(*sink)

type sink struct {
	draw       []render.Option
	scale      float64
	background color.Color
}

// WithDrawOptions passes styling options through to [render.Draw].
func WithDrawOptions(opts ...render.Option) Option {
	return func(s *sink) { s.draw = append(s.draw, opts...) }
}

// WithScale sets the PNG pixel density (default 2.0 for 2x resolution).
func WithScale(scale float64) Option { return func(s *sink) { s.scale = scale } }

// WithBackground fills the frame before drawing. SVG defaults to
// transparent and PNG to white.
func WithBackground(c color.Color) Option { return func(s *sink) { s.background = c } }

func newSink(opts ...Option) sink {
	s := sink{scale: raster.DefaultScale}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// RenderSVG renders l as an SVG document.
func RenderSVG(l layout.Layout, opts ...Option) []byte {
	s := newSink(opts...)
	var cvOpts []svg.Option
	if s.background != nil {
		cvOpts = append(cvOpts, svg.WithBackground(s.background))
	}
	canvas := svg.New(l.FrameWidth, l.FrameHeight, cvOpts...)
	render.Draw(canvas, l, s.draw...)
	return canvas.Bytes()
}

// RenderPNG renders l as a PNG image.
func RenderPNG(l layout.Layout, opts ...Option) ([]byte, error) {
	s := newSink(opts...)
	cvOpts := []raster.Option{raster.WithScale(s.scale)}
	if s.background != nil {
		cvOpts = append(cvOpts, raster.WithBackground(s.background))
	}
	canvas, err := raster.New(l.FrameWidth, l.FrameHeight, cvOpts...)
	if err != nil {
		return nil, err
	}
	render.Draw(canvas, l, s.draw...)
	return canvas.PNG()
}

// RenderPDF renders l as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(l layout.Layout, opts ...Option) ([]byte, error) {
	return render.ToPDF(RenderSVG(l, opts...))
}

// RenderJSON exports l together with the label colors the draw options
// would produce.
func RenderJSON(l layout.Layout, opts ...Option) ([]byte, error) {
	s := newSink(opts...)
	d := render.Draw(discard{}, l, s.draw...)

	var buf bytes.Buffer
	if err := io.WriteJSON(l, &buf, io.WithColors(d.Colors)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// discard is a Surface that draws nothing.
type discard struct{}

func (discard) FillRect(x, y, w, h float64, fill color.Color)      {}
func (discard) FillPath(p render.Path, fill color.Color)           {}
func (discard) Text(x, y float64, s string, st render.TextStyle) {}
