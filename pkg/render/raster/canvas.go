// Package raster implements a [render.Surface] that paints into an
// anti-aliased bitmap and encodes it as PNG.
//
// Text uses the embedded Go Regular font, so output does not depend on the
// fonts installed on the host.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/render"
)

const (
	// DefaultScale is the pixel density used when none is given.
	DefaultScale = 2.0
	// MaxPixels bounds the bitmap size; four bytes are allocated per pixel.
	MaxPixels = 1 << 26
)

var (
	fontOnce sync.Once
	goFont   *truetype.Font
	fontErr  error
)

func regular() (*truetype.Font, error) {
	fontOnce.Do(func() { goFont, fontErr = truetype.Parse(goregular.TTF) })
	return goFont, fontErr
}

// Option configures a [Canvas].
type Option func(*Canvas)

// WithScale sets the number of pixels per frame unit.
func WithScale(s float64) Option {
	return func(c *Canvas) {
		if s > 0 {
			c.scale = s
		}
	}
}

// WithBackground sets the background color (default white). Nil leaves
// the image transparent.
func WithBackground(bg color.Color) Option { return func(c *Canvas) { c.background = bg } }

// Canvas draws onto a gg context. Create one with [New].
type Canvas struct {
	dc         *gg.Context
	scale      float64
	background color.Color
	faces      map[float64]font.Face
	font       *truetype.Font
}

var _ render.Surface = (*Canvas)(nil)

// New returns a canvas covering a width×height frame.
func New(width, height float64, opts ...Option) (*Canvas, error) {
	c := &Canvas{scale: DefaultScale, background: color.White, faces: make(map[float64]font.Face)}
	for _, opt := range opts {
		opt(c)
	}
	f, err := regular()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font")
	}
	c.font = f

	pw, ph := width*c.scale, height*c.scale
	if !(pw > 0 && ph > 0) || math.IsInf(pw, 0) || math.IsInf(ph, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid canvas size %gx%g", width, height)
	}
	if pw*ph > MaxPixels {
		return nil, errors.New(errors.ErrCodeInvalidInput, "canvas of %.0fx%.0f px exceeds %d pixels", pw, ph, MaxPixels)
	}
	w, h := int(pw+0.5), int(ph+0.5)
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid canvas size %gx%g", width, height)
	}
	c.dc = gg.NewContext(w, h)
	if c.background != nil {
		c.dc.SetColor(c.background)
		c.dc.Clear()
	}
	c.dc.Scale(c.scale, c.scale)
	return c, nil
}

// FillRect fills the axis-aligned rectangle at (x, y) of size w×h.
func (c *Canvas) FillRect(x, y, w, h float64, fill color.Color) {
	if fill == nil {
		return
	}
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.SetColor(fill)
	c.dc.Fill()
}

// FillPath fills the closed outline p.
func (c *Canvas) FillPath(p render.Path, fill color.Color) {
	if fill == nil || len(p) == 0 {
		return
	}
	c.dc.NewSubPath()
	for _, seg := range p {
		switch seg.Op {
		case render.MoveTo:
			c.dc.MoveTo(seg.Pts[0].X, seg.Pts[0].Y)
		case render.LineTo:
			c.dc.LineTo(seg.Pts[0].X, seg.Pts[0].Y)
		case render.CubicTo:
			c.dc.CubicTo(seg.Pts[0].X, seg.Pts[0].Y, seg.Pts[1].X, seg.Pts[1].Y, seg.Pts[2].X, seg.Pts[2].Y)
		case render.Close:
			c.dc.ClosePath()
		}
	}
	c.dc.SetColor(fill)
	c.dc.Fill()
}

// Text draws s anchored at (x, y).
func (c *Canvas) Text(x, y float64, s string, st render.TextStyle) {
	if st.Color == nil || s == "" {
		return
	}
	c.dc.SetFontFace(c.face(st.Size))
	c.dc.SetColor(st.Color)

	ax := 0.5
	switch st.Anchor {
	case render.AnchorStart:
		ax = 0
	case render.AnchorEnd:
		ax = 1
	}
	ay := 0.5
	if st.Baseline == render.BaselineBottom {
		ay = 0
	}
	// Glyphs are drawn in device pixels, so anchor offsets are measured
	// there and mapped back to frame units.
	w, h := c.dc.MeasureString(s)
	c.dc.DrawString(s, x-ax*w/c.scale, y+ay*h/c.scale)
}

// face returns a cached font face for size, rasterized at the canvas scale.
func (c *Canvas) face(size float64) font.Face {
	if size <= 0 {
		size = render.DefaultFontSize
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(c.font, &truetype.Options{Size: size * c.scale, DPI: 72, Hinting: font.HintingNone})
	c.faces[size] = f
	return f
}

// Image returns the painted bitmap.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the bitmap to w.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := c.dc.EncodePNG(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

// PNG returns the bitmap encoded as PNG.
func (c *Canvas) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
