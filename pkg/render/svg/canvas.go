// Package svg implements a [render.Surface] that builds an SVG document in
// memory.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"

	"github.com/matzehuels/sankey/pkg/render"
)

const defaultFontFamily = "Helvetica, Arial, sans-serif"

// Option configures a [Canvas].
type Option func(*Canvas)

// WithBackground paints the whole frame in c before anything else.
func WithBackground(c color.Color) Option { return func(cv *Canvas) { cv.background = c } }

// WithFontFamily sets the CSS font-family used for text.
func WithFontFamily(f string) Option { return func(cv *Canvas) { cv.fontFamily = f } }

// Canvas accumulates drawing calls as SVG elements. The zero value is not
// usable; create one with [New].
type Canvas struct {
	width, height float64
	fontFamily    string
	background    color.Color
	body          bytes.Buffer
}

var _ render.Surface = (*Canvas)(nil)

// New returns an empty canvas of the given frame size.
func New(width, height float64, opts ...Option) *Canvas {
	c := &Canvas{width: width, height: height, fontFamily: defaultFontFamily}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Size returns the frame size.
func (c *Canvas) Size() (float64, float64) { return c.width, c.height }

// FillRect fills the axis-aligned rectangle at (x, y) of size w×h.
func (c *Canvas) FillRect(x, y, w, h float64, fill color.Color) {
	fmt.Fprintf(&c.body, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"%s/>`+"\n", x, y, w, h, fillAttrs(fill))
}

// FillPath fills the closed outline p.
func (c *Canvas) FillPath(p render.Path, fill color.Color) {
	fmt.Fprintf(&c.body, `  <path d="%s"%s/>`+"\n", pathData(p), fillAttrs(fill))
}

// Text draws s anchored at (x, y).
func (c *Canvas) Text(x, y float64, s string, st render.TextStyle) {
	fmt.Fprintf(&c.body, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" text-anchor="%s" dominant-baseline="%s"%s>%s</text>`+"\n",
		x, y, c.fontFamily, st.Size, anchor(st.Anchor), baseline(st.Baseline), fillAttrs(st.Color), EscapeXML(s))
}

// Bytes returns the complete SVG document. It may be called more than once
// and drawing may continue afterwards.
func (c *Canvas) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		c.width, c.height, c.width, c.height)
	if c.background != nil {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%"%s/>`+"\n", fillAttrs(c.background))
	}
	buf.Write(c.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// WriteTo writes the document to w.
func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Bytes())
	return int64(n), err
}

// EscapeXML escapes s for use as SVG text content.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func fillAttrs(c color.Color) string {
	if c == nil {
		return ` fill="none"`
	}
	hex, a := render.HexAlpha(c)
	if a >= 1 {
		return fmt.Sprintf(` fill="%s"`, hex)
	}
	return fmt.Sprintf(` fill="%s" fill-opacity="%.3f"`, hex, a)
}

func pathData(p render.Path) string {
	var buf bytes.Buffer
	for i, seg := range p {
		if i > 0 {
			buf.WriteByte(' ')
		}
		switch seg.Op {
		case render.MoveTo:
			fmt.Fprintf(&buf, "M %.2f %.2f", seg.Pts[0].X, seg.Pts[0].Y)
		case render.LineTo:
			fmt.Fprintf(&buf, "L %.2f %.2f", seg.Pts[0].X, seg.Pts[0].Y)
		case render.CubicTo:
			fmt.Fprintf(&buf, "C %.2f %.2f %.2f %.2f %.2f %.2f",
				seg.Pts[0].X, seg.Pts[0].Y, seg.Pts[1].X, seg.Pts[1].Y, seg.Pts[2].X, seg.Pts[2].Y)
		case render.Close:
			buf.WriteByte('Z')
		}
	}
	return buf.String()
}

func anchor(a render.Anchor) string {
	switch a {
	case render.AnchorStart:
		return "start"
	case render.AnchorEnd:
		return "end"
	default:
		return "middle"
	}
}

func baseline(b render.Baseline) string {
	if b == render.BaselineBottom {
		return "auto"
	}
	return "central"
}
