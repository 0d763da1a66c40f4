package render

import "image/color"

// Surface is the drawing collaborator used by [Draw]. Coordinates are frame
// units with y growing downward. Colors may carry alpha.
type Surface interface {
	FillRect(x, y, w, h float64, fill color.Color)
	FillPath(p Path, fill color.Color)
	Text(x, y float64, s string, st TextStyle)
}

// Op is the kind of a path segment.
type Op int

const (
	MoveTo Op = iota
	LineTo
	CubicTo
	Close
)

// Point is a position in frame units.
type Point struct{ X, Y float64 }

// Segment is one path instruction. MoveTo and LineTo use Pts[0]; CubicTo
// uses two control points followed by the end point; Close uses none.
type Segment struct {
	Op  Op
	Pts [3]Point
}

// End returns the point the segment finishes at.
func (s Segment) End() Point {
	switch s.Op {
	case CubicTo:
		return s.Pts[2]
	default:
		return s.Pts[0]
	}
}

// Path is a sequence of segments describing one closed or open outline.
type Path []Segment

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) { *p = append(*p, Segment{Op: MoveTo, Pts: [3]Point{{x, y}}}) }

// LineTo appends a straight segment to (x, y).
func (p *Path) LineTo(x, y float64) { *p = append(*p, Segment{Op: LineTo, Pts: [3]Point{{x, y}}}) }

// Close joins the current point back to the subpath start.
func (p *Path) Close() { *p = append(*p, Segment{Op: Close}) }

// CubicTo appends a cubic Bézier segment with control points (c1x, c1y)
// and (c2x, c2y), ending at (x, y).
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	*p = append(*p, Segment{Op: CubicTo, Pts: [3]Point{{c1x, c1y}, {c2x, c2y}, {x, y}}})
}

// Anchor is the horizontal alignment of text relative to its position.
type Anchor int

const (
	AnchorMiddle Anchor = iota
	AnchorStart
	AnchorEnd
)

// Baseline is the vertical alignment of text relative to its position.
type Baseline int

const (
	BaselineMiddle Baseline = iota
	BaselineBottom
)

// TextStyle describes how a string is drawn.
type TextStyle struct {
	Size     float64
	Color    color.Color
	Anchor   Anchor
	Baseline Baseline
}
