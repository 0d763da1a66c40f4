package layout

// NodeBox is the placed rectangle of one node. Coordinates are in frame
// units with y growing downward, so Y0 is the top edge.
type NodeBox struct {
	Stage  int
	Label  string
	Weight float64
	X0, X1 float64
	Y0, Y1 float64
}

// Width returns the horizontal span of the box.
func (b NodeBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical span of the box.
func (b NodeBox) Height() float64 { return b.Y1 - b.Y0 }

// CenterX returns the horizontal center point of the box.
func (b NodeBox) CenterX() float64 { return (b.X0 + b.X1) / 2 }

// CenterY returns the vertical center point of the box.
func (b NodeBox) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// Span is a vertical sub-extent of a node.
type Span struct {
	Y0, Y1 float64
}

// Height returns the vertical size of the span.
func (s Span) Height() float64 { return s.Y1 - s.Y0 }

// Band is the placed geometry of one flow: it leaves the right edge of the
// source node at SourceSpan and enters the left edge of the target node at
// TargetSpan.
type Band struct {
	Stage      int // source stage
	Source     string
	Target     string
	Weight     float64
	X0, X1     float64
	SourceSpan Span
	TargetSpan Span
}

// Column is one placed stage.
type Column struct {
	Index  int
	Name   string
	Total  float64
	X0, X1 float64
	Nodes  []NodeBox // in stacking order, top to bottom
}

// CenterX returns the horizontal center of the column.
func (c Column) CenterX() float64 { return (c.X0 + c.X1) / 2 }

// Layout is the complete geometry of a diagram.
type Layout struct {
	FrameWidth  float64
	FrameHeight float64
	MarginTop   float64
	Scale       float64 // frame units per unit of weight, shared by all columns
	NodeGap     float64
	Order       Order
	Labels      []string // distinct labels, row-major first occurrence
	Columns     []Column
	Bands       []Band // grouped by transition, first-occurrence order within each
}

// Node returns the box of label at stage.
func (l Layout) Node(stage int, label string) (NodeBox, bool) {
	if stage < 0 || stage >= len(l.Columns) {
		return NodeBox{}, false
	}
	for _, b := range l.Columns[stage].Nodes {
		if b.Label == label {
			return b, true
		}
	}
	return NodeBox{}, false
}

// NodeLabels returns the distinct labels of l: those in l.Labels first,
// then any node label they miss in stage-major stacking order.
func (l Layout) NodeLabels() []string {
	seen := make(map[string]bool, len(l.Labels))
	var out []string
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	for _, label := range l.Labels {
		add(label)
	}
	for _, col := range l.Columns {
		for _, n := range col.Nodes {
			add(n.Label)
		}
	}
	return out
}

// BandsFrom returns the bands leaving label at stage, ordered by their
// source span from top to bottom.
func (l Layout) BandsFrom(stage int, label string) []Band {
	var out []Band
	for _, b := range l.Bands {
		if b.Stage == stage && b.Source == label {
			out = append(out, b)
		}
	}
	sortBy(out, func(b Band) float64 { return b.SourceSpan.Y0 })
	return out
}

// BandsInto returns the bands entering label at stage, ordered by their
// target span from top to bottom.
func (l Layout) BandsInto(stage int, label string) []Band {
	var in []Band
	for _, b := range l.Bands {
		if b.Stage+1 == stage && b.Target == label {
			in = append(in, b)
		}
	}
	sortBy(in, func(b Band) float64 { return b.TargetSpan.Y0 })
	return in
}

// Width returns the node width shared by the column.
func (c Column) Width() float64 { return c.X1 - c.X0 }
