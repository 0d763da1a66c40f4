package layout

import "testing"

func TestNodeBoxWidth(t *testing.T) {
	tests := []struct {
		name string
		box  NodeBox
		want float64
	}{
		{name: "positive width", box: NodeBox{X0: 10, X1: 50}, want: 40},
		{name: "zero width", box: NodeBox{X0: 10, X1: 10}, want: 0},
		{name: "from origin", box: NodeBox{X0: 0, X1: 100}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Width(); got != tt.want {
				t.Errorf("Width() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeBoxHeight(t *testing.T) {
	tests := []struct {
		name string
		box  NodeBox
		want float64
	}{
		{name: "positive height", box: NodeBox{Y0: 20, Y1: 80}, want: 60},
		{name: "zero height", box: NodeBox{Y0: 50, Y1: 50}, want: 0},
		{name: "from origin", box: NodeBox{Y0: 0, Y1: 100}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Height(); got != tt.want {
				t.Errorf("Height() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeBoxCenter(t *testing.T) {
	box := NodeBox{X0: 10, X1: 60, Y0: 20, Y1: 70}

	if box.CenterX() != 35 {
		t.Errorf("CenterX() = %v, want 35", box.CenterX())
	}
	if box.CenterY() != 45 {
		t.Errorf("CenterY() = %v, want 45", box.CenterY())
	}
}

func TestSpanHeight(t *testing.T) {
	if got := (Span{Y0: 3, Y1: 10}).Height(); got != 7 {
		t.Errorf("Height() = %v, want 7", got)
	}
}

func TestColumnCenterX(t *testing.T) {
	if got := (Column{X0: 100, X1: 120}).CenterX(); got != 110 {
		t.Errorf("CenterX() = %v, want 110", got)
	}
}

func TestLayoutNodeLabels(t *testing.T) {
	l := Layout{
		Labels: []string{"b", "b"},
		Columns: []Column{
			{Nodes: []NodeBox{{Label: "a"}, {Label: "b"}}},
			{Nodes: []NodeBox{{Label: "c"}, {Label: "a"}}},
		},
	}
	got := l.NodeLabels()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("NodeLabels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NodeLabels()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
