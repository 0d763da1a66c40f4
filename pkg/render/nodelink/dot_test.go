package nodelink

import (
	"image/color"
	"strings"
	"testing"

	"github.com/matzehuels/sankey/pkg/flow"
	"github.com/matzehuels/sankey/pkg/table"
)

func graph(t *testing.T, data [][]any) *flow.Graph {
	t.Helper()
	tbl, err := table.Normalize(data)
	if err != nil {
		t.Fatal(err)
	}
	return flow.Aggregate(tbl)
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(graph(t, [][]any{{1, "a", "x"}, {2, "b", "x"}, {1, "a", "y"}}), Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, id := range []string{`"0:a"`, `"0:b"`, `"1:x"`, `"1:y"`} {
		if !strings.Contains(dot, id) {
			t.Errorf("ToDOT() output missing node %s", id)
		}
	}
	if !strings.Contains(dot, `"0:b" -> "1:x" [penwidth=12.00]`) {
		t.Error("heaviest flow should get the widest pen")
	}
	if !strings.Contains(dot, `"0:a" -> "1:x" [penwidth=6.50]`) {
		t.Errorf("half-weight flow pen width wrong:\n%s", dot)
	}
	if strings.Count(dot, "rank=same") != 2 {
		t.Error("expected one rank per stage")
	}
}

func TestToDOT_SameLabelAcrossStages(t *testing.T) {
	dot := ToDOT(graph(t, [][]any{{1, "a", "a"}}), Options{})
	if !strings.Contains(dot, `"0:a" -> "1:a"`) {
		t.Errorf("stages should be kept apart:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(graph(t, [][]any{{2.5, "a", "b"}}), Options{Detailed: true})

	if !strings.Contains(dot, `label="a\n2.5"`) {
		t.Errorf("detailed node label missing weight:\n%s", dot)
	}
	if !strings.Contains(dot, `label="2.5"]`) {
		t.Error("detailed edge label missing weight")
	}
}

func TestToDOT_Colors(t *testing.T) {
	dot := ToDOT(graph(t, [][]any{{1, "a", "b"}}), Options{Colors: map[string]color.Color{"a": color.NRGBA{R: 255, A: 255}}})
	if !strings.Contains(dot, `fillcolor="#ff0000"`) {
		t.Errorf("missing fill color:\n%s", dot)
	}
}

func TestToDOT_ZeroWeight(t *testing.T) {
	dot := ToDOT(graph(t, [][]any{{0, "ghost", "b"}, {1, "a", "b"}}), Options{})
	if !strings.Contains(dot, "dashed") {
		t.Error("zero-weight node should be dashed")
	}
}

func TestFmtLabel(t *testing.T) {
	n := flow.Node{Label: "node", Weight: 3}
	if got := fmtLabel(n, false); got != "node" {
		t.Errorf("fmtLabel() simple = %q", got)
	}
	if got := fmtLabel(n, true); got != "node\n3" {
		t.Errorf("fmtLabel() detailed = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Error("SVG without viewBox should pass through")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(graph(t, [][]any{{1, "a", "b"}}), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}
