package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/sankey/pkg/render"
)

func TestCanvasDocument(t *testing.T) {
	c := New(200, 100)
	out := string(c.Bytes())

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200.0 100.0" width="200" height="100">`) {
		t.Errorf("unexpected header: %s", out)
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document should be closed")
	}
}

func TestCanvasElements(t *testing.T) {
	c := New(200, 100, WithBackground(color.White))
	c.FillRect(1, 2, 3, 4, color.NRGBA{R: 255, A: 128})

	var p render.Path
	p.MoveTo(0, 0)
	p.CubicTo(5, 0, 5, 10, 10, 10)
	p.LineTo(10, 20)
	p.Close()
	c.FillPath(p, color.NRGBA{B: 255, A: 255})
	c.Text(50, 60, "a<b", render.TextStyle{Size: 12, Color: color.Black, Anchor: render.AnchorStart, Baseline: render.BaselineBottom})

	out := string(c.Bytes())
	for _, want := range []string{
		`<rect width="100%" height="100%" fill="#ffffff"/>`,
		`<rect x="1.00" y="2.00" width="3.00" height="4.00" fill="#ff0000" fill-opacity="0.502"/>`,
		`<path d="M 0.00 0.00 C 5.00 0.00 5.00 10.00 10.00 10.00 L 10.00 20.00 Z" fill="#0000ff"/>`,
		`text-anchor="start" dominant-baseline="auto" fill="#000000">a&lt;b</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in\n%s", want, out)
		}
	}
}

func TestCanvasWellFormed(t *testing.T) {
	c := New(10, 10)
	c.Text(1, 1, `"quoted" & <tagged>`, render.TextStyle{Size: 8, Color: color.Black})
	c.FillRect(0, 0, 1, 1, nil)

	dec := xml.NewDecoder(bytes.NewReader(c.Bytes()))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			t.Fatalf("invalid XML: %v", err)
		}
	}
}

func TestCanvasBytesRepeatable(t *testing.T) {
	c := New(10, 10)
	c.FillRect(0, 0, 1, 1, color.Black)
	first := c.Bytes()
	if !bytes.Equal(first, c.Bytes()) {
		t.Error("Bytes should not consume the canvas")
	}
	c.FillRect(1, 1, 1, 1, color.Black)
	if bytes.Equal(first, c.Bytes()) {
		t.Error("drawing after Bytes should be kept")
	}
}

func TestCanvasDraw(t *testing.T) {
	var buf bytes.Buffer
	c := New(100, 100)
	var p render.Path
	p.MoveTo(0, 0)
	p.LineTo(1, 1)
	p.Close()
	c.FillPath(p, color.Black)
	if _, err := c.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "<path") != 1 {
		t.Errorf("expected one path, got %s", buf.String())
	}
}
