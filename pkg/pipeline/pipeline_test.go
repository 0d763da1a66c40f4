package pipeline

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/render"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"sankey", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestSplitFormats(t *testing.T) {
	got := SplitFormats(" SVG, png,,svg ,json")
	want := []string{"svg", "png", "json"}
	if !slices.Equal(got, want) {
		t.Errorf("SplitFormats = %v, want %v", got, want)
	}
	if got := SplitFormats(""); len(got) != 0 {
		t.Errorf("SplitFormats(\"\") = %v, want empty", got)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var opts Options
	opts.SetRenderDefaults()

	if opts.VizType != VizTypeSankey {
		t.Errorf("VizType = %q, want %q", opts.VizType, VizTypeSankey)
	}
	if !slices.Equal(opts.Formats, []string{FormatSVG}) {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Colormap != render.DefaultColormap {
		t.Errorf("Colormap = %q, want %q", opts.Colormap, render.DefaultColormap)
	}
	if *opts.FlowAlpha != render.DefaultFlowAlpha || *opts.NodeAlpha != render.DefaultNodeAlpha {
		t.Errorf("alphas = %g/%g, want %g/%g", *opts.FlowAlpha, *opts.NodeAlpha, render.DefaultFlowAlpha, render.DefaultNodeAlpha)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestExplicitZeroAlphaSurvivesDefaults(t *testing.T) {
	opts := Options{FlowAlpha: Float(0)}
	opts.SetRenderDefaults()
	if *opts.FlowAlpha != 0 {
		t.Errorf("FlowAlpha = %g, want 0", *opts.FlowAlpha)
	}
}

func TestValidateForRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"alpha above one", Options{FlowAlpha: Float(1.5)}, errors.ErrCodeInvalidInput},
		{"negative alpha", Options{NodeAlpha: Float(-0.1)}, errors.ErrCodeInvalidInput},
		{"unknown colormap", Options{Colormap: "rainbow"}, errors.ErrCodeInvalidColormap},
		{"bad color_by", Options{ColorBy: "middle"}, errors.ErrCodeInvalidInput},
		{"bad flow color", Options{FlowColor: "#12"}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidInput},
		{"nodelink json", Options{VizType: VizTypeNodelink, Formats: []string{"json"}}, errors.ErrCodeUnsupported},
		{"nan alpha", Options{FlowAlpha: Float(math.NaN())}, errors.ErrCodeInvalidInput},
		{"nan scale", Options{Scale: math.NaN()}, errors.ErrCodeInvalidInput},
		{"infinite font size", Options{FontSize: math.Inf(1)}, errors.ErrCodeInvalidInput},
		{"nan width", Options{Width: math.NaN()}, errors.ErrCodeInvalidInput},
		{"png too large", Options{Width: 100000, Height: 100000, Scale: 4, Formats: []string{"png"}}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateForRender() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidateLargeFrameWithoutPNG(t *testing.T) {
	opts := Options{Width: 100000, Height: 100000, Scale: 4, Formats: []string{"svg"}}
	if err := opts.ValidateForRender(); err != nil {
		t.Errorf("svg has no pixel budget, got %v", err)
	}
}

func TestValidateForLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"nan width", Options{Width: math.NaN()}, "width must be a finite number"},
		{"infinite height", Options{Height: math.Inf(1)}, "height must be a finite number"},
		{"negative margin", Options{MarginX: -1}, "margin_x must not be negative"},
		{"nan gap", Options{NodeGap: Float(math.NaN())}, "node_gap must be a finite number"},
		// width is reported before node_gap on every run
		{"first field wins", Options{Width: -1, NodeGap: Float(-1)}, "width must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("ValidateForLayout() = %v, want INVALID_INPUT", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ValidateForLayout() = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestDecodeOptionsHugePNG(t *testing.T) {
	var opts Options
	err := DecodeOptions(map[string]any{"width": "100000", "height": "100000", "scale": "4", "formats": "png"}, &opts)
	if err != nil {
		t.Fatalf("DecodeOptions: %v", err)
	}
	if err := opts.ValidateForRender(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ValidateForRender() = %v, want INVALID_INPUT", err)
	}
}

func TestValidateForLoad(t *testing.T) {
	var opts Options
	if err := opts.ValidateForLoad(); !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("empty options: got %v, want EMPTY_INPUT", err)
	}

	opts = Options{Source: []byte("w,a\n1,x\n")}
	if err := opts.ValidateForLoad(); err != nil {
		t.Fatalf("inline source: %v", err)
	}
	if opts.InputFormat != "csv" {
		t.Errorf("InputFormat = %q, want csv", opts.InputFormat)
	}

	opts = Options{Source: []byte("x"), InputFormat: "xlsx"}
	if err := opts.ValidateForLoad(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad input format: got %v, want INVALID_FORMAT", err)
	}
}

func TestDrawOptionsHiddenText(t *testing.T) {
	opts := Options{NoLabels: true, TitleColor: "none"}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if _, err := opts.DrawOptions(); err != nil {
		t.Fatalf("DrawOptions: %v", err)
	}

	c, err := opts.textColor("", true)
	if err != nil || c != nil {
		t.Errorf("hidden text color = %v, %v; want nil", c, err)
	}
	c, err = opts.textColor("", false)
	if err != nil || c == nil {
		t.Errorf("default text color = %v, %v; want black", c, err)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{NoLabels: true}
	opts.SetRenderDefaults()

	svg := opts.ArtifactKeyOpts(FormatSVG)
	if svg.Labels != "none" {
		t.Errorf("Labels = %q, want none", svg.Labels)
	}
	if svg.Scale != 0 {
		t.Errorf("svg key should not depend on scale, got %g", svg.Scale)
	}
	if png := opts.ArtifactKeyOpts(FormatPNG); png.Scale != DefaultScale {
		t.Errorf("png Scale = %g, want %g", png.Scale, DefaultScale)
	}
}

func TestDecodeOptions(t *testing.T) {
	opts := Options{Width: 100}
	err := DecodeOptions(map[string]any{
		"height":     "300",
		"formats":    "svg, PNG",
		"flow_alpha": "0.25",
		"no_titles":  "true",
		"node_gap":   int64(6),
		"colormap":   "tab10",
	}, &opts)
	if err != nil {
		t.Fatalf("DecodeOptions: %v", err)
	}

	if opts.Width != 100 || opts.Height != 300 || opts.NodeGap == nil || *opts.NodeGap != 6 {
		t.Errorf("sizes = %g/%g/%v, want 100/300/6", opts.Width, opts.Height, opts.NodeGap)
	}
	if !slices.Equal(opts.Formats, []string{"svg", "png"}) {
		t.Errorf("Formats = %v, want [svg png]", opts.Formats)
	}
	if opts.FlowAlpha == nil || *opts.FlowAlpha != 0.25 {
		t.Errorf("FlowAlpha = %v, want 0.25", opts.FlowAlpha)
	}
	if !opts.NoTitles || opts.Colormap != "tab10" {
		t.Errorf("NoTitles = %v, Colormap = %q", opts.NoTitles, opts.Colormap)
	}
}

func TestDecodeOptionsErrors(t *testing.T) {
	tests := []map[string]any{
		{"colour": "red"},
		{"width": "wide"},
	}
	for _, m := range tests {
		var opts Options
		if err := DecodeOptions(m, &opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("DecodeOptions(%v) = %v, want INVALID_INPUT", m, err)
		}
	}
}
