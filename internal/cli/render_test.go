package cli

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/sankey/pkg/errors"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/flows.csv", "data/flows"},
		{"", "", "sankey"},
		{"out/diagram.svg", "flows.csv", "out/diagram"},
		{"out/diagram", "flows.csv", "out/diagram"},
		{"out/diagram.v2", "flows.csv", "out/diagram.v2"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		input   string
		formats []string
		want    map[string]string
	}{
		{"explicit single", "custom.out", "flows.csv", []string{"svg"}, map[string]string{"svg": "custom.out"}},
		{"derived", "", "flows.csv", []string{"svg", "png"}, map[string]string{"svg": "flows.svg", "png": "flows.png"}},
		{"derived json over json input", "", "flows.json", []string{"json"}, map[string]string{"json": "flows.layout.json"}},
		{"base over json input", "flows", "data/../flows.json", []string{"svg", "json"}, map[string]string{"svg": "flows.svg", "json": "flows.layout.json"}},
		{"stdin", "", "", []string{"json"}, map[string]string{"json": "sankey.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPaths(tt.output, tt.input, tt.formats)
			if err != nil {
				t.Fatalf("outputPaths: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutputPathsRefusesInput(t *testing.T) {
	_, err := outputPaths("./flows.json", "flows.json", []string{"json"})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("outputPaths() error = %v, want INVALID_PATH", err)
	}
}

func TestBuildOptionsPrecedence(t *testing.T) {
	config := writeFile(t, "sankey.toml", `
width = 1000
height = 500
colormap = "tab10"
formats = ["svg", "json"]
`)

	cmd := New(io.Discard, LogInfo).renderCommand()
	fs := cmd.Flags()
	for name, v := range map[string]string{"config": config, "height": "300", "flow-alpha": "0", "node-gap": "0"} {
		if err := fs.Set(name, v); err != nil {
			t.Fatal(err)
		}
	}

	var f renderFlags
	// The command binds flags to its own struct; re-read the values.
	f.config, _ = fs.GetString("config")
	f.height, _ = fs.GetFloat64("height")
	f.flowAlpha, _ = fs.GetFloat64("flow-alpha")
	f.nodeGap, _ = fs.GetFloat64("node-gap")

	opts, err := buildOptions(fs, &f, "flows.csv", nil)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}

	if opts.Width != 1000 {
		t.Errorf("Width = %g, want 1000 from config", opts.Width)
	}
	if opts.Height != 300 {
		t.Errorf("Height = %g, want 300 from flag", opts.Height)
	}
	if opts.Colormap != "tab10" {
		t.Errorf("Colormap = %q, want tab10", opts.Colormap)
	}
	if !slices.Equal(opts.Formats, []string{"svg", "json"}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if *opts.FlowAlpha != 0 {
		t.Errorf("FlowAlpha = %g, want explicit 0", *opts.FlowAlpha)
	}
	if opts.NodeGap == nil || *opts.NodeGap != 0 {
		t.Errorf("NodeGap = %v, want explicit 0", opts.NodeGap)
	}
	if opts.Input != "flows.csv" {
		t.Errorf("Input = %q", opts.Input)
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeFile(t, "flows.csv", flowsCSV)
	base := filepath.Join(t.TempDir(), "out", "diagram")

	out, err := execute(t, nil, "render", input, "-f", "svg,json,dot", "-o", base, "--colormap", "hue", "--no-cache")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, ext := range []string{"svg", "json", "dot"} {
		data, err := os.ReadFile(base + "." + ext)
		if err != nil {
			t.Errorf("missing %s output: %v", ext, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s output is empty", ext)
		}
	}
	if !strings.Contains(out, "Rendered") || !strings.Contains(out, "4 nodes") {
		t.Errorf("summary = %q", out)
	}
}

func TestRenderStdin(t *testing.T) {
	output := filepath.Join(t.TempDir(), "stdin.svg")

	if _, err := execute(t, strings.NewReader(flowsCSV), "render", "-", "-o", output, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "<svg") {
		t.Errorf("output is not SVG: %.40q", data)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	input := writeFile(t, "flows.csv", flowsCSV)
	bad := writeFile(t, "bad.csv", "count,from\n-1,a\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"render", filepath.Join(t.TempDir(), "nope.csv")}, errors.ErrCodeFileNotFound},
		{"no input", []string{"render"}, errors.ErrCodeEmptyInput},
		{"bad format", []string{"render", input, "-f", "gif"}, errors.ErrCodeInvalidInput},
		{"bad colormap", []string{"render", input, "--colormap", "rainbow"}, errors.ErrCodeInvalidColormap},
		{"bad alpha", []string{"render", input, "--node-alpha", "3"}, errors.ErrCodeInvalidInput},
		{"negative weight", []string{"render", bad, "--no-cache"}, errors.ErrCodeInvalidWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, nil, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want code %s", err, tt.code)
			}
		})
	}
}
