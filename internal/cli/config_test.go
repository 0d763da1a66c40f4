package cli

import (
	"slices"
	"testing"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

func TestApplyConfig(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"toml", "sankey.toml", `
width = 640
order = "weight"
formats = ["png"]
flow_alpha = 0.0
no_titles = true
`},
		{"yaml", "sankey.yaml", `
width: 640
order: weight
formats: png
flow_alpha: 0
no_titles: true
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts pipeline.Options
			if err := applyConfig(writeFile(t, tt.file, tt.content), &opts); err != nil {
				t.Fatalf("applyConfig: %v", err)
			}
			if opts.Width != 640 || opts.Order != "weight" || !opts.NoTitles {
				t.Errorf("opts = %+v", opts)
			}
			if !slices.Equal(opts.Formats, []string{"png"}) {
				t.Errorf("Formats = %v, want [png]", opts.Formats)
			}
			if opts.FlowAlpha == nil || *opts.FlowAlpha != 0 {
				t.Errorf("FlowAlpha = %v, want explicit 0", opts.FlowAlpha)
			}
		})
	}
}

func TestApplyConfigEmptyPath(t *testing.T) {
	opts := pipeline.Options{Width: 10}
	if err := applyConfig("", &opts); err != nil {
		t.Fatal(err)
	}
	if opts.Width != 10 {
		t.Error("empty path should leave options untouched")
	}
}

func TestApplyConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", "/nonexistent/sankey.toml", errors.ErrCodeFileNotFound},
		{"extension", writeFile(t, "sankey.ini", "width=1"), errors.ErrCodeInvalidFormat},
		{"syntax", writeFile(t, "bad.toml", "width = [1,"), errors.ErrCodeInvalidFormat},
		{"unknown key", writeFile(t, "extra.yaml", "colour: red\n"), errors.ErrCodeInvalidInput},
		{"wrong type", writeFile(t, "type.yaml", "width: wide\n"), errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts pipeline.Options
			err := applyConfig(tt.path, &opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want code %s", err, tt.code)
			}
		})
	}
}
