package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

// stdinName is the input argument that reads the table from standard input.
const stdinName = "-"

// renderFlags holds the command-line flags for the render command. Zero
// values defer to the config file and then to the pipeline defaults.
type renderFlags struct {
	output      string  // output file (single format) or base path
	config      string  // TOML or YAML options file
	formats     string  // comma-separated output formats
	vizType     string  // sankey or nodelink
	inputFormat string  // csv, json, yaml or toml; inferred from the extension by default
	width       float64 // frame width
	height      float64 // frame height
	marginX     float64
	marginTop   float64
	marginBot   float64
	nodeWidth   float64
	spacing     float64 // distance between column left edges
	nodeGap     float64 // vertical gap between nodes
	order       string  // first-seen, label or weight
	colormap    string
	flowColor   string // fixed ribbon color
	colorBy     string // source or target
	flowAlpha   float64
	nodeAlpha   float64
	labelColor  string
	titleColor  string
	background  string
	fontSize    float64
	scale       float64 // PNG pixel density
	noLabels    bool
	noTitles    bool
	detailed    bool // weights in node-link labels
	noCache     bool
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a flow table as a Sankey diagram",
		Long: `Render a weighted flow table as a Sankey diagram.

The first column of the table is the weight, every further column a stage.
Use "-" to read the table from standard input. Options can also come from a
TOML or YAML file given with --config; flags override the file.`,
		Example: `  sankey render flows.csv
  sankey render flows.csv -f svg,png -o out/flows --colormap tab10
  sankey render flows.yaml --type nodelink -f dot
  cat flows.csv | sankey render - -o flows.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			opts, err := buildOptions(cmd.Flags(), &f, input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), opts, f.output)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fs.StringVar(&f.config, "config", "", "options file (.toml, .yaml)")
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	fs.StringVarP(&f.vizType, "type", "t", "", "visualization type: sankey (default), nodelink")
	fs.StringVar(&f.inputFormat, "input-format", "", "input format: csv, json, yaml, toml (default: from extension)")
	fs.Float64Var(&f.width, "width", pipeline.DefaultWidth, "frame width")
	fs.Float64Var(&f.height, "height", pipeline.DefaultHeight, "frame height")
	fs.Float64Var(&f.marginX, "margin-x", 0, "left and right margin (default 20)")
	fs.Float64Var(&f.marginTop, "margin-top", 0, "top margin, room for stage titles (default 32)")
	fs.Float64Var(&f.marginBot, "margin-bottom", 0, "bottom margin (default 12)")
	fs.Float64Var(&f.nodeWidth, "node-width", 0, "node width (default: from column pitch)")
	fs.Float64Var(&f.spacing, "spacing", 0, "distance between column left edges (default: spread over the frame)")
	fs.Float64Var(&f.nodeGap, "node-gap", 0, "vertical gap between nodes (default 4, 0 for none)")
	fs.StringVar(&f.order, "order", "", "node order: first-seen (default), label, weight")
	fs.StringVar(&f.colormap, "colormap", "", "label colormap: jet_r (default), jet, tab10, greys, hue")
	fs.StringVar(&f.flowColor, "flow-color", "", "fixed ribbon color, overriding the colormap")
	fs.StringVar(&f.colorBy, "color-by", "", "ribbon color from: source (default), target")
	fs.Float64Var(&f.flowAlpha, "flow-alpha", 0.4, "ribbon opacity")
	fs.Float64Var(&f.nodeAlpha, "node-alpha", 0.5, "node opacity")
	fs.StringVar(&f.labelColor, "label-color", "", "node label color, \"none\" hides labels")
	fs.StringVar(&f.titleColor, "title-color", "", "stage title color, \"none\" hides titles")
	fs.StringVar(&f.background, "background", "", "background color (default: transparent SVG, white PNG)")
	fs.Float64Var(&f.fontSize, "font-size", 0, "label font size (default 12)")
	fs.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	fs.BoolVar(&f.noLabels, "no-labels", false, "hide node labels")
	fs.BoolVar(&f.noTitles, "no-titles", false, "hide stage titles")
	fs.BoolVar(&f.detailed, "detailed", false, "show weights in node-link diagrams")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// buildOptions layers the config file, explicitly set flags and the input
// argument into pipeline options.
func buildOptions(fs *pflag.FlagSet, f *renderFlags, input string, stdin io.Reader) (pipeline.Options, error) {
	var opts pipeline.Options
	if err := applyConfig(f.config, &opts); err != nil {
		return pipeline.Options{}, err
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("format", func() { opts.Formats = pipeline.SplitFormats(f.formats) })
	set("type", func() { opts.VizType = f.vizType })
	set("input-format", func() { opts.InputFormat = f.inputFormat })
	set("width", func() { opts.Width = f.width })
	set("height", func() { opts.Height = f.height })
	set("margin-x", func() { opts.MarginX = f.marginX })
	set("margin-top", func() { opts.MarginTop = f.marginTop })
	set("margin-bottom", func() { opts.MarginBottom = f.marginBot })
	set("node-width", func() { opts.NodeWidth = f.nodeWidth })
	set("spacing", func() { opts.Spacing = f.spacing })
	set("node-gap", func() { opts.NodeGap = pipeline.Float(f.nodeGap) })
	set("order", func() { opts.Order = f.order })
	set("colormap", func() { opts.Colormap = f.colormap })
	set("flow-color", func() { opts.FlowColor = f.flowColor })
	set("color-by", func() { opts.ColorBy = f.colorBy })
	set("flow-alpha", func() { opts.FlowAlpha = pipeline.Float(f.flowAlpha) })
	set("node-alpha", func() { opts.NodeAlpha = pipeline.Float(f.nodeAlpha) })
	set("label-color", func() { opts.LabelColor = f.labelColor })
	set("title-color", func() { opts.TitleColor = f.titleColor })
	set("background", func() { opts.Background = f.background })
	set("font-size", func() { opts.FontSize = f.fontSize })
	set("scale", func() { opts.Scale = f.scale })
	set("no-labels", func() { opts.NoLabels = f.noLabels })
	set("no-titles", func() { opts.NoTitles = f.noTitles })
	set("detailed", func() { opts.Detailed = f.detailed })
	set("no-cache", func() { opts.NoCache = f.noCache })

	if input != "" {
		opts.Input = input
	}
	if opts.Input == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("read stdin: %w", err)
		}
		opts.Input, opts.Source = "", data
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, out io.Writer, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(opts.NoCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.Logger = logger

	paths, err := outputPaths(output, opts.Input, opts.Formats)
	if err != nil {
		return err
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	for _, format := range opts.Formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
		logger.Debugf("Wrote %s: %d bytes", paths[format], len(result.Artifacts[format]))
	}

	printSuccess(out, "Rendered %s", displayName(opts.Input))
	printStats(out, result.Stats.NodeCount, result.Stats.FlowCount, result.CacheInfo.RenderHit)
	for _, format := range opts.Formats {
		printFile(out, paths[format])
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(opts.Formats)))
	return nil
}

// outputPaths maps each format to its output file. A single format is
// written to output verbatim when it is set; otherwise each format gets
// the base path plus its extension. A derived path that would overwrite
// the input gets a ".layout" infix instead; an explicit one is refused.
func outputPaths(output, input string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		if samePath(output, input) {
			return nil, errors.New(errors.ErrCodeInvalidPath, "output %s would overwrite the input", output)
		}
		paths[formats[0]] = output
		return paths, nil
	}
	base := basePath(output, input)
	for _, format := range formats {
		path := base + "." + format
		if samePath(path, input) {
			path = base + ".layout." + format
		}
		paths[format] = path
	}
	return paths, nil
}

// samePath reports whether a and b name the same file. An empty input
// (stdin) matches nothing.
func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// basePath derives the base output path from the output and input file
// paths. If output is empty, it strips the extension from input. If output
// has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return appName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func displayName(input string) string {
	if input == "" {
		return "stdin"
	}
	return input
}
