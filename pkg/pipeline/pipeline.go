// Package pipeline provides the load → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a CSV, JSON, YAML or TOML table and normalize it
//  2. Layout: Aggregate the table into a flow graph and place its nodes and bands
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage's result is cached by a [cache.Keyer] key.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "flows.csv",
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	t, err := runner.Load(ctx, opts)
//	g, l, err := runner.ComputeLayout(ctx, t, opts)
//	artifacts, err := runner.Render(ctx, g, l, opts)
package pipeline

import (
	"image/color"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sankey/pkg/cache"
	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/flow"
	"github.com/matzehuels/sankey/pkg/layout"
	"github.com/matzehuels/sankey/pkg/render"
	"github.com/matzehuels/sankey/pkg/render/raster"
	"github.com/matzehuels/sankey/pkg/table"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = layout.DefaultWidth

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = layout.DefaultHeight

	// DefaultOrder is the default node stacking order.
	DefaultOrder = string(layout.OrderFirstSeen)

	// DefaultColormap is the default label colormap.
	DefaultColormap = render.DefaultColormap

	// DefaultColorBy colors each band like its source node.
	DefaultColorBy = ColorBySource

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0
)

// Visualization types.
const (
	VizTypeSankey   = "sankey"
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeSankey

// Band coloring modes.
const (
	ColorBySource = "source"
	ColorByTarget = "target"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeSankey:   true,
	VizTypeNodelink: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures every pipeline stage. The CLI fills it from flags and
// config files, the server from query parameters. Zero values select the
// defaults.
type Options struct {
	// Load options
	Input       string `json:"input,omitempty" mapstructure:"input"`               // table file path
	InputFormat string `json:"input_format,omitempty" mapstructure:"input_format"` // csv, json, yaml or toml
	Source      []byte `json:"-" mapstructure:"-"`                                 // inline table, used instead of Input

	// Layout options
	Width        float64  `json:"width,omitempty" mapstructure:"width"`
	Height       float64  `json:"height,omitempty" mapstructure:"height"`
	MarginX      float64  `json:"margin_x,omitempty" mapstructure:"margin_x"`
	MarginTop    float64  `json:"margin_top,omitempty" mapstructure:"margin_top"`
	MarginBottom float64  `json:"margin_bottom,omitempty" mapstructure:"margin_bottom"`
	NodeWidth    float64  `json:"node_width,omitempty" mapstructure:"node_width"`
	Spacing      float64  `json:"spacing,omitempty" mapstructure:"spacing"`
	NodeGap      *float64 `json:"node_gap,omitempty" mapstructure:"node_gap"` // nil selects the default, 0 means none
	Order        string   `json:"order,omitempty" mapstructure:"order"`

	// Render options
	VizType    string   `json:"viz_type,omitempty" mapstructure:"viz_type"`
	Formats    []string `json:"formats,omitempty" mapstructure:"formats"`
	Colormap   string   `json:"colormap,omitempty" mapstructure:"colormap"`
	FlowColor  string   `json:"flow_color,omitempty" mapstructure:"flow_color"`
	ColorBy    string   `json:"color_by,omitempty" mapstructure:"color_by"`
	FlowAlpha  *float64 `json:"flow_alpha,omitempty" mapstructure:"flow_alpha"`
	NodeAlpha  *float64 `json:"node_alpha,omitempty" mapstructure:"node_alpha"`
	LabelColor string   `json:"label_color,omitempty" mapstructure:"label_color"` // "none" hides node labels
	TitleColor string   `json:"title_color,omitempty" mapstructure:"title_color"` // "none" hides stage titles
	NoLabels   bool     `json:"no_labels,omitempty" mapstructure:"no_labels"`
	NoTitles   bool     `json:"no_titles,omitempty" mapstructure:"no_titles"`
	FontSize   float64  `json:"font_size,omitempty" mapstructure:"font_size"`
	Background string   `json:"background,omitempty" mapstructure:"background"`
	Scale      float64  `json:"scale,omitempty" mapstructure:"scale"`
	Detailed   bool     `json:"detailed,omitempty" mapstructure:"detailed"` // weights in node-link labels

	// NoCache bypasses the cache for reads and writes.
	NoCache bool `json:"no_cache,omitempty" mapstructure:"no_cache"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" mapstructure:"-"`
}

// Result holds the output of a complete pipeline execution.
type Result struct {
	Table     *table.Table
	TableHash string
	Graph     *flow.Graph
	Layout    layout.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats tracks pipeline execution statistics.
type Stats struct {
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
	RowCount   int
	NodeCount  int
	FlowCount  int
}

// CacheInfo tracks which stages were served from cache.
type CacheInfo struct {
	LoadHit   bool // Whether the table came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: sankey, nodelink)", vizType)
	}
	return nil
}

// ValidateColorBy checks that a band coloring mode is valid.
func ValidateColorBy(by string) error {
	if by != ColorBySource && by != ColorByTarget {
		return errors.New(errors.ErrCodeInvalidInput, "invalid color_by: %q (must be one of: source, target)", by)
	}
	return nil
}

// SplitFormats parses a comma-separated format list, dropping blanks and
// duplicates.
func SplitFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// Float returns a pointer to v, for the optional alpha fields.
func Float(v float64) *float64 { return &v }

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForLoad checks that a table source is set.
func (o *Options) ValidateForLoad() error {
	if len(o.Source) == 0 && o.Input == "" {
		return errors.New(errors.ErrCodeEmptyInput, "input file or inline source is required")
	}
	if o.InputFormat == "" && len(o.Source) > 0 {
		o.InputFormat = string(table.FormatCSV)
	}
	if o.InputFormat != "" {
		if _, err := table.ParseFormat(o.InputFormat); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.NodeGap == nil {
		o.NodeGap = Float(layout.DefaultNodeGap)
	}
	if o.Order == "" {
		o.Order = DefaultOrder
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := checkLengths([]namedValue{
		{"width", o.Width}, {"height", o.Height},
		{"margin_x", o.MarginX}, {"margin_top", o.MarginTop}, {"margin_bottom", o.MarginBottom},
		{"node_width", o.NodeWidth}, {"spacing", o.Spacing}, {"node_gap", *o.NodeGap},
	}); err != nil {
		return err
	}
	_, err := layout.ParseOrder(o.Order)
	return err
}

type namedValue struct {
	name  string
	value float64
}

// checkLengths rejects negative and non-finite values, in order.
func checkLengths(vs []namedValue) error {
	for _, v := range vs {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be a finite number, got %g", v.name, v.value)
		}
		if v.value < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative, got %g", v.name, v.value)
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Colormap == "" {
		o.Colormap = DefaultColormap
	}
	if o.ColorBy == "" {
		o.ColorBy = DefaultColorBy
	}
	if o.FlowAlpha == nil {
		o.FlowAlpha = Float(render.DefaultFlowAlpha)
	}
	if o.NodeAlpha == nil {
		o.NodeAlpha = Float(render.DefaultNodeAlpha)
	}
	if o.FontSize == 0 {
		o.FontSize = render.DefaultFontSize
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.IsNodelink() && slices.Contains(o.Formats, FormatJSON) {
		return errors.New(errors.ErrCodeUnsupported, "json output is only available for sankey diagrams")
	}
	if err := ValidateColorBy(o.ColorBy); err != nil {
		return err
	}
	if _, err := render.ParseColormap(o.Colormap); err != nil {
		return err
	}
	for _, a := range []namedValue{{"flow_alpha", *o.FlowAlpha}, {"node_alpha", *o.NodeAlpha}} {
		if !(a.value >= 0 && a.value <= 1) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be within [0, 1], got %g", a.name, a.value)
		}
	}
	if err := checkLengths([]namedValue{{"font_size", o.FontSize}, {"scale", o.Scale}}); err != nil {
		return err
	}
	if slices.Contains(o.Formats, FormatPNG) {
		if px := o.Width * o.Scale * o.Height * o.Scale; px > raster.MaxPixels {
			return errors.New(errors.ErrCodeInvalidInput, "png of %gx%g at scale %g is %.0f pixels, more than %d", o.Width, o.Height, o.Scale, px, raster.MaxPixels)
		}
	}
	for _, c := range []string{o.FlowColor, o.LabelColor, o.TitleColor, o.Background} {
		if c == "" {
			continue
		}
		if _, err := render.ParseColor(c); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks every stage's options and applies defaults
// for the full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions converts o to the options of [layout.Compute].
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Width:        o.Width,
		Height:       o.Height,
		MarginX:      o.MarginX,
		MarginTop:    o.MarginTop,
		MarginBottom: o.MarginBottom,
		NodeWidth:    o.NodeWidth,
		Spacing:      o.Spacing,
		NodeGap:      o.NodeGap,
		Order:        layout.Order(o.Order),
		Logger:       o.Logger,
	}
}

// DrawOptions converts o to the options of [render.Draw]. It expects
// validated options.
func (o *Options) DrawOptions() ([]render.Option, error) {
	cm, err := render.ParseColormap(o.Colormap)
	if err != nil {
		return nil, err
	}
	opts := []render.Option{
		render.WithColormap(cm),
		render.WithFlowAlpha(*o.FlowAlpha),
		render.WithNodeAlpha(*o.NodeAlpha),
		render.WithFontSize(o.FontSize),
	}
	if o.ColorBy == ColorByTarget {
		opts = append(opts, render.WithFlowColorBy(render.ByTarget))
	}
	if o.FlowColor != "" {
		c, err := render.ParseColor(o.FlowColor)
		if err != nil {
			return nil, err
		}
		opts = append(opts, render.WithFlowColor(c))
	}

	labelColor, err := o.textColor(o.LabelColor, o.NoLabels)
	if err != nil {
		return nil, err
	}
	titleColor, err := o.textColor(o.TitleColor, o.NoTitles)
	if err != nil {
		return nil, err
	}
	opts = append(opts, render.WithLabelColor(labelColor), render.WithTitleColor(titleColor))
	return opts, nil
}

// BackgroundColor returns the parsed background, or nil for none.
func (o *Options) BackgroundColor() (color.Color, error) {
	if o.Background == "" {
		return nil, nil
	}
	return render.ParseColor(o.Background)
}

func (o *Options) textColor(s string, hidden bool) (color.Color, error) {
	switch {
	case hidden:
		return nil, nil
	case s == "":
		return color.Black, nil
	}
	return render.ParseColor(s)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:        o.Width,
		Height:       o.Height,
		MarginX:      o.MarginX,
		MarginTop:    o.MarginTop,
		MarginBottom: o.MarginBottom,
		NodeWidth:    o.NodeWidth,
		Spacing:      o.Spacing,
		NodeGap:      gapOrDefault(o.NodeGap),
		Order:        o.Order,
	}
}

func gapOrDefault(gap *float64) float64 {
	if gap == nil {
		return layout.DefaultNodeGap
	}
	return *gap
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	labels, titles := o.LabelColor, o.TitleColor
	if o.NoLabels {
		labels = "none"
	}
	if o.NoTitles {
		titles = "none"
	}
	opts := cache.ArtifactKeyOpts{
		Format:     format,
		VizType:    o.VizType,
		Colormap:   o.Colormap,
		FlowColor:  o.FlowColor,
		ColorBy:    o.ColorBy,
		Labels:     labels,
		Titles:     titles,
		FontSize:   o.FontSize,
		Background: o.Background,
		Detailed:   (o.IsNodelink() || format == FormatDOT) && o.Detailed,
	}
	if o.FlowAlpha != nil {
		opts.FlowAlpha = *o.FlowAlpha
	}
	if o.NodeAlpha != nil {
		opts.NodeAlpha = *o.NodeAlpha
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
