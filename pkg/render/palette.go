package render

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/sankey/pkg/errors"
)

// Colormap maps a position in [0, 1) to a color.
type Colormap func(t float64) color.Color

// DefaultColormap is the name of the colormap used when none is selected.
const DefaultColormap = "jet_r"

var jetChannels = [3][][2]float64{
	{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}},
	{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}},
	{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}},
}

var tab10 = mustHexes(
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
)

var colormaps = map[string]Colormap{
	"jet":   Jet,
	"jet_r": JetR,
	"tab10": Tab10,
	"greys": Greys,
	"hue":   Hue,
}

// Jet is the classic blue-cyan-yellow-red sweep.
func Jet(t float64) color.Color {
	t = clamp01(t)
	return colorful.Color{
		R: piecewise(jetChannels[0], t),
		G: piecewise(jetChannels[1], t),
		B: piecewise(jetChannels[2], t),
	}
}

// JetR is [Jet] reversed: it starts at dark red and ends at dark blue.
func JetR(t float64) color.Color { return Jet(1 - clamp01(t)) }

// Tab10 is a ten-color categorical map. Positions are binned, so more than
// ten labels reuse colors.
func Tab10(t float64) color.Color {
	i := min(int(clamp01(t)*float64(len(tab10))), len(tab10)-1)
	return tab10[i]
}

// Greys runs from light to dark grey.
func Greys(t float64) color.Color {
	return colorful.Hsl(0, 0, 0.85-0.6*clamp01(t))
}

// Hue sweeps the HCL hue circle at constant chroma and lightness.
func Hue(t float64) color.Color {
	return colorful.Hcl(360*clamp01(t), 0.5, 0.6).Clamped()
}

// Colormaps returns the names accepted by [ParseColormap], sorted.
func Colormaps() []string {
	names := make([]string, 0, len(colormaps))
	for name := range colormaps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseColormap resolves a colormap by name. The empty string selects
// [DefaultColormap].
func ParseColormap(name string) (Colormap, error) {
	if name == "" {
		name = DefaultColormap
	}
	if cm, ok := colormaps[strings.ToLower(name)]; ok {
		return cm, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidColormap,
		"unknown colormap: %q (must be one of: %s)", name, strings.Join(Colormaps(), ", "))
}

// Palette assigns colors to labels. The i-th of n labels gets cm(i/n), so
// the assignment depends only on label order.
func Palette(labels []string, cm Colormap) map[string]color.Color {
	if cm == nil {
		cm = JetR
	}
	colors := make(map[string]color.Color, len(labels))
	n := float64(len(labels))
	for i, label := range labels {
		if _, ok := colors[label]; ok {
			continue
		}
		colors[label] = cm(float64(i) / n)
	}
	return colors
}

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"grey":   "#808080",
	"gray":   "#808080",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"orange": "#ffa500",
}

// ParseColor parses "#rgb", "#rrggbb" or a basic color name. "none" returns
// a nil color, which hides text when used as a label or title color.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return nil, nil
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid color %q", s)
	}
	return c, nil
}

// HexAlpha splits c into an "#rrggbb" string and an opacity in [0, 1].
func HexAlpha(c color.Color) (string, float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), float64(n.A) / 255
}

// WithAlpha returns c with its opacity multiplied by a.
func WithAlpha(c color.Color, a float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A)*clamp01(a) + 0.5)
	return n
}

func piecewise(points [][2]float64, t float64) float64 {
	for i := 1; i < len(points); i++ {
		x0, y0 := points[i-1][0], points[i-1][1]
		x1, y1 := points[i][0], points[i][1]
		if t <= x1 {
			return y0 + (y1-y0)*(t-x0)/(x1-x0)
		}
	}
	return points[len(points)-1][1]
}

func clamp01(v float64) float64 { return max(0, min(1, v)) }

func mustHexes(hexes ...string) []color.Color {
	out := make([]color.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}
