package cache

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// TableKey identifies a normalized table by the hash of its source
	// bytes and their format.
	TableKey(sourceHash, format string) string
	// LayoutKey identifies a layout by the hash of its table and the
	// options that shape it.
	LayoutKey(tableHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies one rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	Width        float64 `json:"w"`
	Height       float64 `json:"h"`
	MarginX      float64 `json:"mx,omitempty"`
	MarginTop    float64 `json:"mt,omitempty"`
	MarginBottom float64 `json:"mb,omitempty"`
	NodeWidth    float64 `json:"nw,omitempty"`
	Spacing      float64 `json:"sp,omitempty"`
	NodeGap      float64 `json:"gap"`
	Order        string  `json:"order"`
}

// ArtifactKeyOpts are the options that change rendered bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	VizType    string  `json:"viz"`
	Colormap   string  `json:"cmap,omitempty"`
	FlowColor  string  `json:"flow_color,omitempty"`
	ColorBy    string  `json:"color_by,omitempty"`
	FlowAlpha  float64 `json:"flow_alpha"`
	NodeAlpha  float64 `json:"node_alpha"`
	Labels     string  `json:"labels,omitempty"`
	Titles     string  `json:"titles,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	Background string  `json:"bg,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
}

// DefaultKeyer builds keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) TableKey(sourceHash, format string) string {
	return hashKey("table", sourceHash, format)
}

func (DefaultKeyer) LayoutKey(tableHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", tableHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
