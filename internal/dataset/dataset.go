// Package dataset defines the typed catalog entities (datasets, volumes,
// views, tags) and the parser that builds them from raw manifest bytes.
package dataset

// ContentType classifies what a volume holds.
type ContentType string

const (
	ContentEM           ContentType = "em"
	ContentLM           ContentType = "lm"
	ContentSegmentation ContentType = "segmentation"
	ContentPrediction   ContentType = "prediction"
	ContentAnalysis     ContentType = "analysis"
)

// SampleType classifies the value domain of a volume.
type SampleType string

const (
	SampleScalar SampleType = "scalar"
	SampleLabel  SampleType = "label"
)

// SpatialTransform describes how a volume's voxel grid maps into physical
// space: ordered axis labels with a per-axis unit, signed scale (nm) and
// translate offset. Axis order follows the on-disk array, not x/y/z.
type SpatialTransform struct {
	Axes      []string  `json:"axes"`
	Units     []string  `json:"units"`
	Scale     []float64 `json:"scale"`
	Translate []float64 `json:"translate"`
}

// AxisIndex returns the position of the labeled axis, or -1 if absent.
func (t SpatialTransform) AxisIndex(label string) int {
	for i, a := range t.Axes {
		if a == label {
			return i
		}
	}
	return -1
}

// ContrastLimits bound the display normalization window. Start/End are the
// user-adjustable window inside the hard [Min, Max] range.
type ContrastLimits struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// DisplaySettings control how a volume is rendered by the viewer.
type DisplaySettings struct {
	ContrastLimits ContrastLimits `json:"contrastLimits"`
	Gamma          float64        `json:"gamma"`
	InvertLUT      bool           `json:"invertLUT"`
	Color          string         `json:"color"`
}

// Subsource is an auxiliary representation attached to a volume, typically a
// mesh store accompanying a segmentation, with an optional id list.
type Subsource struct {
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Format    string            `json:"format"`
	Transform *SpatialTransform `json:"transform,omitempty"`
	IDs       []uint64          `json:"ids,omitempty"`
}

// Volume is one n-dimensional array layer within a dataset.
type Volume struct {
	Key             string           `json:"key"`
	Name            string           `json:"name"`
	Path            string           `json:"path"`
	Format          string           `json:"format"`
	Transform       SpatialTransform `json:"transform"`
	ContentType     ContentType      `json:"contentType"`
	SampleType      SampleType       `json:"sampleType"`
	DisplaySettings DisplaySettings  `json:"displaySettings"`
	Description     string           `json:"description,omitempty"`
	Subsources      []Subsource      `json:"subsources,omitempty"`
}

// SourceURL is the locator handed to the external viewer: store backend
// identifier plus path.
func (v *Volume) SourceURL() string {
	return v.Format + "://" + v.Path
}

// View is a named camera + layer-selection preset.
type View struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Sources     []string  `json:"sources"`
	Position    []float64 `json:"position,omitempty"`
	Scale       *float64  `json:"scale,omitempty"`
	Orientation []float64 `json:"orientation,omitempty"`
}

// DefaultViewName is the name given to the synthesized view when a manifest
// declares none.
const DefaultViewName = "Default view"

// Dataset is the immutable entity graph built from one catalog manifest.
// Volume iteration order follows the manifest; views keep declaration order.
type Dataset struct {
	Key          string
	Title        string
	Metadata     Metadata
	ThumbnailRef string

	volumeOrder []string
	volumes     map[string]*Volume

	Views []View
	Tags  TagSet
}

// VolumeKeys returns volume keys in manifest order.
func (d *Dataset) VolumeKeys() []string {
	keys := make([]string, len(d.volumeOrder))
	copy(keys, d.volumeOrder)
	return keys
}

// Volume looks up a volume by key.
func (d *Dataset) Volume(key string) (*Volume, bool) {
	v, ok := d.volumes[key]
	return v, ok
}

// NumVolumes returns the number of volumes in the dataset.
func (d *Dataset) NumVolumes() int {
	return len(d.volumeOrder)
}

// View looks up a view by name.
func (d *Dataset) View(name string) (View, bool) {
	for _, v := range d.Views {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

// Metadata is the descriptive block attached to a dataset manifest. It feeds
// both the detail page and the derived tag index.
type Metadata struct {
	Title                string        `json:"title"`
	ID                   string        `json:"id,omitempty"`
	Institutions         []string      `json:"institution"`
	Imaging              Imaging       `json:"imaging"`
	Sample               Sample        `json:"sample"`
	DOI                  []Publication `json:"DOI,omitempty"`
	Publications         []Publication `json:"publications,omitempty"`
	SoftwareAvailability string        `json:"softwareAvailability"`
}

// Imaging holds acquisition parameters.
type Imaging struct {
	Institution string  `json:"institution"`
	GridSpacing Unitful `json:"gridSpacing"`
	StartDate   string  `json:"startDate,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	BiasVoltage float64 `json:"biasVoltage,omitempty"`
	ScanRate    float64 `json:"scanRate,omitempty"`
	Current     float64 `json:"current,omitempty"`
}

// Unitful is a unit-annotated map of per-axis numeric values. Absent axes are
// simply missing from Values.
type Unitful struct {
	Unit   string             `json:"unit"`
	Values map[string]float64 `json:"values"`
}

// Value returns the named component and whether it is present.
func (u Unitful) Value(axis string) (float64, bool) {
	v, ok := u.Values[axis]
	return v, ok
}

// Sample describes specimen provenance.
type Sample struct {
	Description   string   `json:"description,omitempty"`
	Protocol      string   `json:"protocol,omitempty"`
	Contributions string   `json:"contributions,omitempty"`
	Organism      []string `json:"organism"`
	Type          []string `json:"type"`
	Subtype       []string `json:"subtype"`
	Treatment     []string `json:"treatment"`
}

// Publication is a citation link.
type Publication struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
