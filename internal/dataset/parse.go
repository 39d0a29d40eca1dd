package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/num/quat"

	"github.com/fibsem-portal/server/pkg/colormap"
)

// ParseError reports a structurally invalid manifest. Catalog loading catches
// it per dataset so one bad manifest never aborts the rest of the load.
type ParseError struct {
	Dataset string
	Field   string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dataset %q: invalid %s: %v", e.Dataset, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// rawManifest is the untrusted wire shape of a dataset manifest. Everything
// downstream works on the validated Dataset built from it.
type rawManifest struct {
	Name     string          `json:"name"`
	Metadata Metadata        `json:"metadata"`
	Sources  json.RawMessage `json:"sources"`
	Views    []rawView       `json:"views"`
}

type rawVolume struct {
	Name            string           `json:"name"`
	Path            string           `json:"path"`
	Format          string           `json:"format"`
	Transform       SpatialTransform `json:"transform"`
	ContentType     ContentType      `json:"contentType"`
	SampleType      SampleType       `json:"sampleType"`
	DisplaySettings DisplaySettings  `json:"displaySettings"`
	Description     string           `json:"description"`
	Subsources      []Subsource      `json:"subsources"`
}

type rawView struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Sources     []string  `json:"sources"`
	Position    []float64 `json:"position"`
	Scale       *float64  `json:"scale"`
	Orientation []float64 `json:"orientation"`
}

// ParseDataset builds the typed entity graph for one catalog entry from raw
// manifest bytes. It performs no I/O. The tag set and the guaranteed default
// view are computed here; the result is immutable afterward.
func ParseDataset(key string, manifest []byte, thumbnailRef string) (*Dataset, error) {
	var raw rawManifest
	if err := json.Unmarshal(manifest, &raw); err != nil {
		return nil, &ParseError{Dataset: key, Field: "manifest", Err: err}
	}
	if len(raw.Sources) == 0 {
		return nil, &ParseError{Dataset: key, Field: "sources", Err: fmt.Errorf("missing required field")}
	}

	order, rawVols, err := decodeOrderedSources(raw.Sources)
	if err != nil {
		return nil, &ParseError{Dataset: key, Field: "sources", Err: err}
	}

	ds := &Dataset{
		Key:          key,
		Metadata:     raw.Metadata,
		ThumbnailRef: thumbnailRef,
		volumeOrder:  order,
		volumes:      make(map[string]*Volume, len(order)),
	}
	ds.Title = raw.Metadata.Title
	if ds.Title == "" {
		ds.Title = raw.Name
	}
	if ds.Title == "" {
		ds.Title = key
	}

	for i, volKey := range order {
		vol, err := parseVolume(volKey, rawVols[volKey], i)
		if err != nil {
			return nil, &ParseError{Dataset: key, Field: "sources." + volKey, Err: err}
		}
		ds.volumes[volKey] = vol
	}

	for i, rv := range raw.Views {
		view, err := parseView(rv)
		if err != nil {
			return nil, &ParseError{Dataset: key, Field: fmt.Sprintf("views[%d]", i), Err: err}
		}
		ds.Views = append(ds.Views, view)
	}
	if len(ds.Views) == 0 {
		ds.Views = []View{defaultView()}
	}

	ds.Tags = buildTags(ds.Metadata)

	return ds, nil
}

// decodeOrderedSources walks the sources object token by token so manifest
// declaration order survives into the volume map. Duplicate keys are
// last-write-wins for the value while keeping the first occurrence's position.
func decodeOrderedSources(raw json.RawMessage) ([]string, map[string]rawVolume, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var order []string
	vols := make(map[string]rawVolume)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected string key, got %v", keyTok)
		}
		var rv rawVolume
		if err := dec.Decode(&rv); err != nil {
			return nil, nil, fmt.Errorf("source %q: %w", key, err)
		}
		if _, dup := vols[key]; !dup {
			order = append(order, key)
		}
		vols[key] = rv
	}
	return order, vols, nil
}

func parseVolume(key string, rv rawVolume, position int) (*Volume, error) {
	if rv.Path == "" {
		return nil, fmt.Errorf("missing path")
	}
	if rv.Format == "" {
		return nil, fmt.Errorf("missing format")
	}
	if err := validateTransform(rv.Transform); err != nil {
		return nil, err
	}

	vol := &Volume{
		Key:             key,
		Name:            rv.Name,
		Path:            rv.Path,
		Format:          rv.Format,
		Transform:       rv.Transform,
		ContentType:     rv.ContentType,
		SampleType:      rv.SampleType,
		DisplaySettings: rv.DisplaySettings,
		Description:     rv.Description,
		Subsources:      rv.Subsources,
	}
	if vol.Name == "" {
		vol.Name = key
	}
	if vol.ContentType == "" {
		vol.ContentType = ContentEM
	}
	if vol.SampleType == "" {
		if vol.ContentType == ContentSegmentation {
			vol.SampleType = SampleLabel
		} else {
			vol.SampleType = SampleScalar
		}
	}
	hydrateDisplaySettings(&vol.DisplaySettings, position)
	return vol, nil
}

// validateTransform checks the spatial transform up front so the viewer-state
// compiler can rely on x/y/z axis lookups never failing later.
func validateTransform(t SpatialTransform) error {
	n := len(t.Axes)
	if n == 0 {
		return fmt.Errorf("transform missing axes")
	}
	if len(t.Units) != n || len(t.Scale) != n || len(t.Translate) != n {
		return fmt.Errorf("transform axes/units/scale/translate lengths differ: %d/%d/%d/%d",
			n, len(t.Units), len(t.Scale), len(t.Translate))
	}
	for _, label := range []string{"x", "y", "z"} {
		if t.AxisIndex(label) < 0 {
			return fmt.Errorf("transform missing axis %q", label)
		}
	}
	return nil
}

// hydrateDisplaySettings fills unset display fields. Volumes without an
// explicit tint get a palette color by manifest position, the conventional
// coloring for multi-channel overlays.
func hydrateDisplaySettings(ds *DisplaySettings, position int) {
	if ds.ContrastLimits.Max == 0 && ds.ContrastLimits.Min == 0 {
		ds.ContrastLimits.Min = 0
		ds.ContrastLimits.Max = 1
	}
	if ds.ContrastLimits.Start == 0 && ds.ContrastLimits.End == 0 {
		ds.ContrastLimits.Start = ds.ContrastLimits.Min
		ds.ContrastLimits.End = ds.ContrastLimits.Max
	}
	if ds.Gamma == 0 {
		ds.Gamma = 1
	}
	if ds.Color == "" {
		ds.Color = colormap.LayerTint(position)
	}
}

func parseView(rv rawView) (View, error) {
	view := View{
		Name:        rv.Name,
		Description: rv.Description,
		Sources:     rv.Sources,
		Scale:       rv.Scale,
	}
	if view.Name == "" {
		return View{}, fmt.Errorf("missing name")
	}
	if view.Sources == nil {
		view.Sources = []string{}
	}
	if rv.Position != nil {
		if len(rv.Position) != 3 {
			return View{}, fmt.Errorf("position must have 3 components, got %d", len(rv.Position))
		}
		view.Position = rv.Position
	}
	if rv.Orientation != nil {
		if len(rv.Orientation) != 4 {
			return View{}, fmt.Errorf("orientation must have 4 components, got %d", len(rv.Orientation))
		}
		view.Orientation = normalizeOrientation(rv.Orientation)
	}
	return view, nil
}

// normalizeOrientation unit-normalizes an [x, y, z, w] quaternion. A
// zero-norm quaternion is treated as absent so the viewer falls back to its
// neutral orientation.
func normalizeOrientation(o []float64) []float64 {
	q := quat.Number{Imag: o[0], Jmag: o[1], Kmag: o[2], Real: o[3]}
	norm := quat.Abs(q)
	if norm == 0 {
		return nil
	}
	q = quat.Scale(1/norm, q)
	return []float64{q.Imag, q.Jmag, q.Kmag, q.Real}
}

// defaultView is substituted when a manifest declares no views: nothing
// selected, no position or scale, neutral orientation.
func defaultView() View {
	return View{
		Name:        DefaultViewName,
		Description: "The default view of the data",
		Sources:     []string{},
	}
}
