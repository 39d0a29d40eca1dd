package neuroglancer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fibsem-portal/server/internal/dataset"
)

// Camera and layer defaults applied when a view leaves them unspecified.
const (
	DefaultCrossSectionScale = 50.0
	DefaultProjectionScale   = 65536.0

	// Additive image layers default to partial opacity so overlapping
	// channels blend; a single additive layer at 0.75 renders washed out
	// against the black background, so lone layers are forced opaque.
	defaultLayerOpacity = 0.75

	defaultLayout     = "4panel"
	backgroundBlack   = "#000000"
	DefaultViewerBase = "https://neuroglancer-demo.appspot.com/"
)

// ErrEmptySelection is returned when link compilation is attempted with no
// resolvable layers. The caller surfaces "nothing selected" instead of
// emitting a broken link.
var ErrEmptySelection = errors.New("no layers selected")

// CompileLayers builds one viewer layer per selected volume key, in selection
// order. Keys absent from the dataset's volume map are skipped silently (an
// unresolved view reference is not renderable, not an error). Returns
// ErrEmptySelection when nothing resolves.
func CompileLayers(ds *dataset.Dataset, selectedKeys []string) ([]Layer, error) {
	layers := make([]Layer, 0, len(selectedKeys))
	for _, key := range selectedKeys {
		vol, ok := ds.Volume(key)
		if !ok {
			continue
		}
		layer, err := compileLayer(vol)
		if err != nil {
			return nil, fmt.Errorf("volume %q: %w", key, err)
		}
		layers = append(layers, layer)
	}
	if len(layers) == 0 {
		return nil, ErrEmptySelection
	}
	if len(layers) == 1 {
		layers[0].Opacity = 1.0
	}
	return layers, nil
}

func compileLayer(vol *dataset.Volume) (Layer, error) {
	tf, err := SourceTransform(vol.Transform)
	if err != nil {
		return Layer{}, err
	}
	primary := Source{URL: vol.SourceURL(), Transform: &tf}

	if vol.ContentType == dataset.ContentSegmentation {
		return compileSegmentationLayer(vol, primary)
	}

	layer := Layer{
		Kind:    KindImage,
		Name:    vol.Name,
		Sources: []Source{primary},
		Opacity: defaultLayerOpacity,
	}
	if shader, ok := Shader(vol.DisplaySettings, vol.SampleType); ok {
		layer.Shader = shader
		layer.HasShader = true
	}
	return layer, nil
}

// compileSegmentationLayer attaches any auxiliary subsources (meshes) as
// additional data sources on the same layer and carries the primary
// subsource's id list forward as the selected segments.
func compileSegmentationLayer(vol *dataset.Volume, primary Source) (Layer, error) {
	layer := Layer{
		Kind:    KindSegmentation,
		Name:    vol.Name,
		Sources: []Source{primary},
		Opacity: defaultLayerOpacity,
	}
	for _, sub := range vol.Subsources {
		src := Source{URL: sub.Format + "://" + sub.Path}
		if sub.Transform != nil {
			tf, err := SourceTransform(*sub.Transform)
			if err != nil {
				return Layer{}, fmt.Errorf("subsource %q: %w", sub.Name, err)
			}
			src.Transform = &tf
		}
		layer.Sources = append(layer.Sources, src)
	}
	if len(vol.Subsources) > 0 {
		ids := vol.Subsources[0].IDs
		layer.Segments = make([]string, len(ids))
		for i, id := range ids {
			layer.Segments[i] = strconv.FormatUint(id, 10)
		}
	}
	return layer, nil
}

// CompileState assembles the complete viewer state for a selection and view:
// compiled layers, pass-through camera, fixed cosmetic defaults. The first
// layer becomes the viewer's initially selected layer.
func CompileState(ds *dataset.Dataset, selectedKeys []string, view dataset.View) (*ViewerState, error) {
	layers, err := CompileLayers(ds, selectedKeys)
	if err != nil {
		return nil, err
	}

	state := &ViewerState{
		Dimensions:              OutputSpace(),
		Position:                view.Position,
		CrossSectionScale:       DefaultCrossSectionScale,
		CrossSectionOrientation: view.Orientation,
		ProjectionScale:         DefaultProjectionScale,
		ProjectionOrientation:   view.Orientation,
		Layers:                  layers,
		SelectedLayer:           SelectedLayer{Layer: layers[0].Name, Visible: true},
		Layout:                  defaultLayout,
		CrossSectionBackground:  backgroundBlack,
		ProjectionBackground:    backgroundBlack,
	}
	if view.Scale != nil {
		state.CrossSectionScale = *view.Scale
	}
	return state, nil
}

// EncodeFragment serializes a viewer state into the percent-escaped JSON
// fragment the viewer decodes from the URL. Struct field order and sorted
// map keys make the encoding canonical; url.PathEscape is exactly reversible
// by a percent decoder.
func EncodeFragment(state *ViewerState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return "#!" + url.PathEscape(string(data)), nil
}

// ViewerURL builds the full shareable link: viewer base plus encoded state
// fragment.
func ViewerURL(base string, state *ViewerState) (string, error) {
	fragment, err := EncodeFragment(state)
	if err != nil {
		return "", err
	}
	if base == "" {
		base = DefaultViewerBase
	}
	return strings.TrimSuffix(base, "/") + "/" + fragment, nil
}
