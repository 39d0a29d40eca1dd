package neuroglancer

import (
	"encoding/json"
	"fmt"
)

// LayerKind is the explicit rendering-kind tag for a compiled layer.
type LayerKind string

const (
	KindImage        LayerKind = "image"
	KindSegmentation LayerKind = "segmentation"
)

// Source is one data source of a layer: a store locator plus the transform
// placing it in the output space.
type Source struct {
	URL       string     `json:"url"`
	Transform *Transform `json:"transform,omitempty"`
}

// Layer is the viewer-facing rendering unit compiled from one volume.
// Kind-specific fields: Shader applies to image layers, Segments to
// segmentation layers. Serialization dispatches on Kind.
type Layer struct {
	Kind      LayerKind
	Name      string
	Sources   []Source
	Opacity   float64
	Shader    string
	HasShader bool
	Segments  []string
}

// imageLayerJSON and segmentationLayerJSON are the fixed wire shapes the
// viewer decoder expects; field names must not change.
type imageLayerJSON struct {
	Type    string      `json:"type"`
	Source  interface{} `json:"source"`
	Name    string      `json:"name"`
	Opacity float64     `json:"opacity"`
	Blend   string      `json:"blend"`
	Shader  string      `json:"shader,omitempty"`
}

type segmentationLayerJSON struct {
	Type     string      `json:"type"`
	Source   interface{} `json:"source"`
	Name     string      `json:"name"`
	Opacity  float64     `json:"opacity"`
	Segments []string    `json:"segments,omitempty"`
}

// MarshalJSON encodes the layer in the viewer's wire shape. A single source
// serializes as an object, multiple sources as an array.
func (l Layer) MarshalJSON() ([]byte, error) {
	var src interface{}
	switch len(l.Sources) {
	case 0:
		return nil, fmt.Errorf("layer %q has no sources", l.Name)
	case 1:
		src = l.Sources[0]
	default:
		src = l.Sources
	}

	switch l.Kind {
	case KindImage:
		out := imageLayerJSON{
			Type:    string(KindImage),
			Source:  src,
			Name:    l.Name,
			Opacity: l.Opacity,
			Blend:   "additive",
		}
		if l.HasShader {
			out.Shader = l.Shader
		}
		return json.Marshal(out)
	case KindSegmentation:
		return json.Marshal(segmentationLayerJSON{
			Type:     string(KindSegmentation),
			Source:   src,
			Name:     l.Name,
			Opacity:  l.Opacity,
			Segments: l.Segments,
		})
	default:
		return nil, fmt.Errorf("layer %q has unknown kind %q", l.Name, l.Kind)
	}
}

// SelectedLayer marks the viewer's initially active layer.
type SelectedLayer struct {
	Layer   string `json:"layer"`
	Visible bool   `json:"visible"`
}

// ViewerState is the complete camera + layers + layout specification encoded
// into a shareable viewer link. Field names and nesting are fixed by the
// external viewer's decoder. Constructed per link request, never mutated
// after serialization.
type ViewerState struct {
	Dimensions              Space         `json:"dimensions"`
	Position                []float64     `json:"position,omitempty"`
	CrossSectionScale       float64       `json:"crossSectionScale"`
	CrossSectionOrientation []float64     `json:"crossSectionOrientation,omitempty"`
	ProjectionScale         float64       `json:"projectionScale"`
	ProjectionOrientation   []float64     `json:"projectionOrientation,omitempty"`
	Layers                  []Layer       `json:"layers"`
	SelectedLayer           SelectedLayer `json:"selectedLayer"`
	Layout                  string        `json:"layout"`
	CrossSectionBackground  string        `json:"crossSectionBackgroundColor"`
	ProjectionBackground    string        `json:"projectionBackgroundColor"`
}
