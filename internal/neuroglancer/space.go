// Package neuroglancer compiles dataset selections into the viewer-state
// fragment consumed by a neuroglancer-style volumetric viewer: per-volume
// coordinate transforms, conditional shader programs, layer assembly and the
// URL-safe state encoding.
package neuroglancer

import (
	"encoding/json"
	"fmt"
)

// Dimension is one axis of a coordinate space: physical unit size plus unit
// string. It serializes as the two-element array the viewer decoder expects.
type Dimension struct {
	Scale float64
	Unit  string
}

// MarshalJSON encodes the dimension as [scale, unit].
func (d Dimension) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{d.Scale, d.Unit})
}

// UnmarshalJSON decodes a [scale, unit] pair.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	var pair [2]interface{}
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	scale, ok := pair[0].(float64)
	if !ok {
		return fmt.Errorf("dimension scale must be a number, got %T", pair[0])
	}
	unit, ok := pair[1].(string)
	if !ok {
		return fmt.Errorf("dimension unit must be a string, got %T", pair[1])
	}
	d.Scale = scale
	d.Unit = unit
	return nil
}

// Space is a named-axis coordinate space. encoding/json sorts map keys, so
// the serialized axis order (x, y, z) is stable.
type Space map[string]Dimension

// nanometer is the output unit scale: all spaces are meter-based at
// nanometer granularity.
const nanometer = 1e-9

// spatialAxes is the fixed axis order of the output space and of all
// transform matrices.
var spatialAxes = [3]string{"x", "y", "z"}

// OutputSpace returns the fixed display coordinate space shared by every
// dataset: three nanometer-scaled meter axes.
func OutputSpace() Space {
	return Space{
		"x": {Scale: nanometer, Unit: "m"},
		"y": {Scale: nanometer, Unit: "m"},
		"z": {Scale: nanometer, Unit: "m"},
	}
}
