package neuroglancer

import (
	"fmt"
	"math"

	"github.com/fibsem-portal/server/internal/dataset"
)

// Transform positions a source inside the output space. The matrix diagonal
// carries only the sign of each axis scale; the magnitude lives in the input
// dimensions. The viewer composes matrix and space multiplicatively, so
// putting magnitude in both would double-count scale.
type Transform struct {
	Matrix          [3][4]float64 `json:"matrix"`
	InputDimensions Space         `json:"inputDimensions"`
}

// SourceTransform converts a volume's spatial transform (axis labels, signed
// nanometer scales, translate offsets) into the viewer's representation.
// Rows follow the fixed x, y, z output axis order regardless of how the
// source array orders its axes. A missing spatial axis label is malformed
// volume metadata.
func SourceTransform(st dataset.SpatialTransform) (Transform, error) {
	tf := Transform{InputDimensions: make(Space, len(spatialAxes))}

	for row, label := range spatialAxes {
		idx := st.AxisIndex(label)
		if idx < 0 {
			return Transform{}, fmt.Errorf("transform has no axis %q (axes: %v)", label, st.Axes)
		}
		if idx >= len(st.Scale) || idx >= len(st.Translate) {
			return Transform{}, fmt.Errorf("transform axis %q out of range (scale len %d, translate len %d)",
				label, len(st.Scale), len(st.Translate))
		}

		scale := st.Scale[idx]
		sign := 1.0
		if scale < 0 {
			sign = -1.0
		}

		tf.InputDimensions[label] = Dimension{Scale: nanometer * math.Abs(scale), Unit: "m"}
		tf.Matrix[row][row] = sign
		tf.Matrix[row][3] = st.Translate[idx]
	}

	return tf, nil
}
