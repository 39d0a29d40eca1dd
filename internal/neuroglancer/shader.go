package neuroglancer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fibsem-portal/server/internal/dataset"
)

// Shader synthesizes the display program for a volume. Scalar volumes get a
// parameterized program with four controls: a normalization window inside the
// hard contrast range, an invert toggle and a tint color. Label volumes get
// an empty-body program so the viewer colors by segment id. Any other sample
// type returns ok=false and the caller omits the shader field. This function
// never fails; unrecognized input degrades to "no shader".
func Shader(ds dataset.DisplaySettings, st dataset.SampleType) (shader string, ok bool) {
	switch st {
	case dataset.SampleScalar:
		return scalarShader(ds), true
	case dataset.SampleLabel:
		return "void main() {}\n", true
	default:
		return "", false
	}
}

func scalarShader(ds dataset.DisplaySettings) string {
	cl := ds.ContrastLimits
	invert := 0
	if ds.InvertLUT {
		invert = 1
	}
	color := ds.Color
	if color == "" {
		color = "#ffffff"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#uicontrol invlerp normalized(range=[%s, %s], window=[%s, %s])\n",
		shaderFloat(cl.Start), shaderFloat(cl.End), shaderFloat(cl.Min), shaderFloat(cl.Max))
	fmt.Fprintf(&b, "#uicontrol int invertColormap slider(min=0, max=1, step=1, default=%d)\n", invert)
	fmt.Fprintf(&b, "#uicontrol vec3 color color(default=\"%s\")\n", color)
	b.WriteString("float inverter(float val, int invert) { return 0.5 + (2.0 * (0.5 - float(invert)) * (val - 0.5)); }\n")
	b.WriteString("void main() {\n")
	b.WriteString("  emitRGB(color * inverter(normalized(), invertColormap));\n")
	b.WriteString("}\n")
	return b.String()
}

func shaderFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
