package neuroglancer

import (
	"math"
	"testing"

	"github.com/fibsem-portal/server/internal/dataset"
)

func TestSourceTransformNegativeScale(t *testing.T) {
	t.Parallel()

	st := dataset.SpatialTransform{
		Axes:      []string{"x", "y", "z"},
		Units:     []string{"nm", "nm", "nm"},
		Scale:     []float64{-5, 5, 5},
		Translate: []float64{0, 0, 0},
	}

	tf, err := SourceTransform(st)
	if err != nil {
		t.Fatalf("SourceTransform failed: %v", err)
	}

	wantDiag := []float64{-1, 1, 1}
	for i := 0; i < 3; i++ {
		if tf.Matrix[i][i] != wantDiag[i] {
			t.Errorf("matrix diagonal[%d] = %v, want %v", i, tf.Matrix[i][i], wantDiag[i])
		}
	}

	// Input unit size carries the magnitude; it must never be negative.
	x := tf.InputDimensions["x"]
	if want := 1e-9 * math.Abs(-5.0); x.Scale != want {
		t.Errorf("x input dimension scale = %v, want %v", x.Scale, want)
	}
	if x.Unit != "m" {
		t.Errorf("x input dimension unit = %q, want m", x.Unit)
	}
}

func TestSourceTransformUnitAndSignSeparation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		scale []float64
	}{
		{"allPositive", []float64{4.0, 4.0, 5.24}},
		{"allNegative", []float64{-4.0, -4.0, -5.24}},
		{"mixed", []float64{4.0, -2.96, 3.24}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := dataset.SpatialTransform{
				Axes:      []string{"x", "y", "z"},
				Units:     []string{"nm", "nm", "nm"},
				Scale:     tc.scale,
				Translate: []float64{100, -200, 0.5},
			}
			tf, err := SourceTransform(st)
			if err != nil {
				t.Fatalf("SourceTransform failed: %v", err)
			}

			for row, axis := range []string{"x", "y", "z"} {
				scale := tc.scale[row]

				wantUnit := 1e-9 * math.Abs(scale)
				if got := tf.InputDimensions[axis].Scale; got != wantUnit {
					t.Errorf("%s unit size = %v, want %v", axis, got, wantUnit)
				}

				wantSign := 1.0
				if scale < 0 {
					wantSign = -1.0
				}
				if got := tf.Matrix[row][row]; got != wantSign {
					t.Errorf("%s diagonal = %v, want %v", axis, got, wantSign)
				}

				// Translation column passes through unchanged.
				if got := tf.Matrix[row][3]; got != st.Translate[row] {
					t.Errorf("%s translate = %v, want %v", axis, got, st.Translate[row])
				}

				// Off-diagonal entries stay zero.
				for col := 0; col < 3; col++ {
					if col != row && tf.Matrix[row][col] != 0 {
						t.Errorf("matrix[%d][%d] = %v, want 0", row, col, tf.Matrix[row][col])
					}
				}
			}
		})
	}
}

func TestSourceTransformAxisReorder(t *testing.T) {
	t.Parallel()

	// Array stored z-fastest: the matrix rows still follow x, y, z.
	st := dataset.SpatialTransform{
		Axes:      []string{"z", "y", "x"},
		Units:     []string{"nm", "nm", "nm"},
		Scale:     []float64{5.24, 4.0, -4.0},
		Translate: []float64{30, 20, 10},
	}

	tf, err := SourceTransform(st)
	if err != nil {
		t.Fatalf("SourceTransform failed: %v", err)
	}

	if tf.Matrix[0][0] != -1 || tf.Matrix[0][3] != 10 {
		t.Errorf("x row = sign %v translate %v, want -1, 10", tf.Matrix[0][0], tf.Matrix[0][3])
	}
	if tf.Matrix[2][2] != 1 || tf.Matrix[2][3] != 30 {
		t.Errorf("z row = sign %v translate %v, want 1, 30", tf.Matrix[2][2], tf.Matrix[2][3])
	}
	if got, want := tf.InputDimensions["z"].Scale, 1e-9*5.24; got != want {
		t.Errorf("z unit size = %v, want %v", got, want)
	}
}

func TestSourceTransformMissingAxis(t *testing.T) {
	t.Parallel()

	st := dataset.SpatialTransform{
		Axes:      []string{"c", "y", "x"},
		Units:     []string{"", "nm", "nm"},
		Scale:     []float64{1, 4, 4},
		Translate: []float64{0, 0, 0},
	}

	if _, err := SourceTransform(st); err == nil {
		t.Fatal("expected error for transform without z axis")
	}
}
