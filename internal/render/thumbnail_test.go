package render

import (
	"bytes"
	"image/png"
	"testing"
)

func TestPlaceholderProducesValidPNG(t *testing.T) {
	t.Parallel()

	tn := NewThumbnailer(Config{Size: 128})
	data, err := tn.Placeholder("jrc_hela-2")
	if err != nil {
		t.Fatalf("Placeholder failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 128 || bounds.Dy() != 128 {
		t.Errorf("unexpected size: %v", bounds)
	}
}

func TestPlaceholderDeterministic(t *testing.T) {
	t.Parallel()

	tn := NewThumbnailer(Config{Size: 64})
	a, err := tn.Placeholder("jrc_hela-2")
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	b, err := tn.Placeholder("jrc_hela-2")
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same key should render identical placeholders")
	}

	other, err := tn.Placeholder("jrc_ctl-id8-1")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if bytes.Equal(a, other) {
		t.Error("different keys should render different placeholders")
	}
}
