package templatestore

import (
	"bytes"
	"image/png"
	"testing"
)

func TestEncodePreviewKnownDimensions(t *testing.T) {
	var raw = make([]byte, 260*300)
	for i := range raw {
		raw[i] = byte(i % 256)
	}

	encoded, err := EncodePreview(raw)
	if err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	var bounds = img.Bounds()
	if bounds.Dx() != 260 || bounds.Dy() != 300 {
		t.Errorf("got %dx%d, want 260x300", bounds.Dx(), bounds.Dy())
	}
}

func TestEncodePreviewUnknownSizeNormalized(t *testing.T) {
	encoded, err := EncodePreview(make([]byte, 1000))
	if err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	var bounds = img.Bounds()
	if bounds.Dx() != 260 || bounds.Dy() != 300 {
		t.Errorf("got %dx%d, want 260x300", bounds.Dx(), bounds.Dy())
	}
}

func TestEncodePreviewPassesThroughPNG(t *testing.T) {
	var raw = make([]byte, 256*256)
	original, err := EncodePreview(raw)
	if err != nil {
		t.Fatal(err)
	}

	reencoded, err := EncodePreview(original)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(reencoded, original) {
		t.Error("PNG input must pass through unchanged")
	}
}
