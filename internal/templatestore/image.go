package templatestore

import (
	"bytes"
	"image"
	"image/png"
	"log"

	"github.com/process-dojo/kiosk/internal/fingerprint"
)

// EncodePreview converts a raw grayscale scanner frame to PNG. Frames
// arrive without dimensions, so the size is inferred from the byte count;
// unknown sizes are normalized to the canonical sensor resolution.
// Already-encoded PNG input passes through unchanged.
func EncodePreview(raw []byte) ([]byte, error) {
	if isPNG(raw) {
		return raw, nil
	}

	var width, height, known = fingerprint.DetectDimensions(len(raw))
	if !known {
		log.Printf("!!! raw frame size %d matches no known sensor, normalizing to %dx%d", len(raw), width, height)
		raw = fingerprint.NormalizeFrame(raw, width, height)
	}

	var img = image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, raw)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func isPNG(data []byte) bool {
	return len(data) > len(pngMagic) && bytes.Equal(data[:len(pngMagic)], pngMagic)
}
