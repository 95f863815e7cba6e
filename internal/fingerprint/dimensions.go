package fingerprint

// Known sensor resolutions, tried in order when a raw frame does not carry
// its own dimensions.
var knownDimensions = [][2]int{
	{260, 300},
	{300, 400},
	{320, 400},
	{256, 256},
}

const (
	DefaultWidth  = 260
	DefaultHeight = 300
)

// DetectDimensions guesses width and height of a raw grayscale frame from
// its byte count. ok is false when no known resolution fits.
func DetectDimensions(size int) (width, height int, ok bool) {
	for _, dim := range knownDimensions {
		if dim[0]*dim[1] == size {
			return dim[0], dim[1], true
		}
	}
	return DefaultWidth, DefaultHeight, false
}

// NormalizeFrame pads or trims a raw frame to the given dimensions.
func NormalizeFrame(frame []byte, width, height int) []byte {
	var expected = width * height
	if len(frame) == expected {
		return frame
	}
	if len(frame) < expected {
		return append(frame[:len(frame):len(frame)], make([]byte, expected-len(frame))...)
	}
	return frame[:expected]
}
