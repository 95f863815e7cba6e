package biometric

import "errors"

var (
	// ErrNotRecognized: the 1:N scan exhausted all enrolled templates
	// without a match. The kiosk should prompt for a re-scan.
	ErrNotRecognized = errors.New("fingerprint not recognized")

	// ErrBridgeUnavailable: the device bridge could not be reached at
	// all. The kiosk should prompt to check the scanner/bridge process.
	ErrBridgeUnavailable = errors.New("device bridge unavailable")

	ErrNotEnrolled = errors.New("employee has no enrolled fingerprint")
)
