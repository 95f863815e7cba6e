package fingerprint

import (
	"context"
	"errors"
)

const (
	// Matching strictness, trading false accepts against false rejects.
	MinSecurityLevel     = 1
	MaxSecurityLevel     = 9
	DefaultSecurityLevel = 5
)

var (
	ErrNotConnected    = errors.New("fingerprint device not connected")
	ErrCaptureFailed   = errors.New("fingerprint capture failed")
	ErrLowQuality      = errors.New("fingerprint image quality too low")
	ErrInvalidTemplate = errors.New("invalid fingerprint template")
)

// DeviceInfo describes the currently opened sensor.
type DeviceInfo struct {
	Connected bool
	Width     int
	Height    int
}

// CaptureResult is the outcome of one scan cycle. Image holds the raw
// grayscale frame, Template the engine's opaque template blob.
type CaptureResult struct {
	Image    []byte
	Template []byte
	Quality  int
	Width    int
	Height   int
}

// Driver is the capability interface over a fingerprint engine. A vendor
// SDK binding implements the same interface; the bridge never depends on a
// concrete engine.
type Driver interface {
	// Open acquires the device handle. Failures are terminal for the
	// owning process and must be surfaced at startup.
	Open(ctx context.Context) error
	Close() error

	// Info never blocks beyond the driver's own timeout and reports
	// Connected=false instead of failing on transient device absence.
	Info() DeviceInfo

	// Capture blocks for one scan cycle and returns the frame together
	// with its template and quality, so callers can reject poor scans
	// without a second round trip.
	Capture(ctx context.Context) (*CaptureResult, error)

	// Match compares two template blobs at the given security level.
	// It is deterministic for identical inputs and needs no device access.
	Match(ctx context.Context, template1, template2 []byte, securityLevel int) (bool, error)
}

// ClampSecurityLevel maps out-of-range or unset levels to the default scale.
func ClampSecurityLevel(level int) int {
	if level == 0 {
		return DefaultSecurityLevel
	}
	if level < MinSecurityLevel {
		return MinSecurityLevel
	}
	if level > MaxSecurityLevel {
		return MaxSecurityLevel
	}
	return level
}
