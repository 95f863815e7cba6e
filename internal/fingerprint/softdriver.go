package fingerprint

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/jtejido/sourceafis"
	"github.com/jtejido/sourceafis/config"
)

// softDriver is a software Driver backed by the sourceafis engine. Its
// sensor is a spool directory of raw grayscale frames, which stands in for
// scanner hardware on development kiosks; matching is fully functional and
// needs no device at all. Template blobs are PNG-encoded normalized frames
// and are opaque to every caller.
type softDriver struct {
	framesDir string

	mu     sync.Mutex
	opened bool
	next   int
	logger *sourceafis.TransparencyLogger
}

type transparencyContents struct{}

func (c *transparencyContents) Accepts(key string) bool {
	return false
}

func (c *transparencyContents) Accept(key, mime string, data []byte) error {
	return nil
}

// NewSoftDriver returns a sourceafis-backed driver. An empty framesDir
// yields a match-only driver that reports Connected=false.
func NewSoftDriver(framesDir string) Driver {
	return &softDriver{framesDir: framesDir}
}

func (d *softDriver) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	config.LoadDefaultConfig()
	config.Config.Workers = runtime.NumCPU()
	d.logger = sourceafis.NewTransparencyLogger(new(transparencyContents))

	if d.framesDir != "" {
		if info, err := os.Stat(d.framesDir); err != nil || !info.IsDir() {
			return fmt.Errorf("frames directory %s not usable: %w", d.framesDir, err)
		}
	}

	d.opened = true
	return nil
}

func (d *softDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = false
	return nil
}

func (d *softDriver) Info() DeviceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened || d.framesDir == "" {
		return DeviceInfo{Connected: false}
	}
	if frames, err := d.listFrames(); err != nil || len(frames) == 0 {
		return DeviceInfo{Connected: false}
	}
	return DeviceInfo{Connected: true, Width: DefaultWidth, Height: DefaultHeight}
}

func (d *softDriver) Capture(ctx context.Context) (*CaptureResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened || d.framesDir == "" {
		return nil, ErrNotConnected
	}

	var frames, err = d.listFrames()
	if err != nil || len(frames) == 0 {
		return nil, ErrNotConnected
	}

	var frameFile = frames[d.next%len(frames)]
	d.next++

	raw, err := os.ReadFile(frameFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	var width, height, known = DetectDimensions(len(raw))
	if !known {
		log.Printf("!!! frame %s has unexpected size %d, normalizing to %dx%d", filepath.Base(frameFile), len(raw), width, height)
		raw = NormalizeFrame(raw, width, height)
	}

	template, err := encodeFrame(raw, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	// Reject frames the engine cannot extract features from right here,
	// instead of failing later during identification.
	if err := d.validateTemplate(template); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	return &CaptureResult{
		Image:    raw,
		Template: template,
		Quality:  frameQuality(raw),
		Width:    width,
		Height:   height,
	}, nil
}

func (d *softDriver) Match(ctx context.Context, template1, template2 []byte, securityLevel int) (bool, error) {
	d.mu.Lock()
	var logger = d.logger
	d.mu.Unlock()
	if logger == nil {
		logger = sourceafis.NewTransparencyLogger(new(transparencyContents))
	}

	probePath, probeDone, err := templateTempFile(template1)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	defer probeDone()
	candidatePath, candidateDone, err := templateTempFile(template2)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	defer candidateDone()

	probeImg, err := sourceafis.LoadImage(probePath)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	candidateImg, err := sourceafis.LoadImage(candidatePath)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	var tc = sourceafis.NewTemplateCreator(logger)
	probe, err := tc.Template(probeImg)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	candidate, err := tc.Template(candidateImg)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	matcher, err := sourceafis.NewMatcher(logger, probe)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	var score = matcher.Match(ctx, candidate)
	return score >= scoreThreshold(securityLevel), nil
}

func (d *softDriver) validateTemplate(template []byte) error {
	var path, done, err = templateTempFile(template)
	if err != nil {
		return err
	}
	defer done()

	img, err := sourceafis.LoadImage(path)
	if err != nil {
		return err
	}
	if _, err := sourceafis.NewTemplateCreator(d.logger).Template(img); err != nil {
		return err
	}
	return nil
}

func (d *softDriver) listFrames() ([]string, error) {
	var entries, err = os.ReadDir(d.framesDir)
	if err != nil {
		return nil, err
	}
	var frames []string
	for _, entry := range entries {
		if !entry.IsDir() {
			frames = append(frames, filepath.Join(d.framesDir, entry.Name()))
		}
	}
	sort.Strings(frames)
	return frames, nil
}

// scoreThreshold maps the 1-9 security scale onto engine scores. Level 5
// lands on 40, the engine's conventional operating point at FMR 0.01%.
func scoreThreshold(level int) float64 {
	return float64(ClampSecurityLevel(level)) * 8
}

// templateTempFile materializes a template blob as a temp file for the
// engine's file-based image loader. done removes the file.
func templateTempFile(template []byte) (path string, done func(), err error) {
	var tmp *os.File
	tmp, err = os.CreateTemp("", "fptemplate-*.png")
	if err != nil {
		return "", nil, err
	}

	if _, err = tmp.Write(template); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}

	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

func encodeFrame(raw []byte, width, height int) ([]byte, error) {
	var img = image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, raw)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// frameQuality scores the dynamic range of a raw frame on the 0-100 scale.
// A crude stand-in for a vendor quality metric: flat frames score near
// zero, well-contrasted ridge images score high.
func frameQuality(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}

	var sum float64
	for _, p := range raw {
		sum += float64(p)
	}
	var mean = sum / float64(len(raw))

	var variance float64
	for _, p := range raw {
		var d = float64(p) - mean
		variance += d * d
	}
	var stddev = math.Sqrt(variance / float64(len(raw)))

	var quality = int(stddev * 1.5)
	if quality > 100 {
		quality = 100
	}
	return quality
}
