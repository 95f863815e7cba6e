// Package bridgeclient is the web application's HTTP client for the local
// fingerprint device bridge. Transport failures are reported as
// ErrUnreachable so callers can tell "check the USB cable / start the
// bridge" apart from a negative match result.
package bridgeclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/process-dojo/kiosk/internal/fingerprint"
)

const DefaultBaseURL = "http://localhost:5000"

var ErrUnreachable = errors.New("device bridge not reachable")

type DeviceStatus struct {
	Connected bool `json:"connected"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type statusResponse struct {
	Success   bool   `json:"success"`
	Connected bool   `json:"connected"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Error     string `json:"error"`
}

type captureResponse struct {
	Success  bool   `json:"success"`
	Image    string `json:"image"`
	Template string `json:"template"`
	Quality  int    `json:"quality"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Error    string `json:"error"`
}

type matchRequest struct {
	Template1     string `json:"template1"`
	Template2     string `json:"template2"`
	SecurityLevel int    `json:"security_level,omitempty"`
}

type matchResponse struct {
	Success bool   `json:"success"`
	Matched bool   `json:"matched"`
	Error   string `json:"error"`
}

func (c *Client) Status(ctx context.Context) (*DeviceStatus, error) {
	var out statusResponse
	if err := c.call(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("bridge status: %s", out.Error)
	}
	return &DeviceStatus{Connected: out.Connected, Width: out.Width, Height: out.Height}, nil
}

func (c *Client) Capture(ctx context.Context) (*fingerprint.CaptureResult, error) {
	var out captureResponse
	if err := c.call(ctx, http.MethodPost, "/capture", struct{}{}, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("bridge capture: %s", out.Error)
	}

	image, err := base64.StdEncoding.DecodeString(out.Image)
	if err != nil {
		return nil, fmt.Errorf("decoding captured image: %w", err)
	}
	template, err := base64.StdEncoding.DecodeString(out.Template)
	if err != nil {
		return nil, fmt.Errorf("decoding captured template: %w", err)
	}

	return &fingerprint.CaptureResult{
		Image:    image,
		Template: template,
		Quality:  out.Quality,
		Width:    out.Width,
		Height:   out.Height,
	}, nil
}

// Match compares two template blobs at the given security level; level 0
// leaves the choice to the bridge's configured default.
func (c *Client) Match(ctx context.Context, template1, template2 []byte, securityLevel int) (bool, error) {
	var in = matchRequest{
		Template1:     base64.StdEncoding.EncodeToString(template1),
		Template2:     base64.StdEncoding.EncodeToString(template2),
		SecurityLevel: securityLevel,
	}
	var out matchResponse
	if err := c.call(ctx, http.MethodPost, "/match", in, &out); err != nil {
		return false, err
	}
	if !out.Success {
		return false, fmt.Errorf("bridge match: %s", out.Error)
	}
	return out.Matched, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		var payload, err = json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	// Bridge errors still carry the JSON envelope; only an undecodable
	// body is treated as a transport-level failure.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: unexpected response: %v", ErrUnreachable, err)
	}
	return nil
}
