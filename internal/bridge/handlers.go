// Package bridge exposes the fingerprint driver over loopback HTTP for the
// kiosk browser and the web application.
package bridge

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/process-dojo/kiosk/internal/fingerprint"
	"github.com/process-dojo/kiosk/internal/httputil"
)

type statusHandler struct {
	driver fingerprint.Driver
}

// ServeHTTP fails soft: a missing device is reported as connected=false,
// never as an error status.
func (h *statusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var info = h.driver.Info()

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"connected": info.Connected,
		"width":     info.Width,
		"height":    info.Height,
	})
}

func StatusHandler(driver fingerprint.Driver) http.Handler {
	return &statusHandler{driver: driver}
}

type captureHandler struct {
	driver fingerprint.Driver
	// livePreview skips the template, for the polling preview loop.
	livePreview bool
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var result, err = h.driver.Capture(r.Context())
	if err != nil {
		httputil.Error(w, err.Error(), captureStatusCode(err))
		return
	}

	var response = map[string]any{
		"success": true,
		"image":   base64.StdEncoding.EncodeToString(result.Image),
		"quality": result.Quality,
		"width":   result.Width,
		"height":  result.Height,
	}
	if !h.livePreview {
		response["template"] = base64.StdEncoding.EncodeToString(result.Template)
	}

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, response)
}

func captureStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isDeviceError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isDeviceError(err error) bool {
	for _, known := range []error{
		fingerprint.ErrNotConnected,
		fingerprint.ErrCaptureFailed,
		fingerprint.ErrLowQuality,
		fingerprint.ErrInvalidTemplate,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

func CaptureHandler(driver fingerprint.Driver) http.Handler {
	return &captureHandler{driver: driver}
}

func LivePreviewHandler(driver fingerprint.Driver) http.Handler {
	return &captureHandler{driver: driver, livePreview: true}
}

type matchHandler struct {
	driver        fingerprint.Driver
	securityLevel int
}

func (h *matchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var request struct {
		Template1     string `json:"template1"`
		Template2     string `json:"template2"`
		SecurityLevel int    `json:"security_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputil.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}
	if request.Template1 == "" || request.Template2 == "" {
		httputil.Error(w, "both templates required", http.StatusBadRequest)
		return
	}

	template1, err := base64.StdEncoding.DecodeString(request.Template1)
	if err != nil {
		httputil.Error(w, "template1 is not valid base64", http.StatusBadRequest)
		return
	}
	template2, err := base64.StdEncoding.DecodeString(request.Template2)
	if err != nil {
		httputil.Error(w, "template2 is not valid base64", http.StatusBadRequest)
		return
	}

	var level = h.securityLevel
	if request.SecurityLevel != 0 {
		level = fingerprint.ClampSecurityLevel(request.SecurityLevel)
	}

	matched, err := h.driver.Match(r.Context(), template1, template2, level)
	if err != nil {
		httputil.Error(w, err.Error(), captureStatusCode(err))
		return
	}

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"matched": matched,
	})
}

func MatchHandler(driver fingerprint.Driver, securityLevel int) http.Handler {
	return &matchHandler{
		driver:        driver,
		securityLevel: fingerprint.ClampSecurityLevel(securityLevel),
	}
}

// NewRouter wires the bridge API. The kiosk page is served from another
// origin, so every route answers preflights and carries CORS headers.
func NewRouter(driver fingerprint.Driver, settings *Settings) *mux.Router {
	var router = mux.NewRouter()
	router.Use(allowCORS)
	router.Handle("/status", StatusHandler(driver)).
		Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/capture", CaptureHandler(driver)).
		Methods(http.MethodPost, http.MethodOptions)
	router.Handle("/live-preview", LivePreviewHandler(driver)).
		Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/match", MatchHandler(driver, settings.SecurityLevel)).
		Methods(http.MethodPost, http.MethodOptions)
	return router
}

func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.AllowCORS(w, r, []string{http.MethodGet, http.MethodPost, http.MethodOptions}, false)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
