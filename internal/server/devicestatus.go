package server

import (
	"log"
	"net/http"

	"github.com/process-dojo/kiosk/internal/biometric"
	"github.com/process-dojo/kiosk/internal/bridgeclient"
	"github.com/process-dojo/kiosk/internal/httputil"
)

type deviceStatusHandler struct {
	bridge  *bridgeclient.Client
	service *biometric.Service
}

// ServeHTTP reports scanner reachability for the login page banner. An
// unreachable bridge is a normal answer here, not an error status.
func (h *deviceStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var response = map[string]any{
		"success":          true,
		"device_connected": false,
		"enrolled_count":   h.service.EnrolledCount(),
	}

	if status, err := h.bridge.Status(r.Context()); err != nil {
		log.Printf("!!! bridge status failed: %v", err)
		response["error"] = err.Error()
	} else {
		response["device_connected"] = status.Connected
		response["device_info"] = map[string]any{
			"width":  status.Width,
			"height": status.Height,
		}
	}

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, response)
}

func DeviceStatusHandler(bridge *bridgeclient.Client, service *biometric.Service) http.Handler {
	return &deviceStatusHandler{bridge: bridge, service: service}
}
