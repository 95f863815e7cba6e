package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/process-dojo/kiosk/internal/biometric"
	"github.com/process-dojo/kiosk/internal/httputil"
	"github.com/process-dojo/kiosk/internal/people"
	"github.com/process-dojo/kiosk/internal/sessionlog"
)

type authenticateHandler struct {
	service      *biometric.Service
	sessionLog   sessionlog.Store
	sessionStore sessions.Store
	sessionName  string
	redirectURL  string
}

// ServeHTTP identifies the scanned fingerprint against all enrollments and
// starts a kiosk session for the matched employee.
func (h *authenticateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var request struct {
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputil.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}
	if request.Template == "" {
		httputil.Error(w, "no fingerprint template provided", http.StatusBadRequest)
		return
	}

	var template, err = base64.StdEncoding.DecodeString(request.Template)
	if err != nil {
		httputil.Error(w, "template is not valid base64", http.StatusBadRequest)
		return
	}

	var timing = httputil.NewTiming()
	timing.Start("identify")
	employee, err := h.service.Identify(r.Context(), template)
	timing.Stop("identify")
	timing.Report(w)

	if err != nil {
		switch {
		case errors.Is(err, biometric.ErrNotRecognized):
			// Same shape and status the kiosk UI expects for a
			// plain "try again".
			httputil.NoCache(w)
			httputil.WriteJSON(w, http.StatusOK, map[string]any{
				"success": false,
				"error":   "Fingerprint not recognized. Please try again.",
			})
		case errors.Is(err, biometric.ErrBridgeUnavailable):
			httputil.Error(w, "Fingerprint service not accessible. Check the scanner and the device bridge.", http.StatusBadGateway)
		default:
			httputil.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	var now = time.Now()
	record, err := h.sessionLog.Open(employee.Username, now)
	if err != nil {
		httputil.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var session, _ = h.sessionStore.Get(r, h.sessionName)
	session.Values["uid"] = employee.Username
	session.Values["sct"] = now.Unix()
	session.Values["sid"] = record.ID
	if err := session.Save(r, w); err != nil {
		httputil.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("username=%s session=%s", employee.Username, record.ID)

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"user":         employeePayload(employee),
		"redirect_url": h.redirectURL,
	})
}

func employeePayload(employee *people.Employee) map[string]any {
	return map[string]any{
		"username":    employee.Username,
		"full_name":   employee.FullName(),
		"employee_id": employee.EmployeeID,
		"plant":       employee.Plant,
		"unit":        employee.Unit,
		"department":  employee.Department,
	}
}

func AuthenticateHandler(service *biometric.Service, sessionLog sessionlog.Store, sessionStore sessions.Store, sessionName, redirectURL string) http.Handler {
	return &authenticateHandler{
		service:      service,
		sessionLog:   sessionLog,
		sessionStore: sessionStore,
		sessionName:  sessionName,
		redirectURL:  redirectURL,
	}
}
