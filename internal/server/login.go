package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/process-dojo/kiosk/internal/httputil"
	"github.com/process-dojo/kiosk/internal/people"
	"github.com/process-dojo/kiosk/internal/sessionlog"
	"github.com/process-dojo/kiosk/internal/stringutil"
)

type loginHandler struct {
	employees    people.Store
	sessionLog   sessionlog.Store
	sessionStore sessions.Store
	sessionName  string
}

// ServeHTTP is the password fallback for staff, used on the enrollment
// workstation and whenever the scanner is down.
func (h *loginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputil.Error(w, "invalid JSON data", http.StatusBadRequest)
		return
	}
	if stringutil.IsAnyEmpty(request.Username, request.Password) {
		httputil.Error(w, "username and password must not be empty", http.StatusBadRequest)
		return
	}

	var username, err = h.employees.Authenticate(request.Username, request.Password)
	if err != nil {
		httputil.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	employee, err := h.employees.Lookup(username)
	if err != nil {
		httputil.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var now = time.Now()
	record, err := h.sessionLog.Open(username, now)
	if err != nil {
		httputil.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var session, _ = h.sessionStore.Get(r, h.sessionName)
	session.Values["uid"] = username
	session.Values["sct"] = now.Unix()
	session.Values["sid"] = record.ID
	if err := session.Save(r, w); err != nil {
		httputil.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("username=%s session=%s", username, record.ID)

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    employeePayload(employee),
	})
}

func LoginHandler(employees people.Store, sessionLog sessionlog.Store, sessionStore sessions.Store, sessionName string) http.Handler {
	return &loginHandler{
		employees:    employees,
		sessionLog:   sessionLog,
		sessionStore: sessionStore,
		sessionName:  sessionName,
	}
}
