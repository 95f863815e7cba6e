package server

import (
	"log"
	"net/http"

	"github.com/process-dojo/kiosk/internal/httputil"
	"github.com/process-dojo/kiosk/internal/people"
	"github.com/process-dojo/kiosk/internal/sessionlog"
)

type healthHandler struct {
	employees  people.Store
	sessionLog sessionlog.Store
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	var status = struct {
		Status string `json:"status"`
	}{"UP"}
	var code = http.StatusOK

	if err := h.employees.Ping(); err != nil {
		log.Printf("%s %s", r.Method, r.URL)
		log.Printf("!!! 503 Service Unavailable - %s", err.Error())
		status.Status = err.Error()
		code = http.StatusServiceUnavailable
	} else if err := h.sessionLog.Ping(); err != nil {
		log.Printf("%s %s", r.Method, r.URL)
		log.Printf("!!! 503 Service Unavailable - %s", err.Error())
		status.Status = err.Error()
		code = http.StatusServiceUnavailable
	}

	httputil.NoCache(w)
	httputil.WriteJSON(w, code, status)
}

func HealthHandler(employees people.Store, sessionLog sessionlog.Store) http.Handler {
	return &healthHandler{
		employees:  employees,
		sessionLog: sessionLog,
	}
}
