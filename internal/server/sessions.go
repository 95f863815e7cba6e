package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/process-dojo/kiosk/internal/httputil"
	"github.com/process-dojo/kiosk/internal/sessionlog"
)

const defaultSessionListLimit = 50

type sessionListHandler struct {
	sessionLog sessionlog.Store
}

// ServeHTTP returns recent login/logout records, newest first.
func (h *sessionListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var limit = defaultSessionListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var sessions, err = h.sessionLog.ListRecent(limit)
	if err != nil {
		httputil.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.NoCache(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"sessions": sessions,
	})
}

func SessionListHandler(sessionLog sessionlog.Store) http.Handler {
	return &sessionListHandler{sessionLog: sessionLog}
}
