package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/process-dojo/kiosk/internal/httputil"
	"github.com/process-dojo/kiosk/internal/sessionlog"
)

type logoutHandler struct {
	sessionLog   sessionlog.Store
	sessionStore sessions.Store
	sessionName  string
}

// ServeHTTP closes the attendance record and drops the browser session.
func (h *logoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.URL)

	var session, _ = h.sessionStore.Get(r, h.sessionName)

	if sid, ok := session.Values["sid"].(string); ok && sid != "" {
		if err := h.sessionLog.Close(sid, time.Now()); err != nil {
			// The cookie still gets dropped; a stale record is a
			// reporting problem, not a login problem.
			log.Printf("!!! closing session record %s failed: %v", sid, err)
		}
	}

	httputil.NoCache(w)

	if !session.IsNew {
		session.Options.MaxAge = -1
		if err := session.Save(r, w); err != nil {
			httputil.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func LogoutHandler(sessionLog sessionlog.Store, sessionStore sessions.Store, sessionName string) http.Handler {
	return &logoutHandler{
		sessionLog:   sessionLog,
		sessionStore: sessionStore,
		sessionName:  sessionName,
	}
}
