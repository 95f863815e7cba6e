package server

import (
	"log"
	"net/http"

	"github.com/process-dojo/kiosk/internal/httputil"
	"github.com/process-dojo/kiosk/internal/people"
)

// RequireStaff guards the enrollment administration endpoints: a valid
// session is not enough, the logged-in employee must carry the staff flag.
func RequireStaff(employees people.Store, sessionName string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var username, active = employees.IsSessionActive(r, sessionName)
		if !active {
			httputil.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		var employee, err = employees.Lookup(username)
		if err != nil {
			log.Printf("!!! session user %s not in directory: %v", username, err)
			httputil.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if !employee.Staff {
			httputil.Error(w, "staff access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
