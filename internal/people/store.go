package people

import (
	"net/http"
	"time"
)

// Store is the employee directory plus browser-session bookkeeping. The
// biometric ID column is the only thing the kiosk ever writes back.
type Store interface {
	Authenticate(username, password string) (string, error)
	IsSessionActive(r *http.Request, sessionName string) (string, bool)
	SaveSession(r *http.Request, w http.ResponseWriter, authTime time.Time, username, sessionName string) error
	ClearSession(r *http.Request, w http.ResponseWriter, sessionName string) error
	Lookup(username string) (*Employee, error)
	LookupByEmployeeID(employeeID string) (*Employee, error)
	LookupByBiometricID(biometricID string) (*Employee, error)
	List() ([]Employee, error)
	// SetBiometricID records or, with an empty value, clears an
	// employee's enrollment reference.
	SetBiometricID(username, biometricID string) error
	Ping() error
}
