package people

import (
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

// embeddedStore serves employees straight from the config file. It is the
// default backend for small installs and the base the SQL and LDAP stores
// fall back to.
type embeddedStore struct {
	sessionStore sessions.Store
	sessionTTL   int64

	mu    sync.RWMutex
	users map[string]AuthenticEmployee
}

func NewEmbeddedStore(sessionStore sessions.Store, users map[string]AuthenticEmployee, sessionTTL int64) Store {
	return newEmbeddedStore(sessionStore, users, sessionTTL)
}

func newEmbeddedStore(sessionStore sessions.Store, users map[string]AuthenticEmployee, sessionTTL int64) *embeddedStore {
	var normalized = make(map[string]AuthenticEmployee, len(users))
	for username, user := range users {
		if user.Username == "" {
			user.Username = strings.ToLower(username)
		}
		normalized[strings.ToLower(username)] = user
	}
	return &embeddedStore{
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
		users:        normalized,
	}
}

func (e *embeddedStore) Authenticate(username, password string) (string, error) {
	var lowercaseUsername = strings.ToLower(username)

	e.mu.RLock()
	var authenticEmployee, foundUser = e.users[lowercaseUsername]
	e.mu.RUnlock()

	if foundUser && authenticEmployee.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(authenticEmployee.PasswordHash), []byte(password)); err != nil {
			log.Printf("!!! password comparison failed: %v", err)
		} else {
			return lowercaseUsername, nil
		}
	}

	return "", ErrAuthenticationFailed
}

func (e *embeddedStore) IsSessionActive(r *http.Request, sessionName string) (string, bool) {
	var session, _ = e.sessionStore.Get(r, sessionName)

	var uid, sct = session.Values["uid"], session.Values["sct"]

	if uid != nil && sct != nil && time.Unix(sct.(int64), 0).Add(time.Duration(e.sessionTTL)*time.Second).After(time.Now()) {
		return uid.(string), true
	}

	return "", false
}

func (e *embeddedStore) SaveSession(r *http.Request, w http.ResponseWriter, authTime time.Time, username, sessionName string) error {
	var session, _ = e.sessionStore.Get(r, sessionName)
	session.Values["uid"] = username
	session.Values["sct"] = authTime.Unix()
	return session.Save(r, w)
}

func (e *embeddedStore) ClearSession(r *http.Request, w http.ResponseWriter, sessionName string) error {
	var session, _ = e.sessionStore.Get(r, sessionName)
	if session.IsNew {
		return nil
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func (e *embeddedStore) Lookup(username string) (*Employee, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if authenticEmployee, found := e.users[strings.ToLower(username)]; found {
		var employee = authenticEmployee.Employee
		return &employee, nil
	}

	return nil, ErrEmployeeNotFound
}

func (e *embeddedStore) LookupByEmployeeID(employeeID string) (*Employee, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, authenticEmployee := range e.users {
		if strings.EqualFold(authenticEmployee.EmployeeID, employeeID) {
			var employee = authenticEmployee.Employee
			return &employee, nil
		}
	}

	return nil, ErrEmployeeNotFound
}

func (e *embeddedStore) LookupByBiometricID(biometricID string) (*Employee, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, authenticEmployee := range e.users {
		if authenticEmployee.BiometricID != "" && authenticEmployee.BiometricID == biometricID {
			var employee = authenticEmployee.Employee
			return &employee, nil
		}
	}

	return nil, ErrEmployeeNotFound
}

func (e *embeddedStore) List() ([]Employee, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var employees = make([]Employee, 0, len(e.users))
	for _, authenticEmployee := range e.users {
		employees = append(employees, authenticEmployee.Employee)
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeID < employees[j].EmployeeID
	})

	return employees, nil
}

func (e *embeddedStore) SetBiometricID(username, biometricID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var lowercaseUsername = strings.ToLower(username)
	var authenticEmployee, found = e.users[lowercaseUsername]
	if !found {
		return ErrEmployeeNotFound
	}

	authenticEmployee.BiometricID = biometricID
	e.users[lowercaseUsername] = authenticEmployee
	return nil
}

func (e *embeddedStore) Ping() error {
	return nil
}
