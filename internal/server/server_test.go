package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/process-dojo/kiosk/internal/biometric"
	"github.com/process-dojo/kiosk/internal/people"
	"github.com/process-dojo/kiosk/internal/sessionlog"
	"github.com/process-dojo/kiosk/internal/templatestore"
)

const testSessionName = "TESTSESSION"

// equalityMatcher stands in for the device bridge.
type equalityMatcher struct {
	err error
}

func (m *equalityMatcher) Match(_ context.Context, template1, template2 []byte, _ int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return bytes.Equal(template1, template2), nil
}

type fixture struct {
	service      *biometric.Service
	employees    people.Store
	sessionLog   sessionlog.Store
	sessionStore sessions.Store
	matcher      *equalityMatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	templates, err := templatestore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	var sessionStore = sessions.NewCookieStore([]byte("test"))
	var employees = people.NewEmbeddedStore(sessionStore, map[string]people.AuthenticEmployee{
		"admin": {
			Employee: people.Employee{
				Username:   "admin",
				EmployeeID: "0001",
				Staff:      true,
			},
			PasswordHash: string(hash),
		},
		"jdoe": {
			Employee: people.Employee{
				Username:   "jdoe",
				GivenName:  "Jane",
				FamilyName: "Doe",
				EmployeeID: "1001",
				Department: "Maintenance",
			},
		},
	}, 3600)

	var matcher = &equalityMatcher{}
	return &fixture{
		service:      biometric.NewService(templates, employees, matcher, 5),
		employees:    employees,
		sessionLog:   sessionlog.NewMemoryStore(),
		sessionStore: sessionStore,
		matcher:      matcher,
	}
}

func (f *fixture) enroll(t *testing.T, username string, template []byte) {
	t.Helper()
	employee, err := f.employees.Lookup(username)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.Enroll(employee, template, nil); err != nil {
		t.Fatal(err)
	}
}

// sessionCookies returns browser cookies for an active session of username.
func (f *fixture) sessionCookies(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	var r = httptest.NewRequest(http.MethodGet, "/", nil)
	var w = httptest.NewRecorder()
	if err := f.employees.SaveSession(r, w, time.Now(), username, testSessionName); err != nil {
		t.Fatal(err)
	}
	return w.Result().Cookies()
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body, err = json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	var r = httptest.NewRequest(method, target, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return body
}
