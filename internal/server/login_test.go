package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoginWithPassword(t *testing.T) {
	var f = newFixture(t)
	var handler = LoginHandler(f.employees, f.sessionLog, f.sessionStore, testSessionName)

	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "admin",
		"password": "secret",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body)
	}
	var body = decodeBody(t, w)
	if body["success"] != true {
		t.Fatalf("got success %v, want true", body["success"])
	}
	if len(w.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	var f = newFixture(t)
	var handler = LoginHandler(f.employees, f.sessionLog, f.sessionStore, testSessionName)

	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	}))

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", w.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	var f = newFixture(t)
	var handler = LoginHandler(f.employees, f.sessionLog, f.sessionStore, testSessionName)

	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"username": "admin",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestLogoutClosesSessionRecord(t *testing.T) {
	var f = newFixture(t)

	record, err := f.sessionLog.Open("jdoe", time.Now().Add(-30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}

	// Build a browser session carrying the record id.
	var seed = httptest.NewRequest(http.MethodGet, "/", nil)
	var seedWriter = httptest.NewRecorder()
	session, _ := f.sessionStore.Get(seed, testSessionName)
	session.Values["uid"] = "jdoe"
	session.Values["sct"] = time.Now().Unix()
	session.Values["sid"] = record.ID
	if err := session.Save(seed, seedWriter); err != nil {
		t.Fatal(err)
	}

	var handler = LogoutHandler(f.sessionLog, f.sessionStore, testSessionName)
	var r = httptest.NewRequest(http.MethodPost, "/biometric/logout/", nil)
	for _, cookie := range seedWriter.Result().Cookies() {
		r.AddCookie(cookie)
	}
	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	closed, err := f.sessionLog.Find(record.ID)
	if err != nil {
		t.Fatal(err)
	}
	if closed.LogoutTime == nil {
		t.Error("expected session record to be closed")
	}
	if closed.DurationMinutes < 29 {
		t.Errorf("got duration %d, want at least 29", closed.DurationMinutes)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	var f = newFixture(t)
	var handler = LogoutHandler(f.sessionLog, f.sessionStore, testSessionName)

	var w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/biometric/logout/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
}
