package sessionlog

import (
	"errors"
	"testing"
	"time"
)

func TestOpenAndFind(t *testing.T) {
	var store = NewMemoryStore()
	var loginTime = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	record, err := store.Open("jdoe", loginTime)
	if err != nil {
		t.Fatal(err)
	}
	if record.ID == "" {
		t.Fatal("expected non-empty session id")
	}
	if record.Username != "jdoe" {
		t.Errorf("got username %q, want %q", record.Username, "jdoe")
	}

	found, err := store.Find(record.ID)
	if err != nil {
		t.Fatal(err)
	}
	if found.LogoutTime != nil {
		t.Error("open session must not have a logout time")
	}
}

func TestCloseSetsDuration(t *testing.T) {
	var store = NewMemoryStore()
	var loginTime = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	record, err := store.Open("jdoe", loginTime)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Close(record.ID, loginTime.Add(95*time.Minute)); err != nil {
		t.Fatal(err)
	}

	closed, err := store.Find(record.ID)
	if err != nil {
		t.Fatal(err)
	}
	if closed.LogoutTime == nil {
		t.Fatal("expected logout time to be set")
	}
	if closed.DurationMinutes != 95 {
		t.Errorf("got duration %d, want 95", closed.DurationMinutes)
	}
}

func TestCloseUnknownSession(t *testing.T) {
	var store = NewMemoryStore()
	if err := store.Close("no-such-id", time.Now()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestFindUnknownSession(t *testing.T) {
	var store = NewMemoryStore()
	if _, err := store.Find("no-such-id"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestListRecentNewestFirstWithLimit(t *testing.T) {
	var store = NewMemoryStore()
	var base = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	for i, username := range []string{"first", "second", "third"} {
		if _, err := store.Open(username, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	sessions, err := store.ListRecent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].Username != "third" || sessions[1].Username != "second" {
		t.Errorf("got order %s, %s; want third, second", sessions[0].Username, sessions[1].Username)
	}
}

func TestDurationMinutes(t *testing.T) {
	var login = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	if got := DurationMinutes(login, login.Add(30*time.Minute)); got != 30 {
		t.Errorf("got %d, want 30", got)
	}
	if got := DurationMinutes(login, login.Add(-time.Hour)); got != 0 {
		t.Errorf("got %d, want 0 for logout before login", got)
	}
}

func TestSessionIDsSortByLoginTime(t *testing.T) {
	var base = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	var earlier = NewSessionID(base)
	var later = NewSessionID(base.Add(time.Minute))
	if !(earlier < later) {
		t.Errorf("id %s should sort before %s", earlier, later)
	}
}
