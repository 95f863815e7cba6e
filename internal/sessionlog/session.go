// Package sessionlog records one row per authenticated kiosk session:
// created at login, closed at logout, with a derived duration for the
// attendance reports built on top of this data.
package sessionlog

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

var ErrSessionNotFound = errors.New("login session not found")

type Session struct {
	ID              string     `json:"id" sql:"id"`
	Username        string     `json:"username" sql:"username"`
	LoginTime       time.Time  `json:"login_time" sql:"login_time"`
	LogoutTime      *time.Time `json:"logout_time,omitempty" sql:"logout_time"`
	DurationMinutes int        `json:"duration_minutes" sql:"duration_minutes"`
}

// NewSessionID returns a ULID so record IDs sort by login time.
func NewSessionID(timestamp time.Time) string {
	var id, _ = ulid.New(ulid.Timestamp(timestamp), rand.Reader)
	return id.String()
}

// DurationMinutes derives the stored duration from the two timestamps.
func DurationMinutes(login, logout time.Time) int {
	if logout.Before(login) {
		return 0
	}
	return int(logout.Sub(login).Minutes())
}

type Store interface {
	// Open creates a record at login time and returns it.
	Open(username string, at time.Time) (*Session, error)
	// Close sets the logout time and derived duration.
	Close(id string, at time.Time) error
	Find(id string) (*Session, error)
	// ListRecent returns up to limit sessions, newest first.
	ListRecent(limit int) ([]Session, error)
	Ping() error
}
