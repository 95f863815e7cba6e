package sessionlog

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/blockloop/scan/v2"
	_ "github.com/lib/pq"
)

type StoreSettings struct {
	URI         string `json:"uri,omitempty"`
	InsertQuery string `json:"insert_query,omitempty"`
	CloseQuery  string `json:"close_query,omitempty"`
	FindQuery   string `json:"find_query,omitempty"`
	ListQuery   string `json:"list_query,omitempty"`
}

// sqlStore persists session records in PostgreSQL with the configured
// queries, for plants that aggregate attendance across kiosks.
type sqlStore struct {
	dbconn   *sql.DB
	settings *StoreSettings
}

func NewSqlStore(dbs map[string]*sql.DB, settings *StoreSettings) (Store, error) {
	if dbs[settings.URI] == nil {
		dbconn, err := sql.Open("postgres", settings.URI)
		if err != nil {
			return nil, err
		}
		dbs[settings.URI] = dbconn
	}
	return &sqlStore{
		dbconn:   dbs[settings.URI],
		settings: settings,
	}, nil
}

func (s *sqlStore) Open(username string, at time.Time) (*Session, error) {
	var session = Session{
		ID:        NewSessionID(at),
		Username:  username,
		LoginTime: at,
	}

	// INSERT INTO login_sessions (id, username, login_time) VALUES ($1, $2, $3)
	log.Printf("SQL: %s; -- %s, %s", s.settings.InsertQuery, session.ID, username)
	if _, err := s.dbconn.Exec(s.settings.InsertQuery, session.ID, session.Username, session.LoginTime); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *sqlStore) Close(id string, at time.Time) error {
	var session, err = s.Find(id)
	if err != nil {
		return err
	}

	// UPDATE login_sessions SET logout_time = $2, duration_minutes = $3 WHERE id = $1
	log.Printf("SQL: %s; -- %s", s.settings.CloseQuery, id)
	result, err := s.dbconn.Exec(s.settings.CloseQuery, id, at, DurationMinutes(session.LoginTime, at))
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *sqlStore) Find(id string) (*Session, error) {
	var session Session

	// SELECT id, username, login_time, logout_time, duration_minutes FROM login_sessions WHERE id = $1
	log.Printf("SQL: %s; -- %s", s.settings.FindQuery, id)
	if rows, err := s.dbconn.Query(s.settings.FindQuery, id); err == nil {
		if err := scan.RowStrict(&session, rows); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrSessionNotFound
			}
			return nil, err
		}
	} else {
		return nil, err
	}
	return &session, nil
}

func (s *sqlStore) ListRecent(limit int) ([]Session, error) {
	var sessions []Session

	// SELECT id, username, login_time, logout_time, duration_minutes
	// FROM login_sessions ORDER BY login_time DESC LIMIT $1
	log.Printf("SQL: %s; -- %d", s.settings.ListQuery, limit)
	if rows, err := s.dbconn.Query(s.settings.ListQuery, limit); err == nil {
		if err := scan.RowsStrict(&sessions, rows); err != nil {
			return nil, err
		}
	} else {
		return nil, err
	}
	return sessions, nil
}

func (s *sqlStore) Ping() error {
	return s.dbconn.Ping()
}
