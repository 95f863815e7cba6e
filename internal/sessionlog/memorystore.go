package sessionlog

import (
	"sort"
	"sync"
	"time"
)

// memoryStore keeps session records in process memory. The default for
// single-kiosk installs that do not report attendance centrally.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() Store {
	return &memoryStore{sessions: map[string]*Session{}}
}

func (m *memoryStore) Open(username string, at time.Time) (*Session, error) {
	var session = &Session{
		ID:        NewSessionID(at),
		Username:  username,
		LoginTime: at,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	var copied = *session
	return &copied, nil
}

func (m *memoryStore) Close(id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var session, found = m.sessions[id]
	if !found {
		return ErrSessionNotFound
	}

	var logout = at
	session.LogoutTime = &logout
	session.DurationMinutes = DurationMinutes(session.LoginTime, logout)
	return nil
}

func (m *memoryStore) Find(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var session, found = m.sessions[id]
	if !found {
		return nil, ErrSessionNotFound
	}
	var copied = *session
	return &copied, nil
}

func (m *memoryStore) ListRecent(limit int) ([]Session, error) {
	m.mu.RLock()
	var sessions = make([]Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, *session)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LoginTime.After(sessions[j].LoginTime)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (m *memoryStore) Ping() error {
	return nil
}
