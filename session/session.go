// Package session tracks uploaded analyses for the HTTP server. Each
// session owns a temp directory for its uploaded file and the analysis
// result computed from it; sessions expire after a TTL and their files are
// removed. Independent sessions share no mutable state, so analyses for
// different uploads may run fully in parallel.
package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"

	"github.com/XiaoShengSPiano/test-tools/analysis"
	"github.com/XiaoShengSPiano/test-tools/constants"
)

// Session is one uploaded file plus its analysis result.
type Session struct {
	ID        string
	Dir       string
	FileName  string
	CreatedAt time.Time
	Result    *analysis.Result
}

// SaveUpload writes the uploaded bytes into the session dir and returns the
// stored path.
func (s *Session) SaveUpload(name string, data []byte) (string, error) {
	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0666); err != nil {
		return "", err
	}
	s.FileName = filepath.Base(name)
	return path, nil
}

// Discard deletes the files of a session that was never registered.
func (s *Session) Discard() {
	os.RemoveAll(s.Dir)
}

// Manager owns the live sessions. Expiry runs as a debounced sweep so a
// burst of requests triggers at most one scan.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	sweep    func(func())
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		sweep:    debounce.New(10 * time.Second),
	}
}

// Create makes a new session with a fresh temp dir. The session stays
// invisible to Get until Register is called, so callers finish populating
// it before concurrent requests can observe it.
func (m *Manager) Create() (*Session, error) {
	dir, err := os.MkdirTemp(constants.GetSessionDir(), "spmid-session-")
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        uuid.New().String(),
		Dir:       dir,
		CreatedAt: time.Now(),
	}, nil
}

// Register makes a session visible to Get.
func (m *Manager) Register(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.sweep(m.expire)
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	m.sweep(m.expire)
	return s, ok
}

// Close removes a session and deletes its files.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		os.RemoveAll(s.Dir)
	}
}

// Len returns the live session count.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expire() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		os.RemoveAll(s.Dir)
	}
}
