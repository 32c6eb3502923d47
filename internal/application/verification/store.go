package verification

import (
	"errors"
	"sync"
	"time"

	"github.com/go-otp-verify/internal/domain"
)

var ErrNoSession = errors.New("no pending verification")

// Store persists the single pending verification for this client plus the credentials
// issued once a login completes. Save replaces whatever session was stored before.
type Store interface {
	Save(s *domain.VerificationSession) error
	Load() (*domain.VerificationSession, error)
	Clear() error
	SaveAuth(token string, user *domain.User) error
}

// Resume loads the stored session. Sessions older than maxAge are cleared and
// reported as ErrNoSession so stored passwords do not outlive the code they were for.
func Resume(store Store, maxAge time.Duration, now time.Time) (*domain.VerificationSession, error) {
	s, err := store.Load()
	if err != nil {
		return nil, err
	}
	if maxAge > 0 && !s.StartedAt.IsZero() && now.Sub(s.StartedAt) > maxAge {
		if err := store.Clear(); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}
	return s, nil
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	session *domain.VerificationSession
	token   string
	user    *domain.User
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Save(s *domain.VerificationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = cloneSession(s)
	return nil
}

func (m *MemoryStore) Load() (*domain.VerificationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	return cloneSession(m.session), nil
}

func cloneSession(s *domain.VerificationSession) *domain.VerificationSession {
	cp := *s
	if s.Credentials != nil {
		creds := *s.Credentials
		cp.Credentials = &creds
	}
	return &cp
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *MemoryStore) SaveAuth(token string, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = token, user
	return nil
}

// Auth returns the last saved token and user.
func (m *MemoryStore) Auth() (string, *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.user
}
