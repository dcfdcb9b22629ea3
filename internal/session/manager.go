package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/CHAND7/ETE-Robotics-App/internal/store"
	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

// ErrNotFound reports an unknown or expired session token.
var ErrNotFound = errors.New("unknown session token")

// Session is one live wizard owned by one authenticated user.
type Session struct {
	Token    string
	Username string

	mu     sync.Mutex
	wizard *wizard.Wizard
}

// Manager owns every live session. Wizard snapshots are written to the
// store on each successful mutation so a browser refresh or a process
// restart resumes the draft where it was left.
type Manager struct {
	store  *store.Store
	steps  []wizard.Step
	source wizard.OptionSource

	mu     sync.Mutex
	active map[string]*Session
}

// NewManager creates the session manager.
func NewManager(st *store.Store, steps []wizard.Step, source wizard.OptionSource) *Manager {
	return &Manager{
		store:  st,
		steps:  steps,
		source: source,
		active: make(map[string]*Session),
	}
}

// Open starts a fresh session for an authenticated user and persists
// the empty wizard snapshot.
func (m *Manager) Open(username string) (*Session, error) {
	s := &Session{
		Token:    uuid.New().String(),
		Username: username,
		wizard:   wizard.New(m.steps, m.source),
	}

	if err := m.persist(s); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.active[s.Token] = s
	m.mu.Unlock()

	log.Info().Str("user", username).Msg("session opened")
	return s, nil
}

// Resume returns the live session for a token, rehydrating it from the
// store when the process restarted since the session was opened.
func (m *Manager) Resume(token string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.active[token]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	username, state, err := m.store.GetSession(token)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	w := wizard.New(m.steps, m.source)
	if err := w.RestoreState(state); err != nil {
		return nil, fmt.Errorf("stored session is unusable: %w", err)
	}

	s := &Session{Token: token, Username: username, wizard: w}

	m.mu.Lock()
	// Another request may have rehydrated concurrently; keep the first.
	if existing, ok := m.active[token]; ok {
		s = existing
	} else {
		m.active[token] = s
	}
	m.mu.Unlock()

	return s, nil
}

// Close drops a session from memory and from the store.
func (m *Manager) Close(token string) error {
	m.mu.Lock()
	delete(m.active, token)
	m.mu.Unlock()
	return m.store.DeleteSession(token)
}

// Mutate applies fn to the session's wizard under its lock and persists
// the snapshot when fn succeeds. A failed fn leaves the stored snapshot
// untouched.
func (m *Manager) Mutate(token string, fn func(*wizard.Wizard) error) error {
	s, err := m.Resume(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.wizard); err != nil {
		return err
	}
	return m.persist(s)
}

// View runs fn read-only against the session's wizard under its lock.
func (m *Manager) View(token string, fn func(*wizard.Wizard)) error {
	s, err := m.Resume(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.wizard)
	return nil
}

func (m *Manager) persist(s *Session) error {
	state, err := s.wizard.MarshalState()
	if err != nil {
		return fmt.Errorf("failed to snapshot session: %w", err)
	}
	if err := m.store.SaveSession(s.Token, s.Username, state); err != nil {
		return err
	}
	return nil
}
