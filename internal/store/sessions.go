package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionNotFound reports a lookup for a token with no stored session.
var ErrSessionNotFound = errors.New("session not found")

// SaveSession inserts or replaces the stored snapshot for a token.
func (s *Store) SaveSession(token, username string, state []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (token, username, state) VALUES (?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP
	`, token, username, string(state))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns the username and stored snapshot for a token.
func (s *Store) GetSession(token string) (username string, state []byte, err error) {
	var raw string
	err = s.db.QueryRow(`SELECT username, state FROM sessions WHERE token = ?`, token).
		Scan(&username, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrSessionNotFound
		}
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}
	return username, []byte(raw), nil
}

// DeleteSession removes a stored session. Deleting an absent token is
// not an error.
func (s *Store) DeleteSession(token string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CountSessions returns the number of stored sessions.
func (s *Store) CountSessions() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
