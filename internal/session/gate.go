package session

import (
	"crypto/subtle"
	"errors"

	"github.com/CHAND7/ETE-Robotics-App/internal/config"
)

// ErrBadCredentials reports a rejected login.
var ErrBadCredentials = errors.New("invalid username or password")

// Gate checks logins against the configured admin credentials. Auth
// hardening is out of scope; this is a fixed single-user credential
// store.
type Gate struct {
	username string
	password string
}

// NewGate builds the gate from the auth config section.
func NewGate(cfg config.AuthConfig) *Gate {
	return &Gate{username: cfg.Username, password: cfg.Password}
}

// Check validates a credential pair in constant time.
func (g *Gate) Check(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if !userOK || !passOK {
		return ErrBadCredentials
	}
	return nil
}
