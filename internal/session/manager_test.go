package session_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CHAND7/ETE-Robotics-App/internal/config"
	"github.com/CHAND7/ETE-Robotics-App/internal/session"
	"github.com/CHAND7/ETE-Robotics-App/internal/store"
	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

type staticSource struct{}

func (staticSource) Options(category string) ([]string, error) {
	return []string{"Robotic"}, nil
}
func (staticSource) Has(category, value string) (bool, error) { return value == "Robotic", nil }
func (staticSource) UnitCost(string) float64                  { return 0 }
func (staticSource) Head(string) string                       { return "" }

func newTestManager(t *testing.T) (*session.Manager, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "rfq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	steps, err := wizard.LoadSteps()
	require.NoError(t, err)
	return session.NewManager(st, steps, staticSource{}), st
}

func TestGate(t *testing.T) {
	gate := session.NewGate(config.AuthConfig{Username: "admin", Password: "ete123"})

	require.NoError(t, gate.Check("admin", "ete123"))
	require.ErrorIs(t, gate.Check("admin", "wrong"), session.ErrBadCredentials)
	require.ErrorIs(t, gate.Check("root", "ete123"), session.ErrBadCredentials)
}

func TestOpenMutateView(t *testing.T) {
	m, _ := newTestManager(t)

	s, err := m.Open("admin")
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)

	err = m.Mutate(s.Token, func(w *wizard.Wizard) error {
		return w.UpdateField("customer_name", "Acme")
	})
	require.NoError(t, err)

	var got string
	require.NoError(t, m.View(s.Token, func(w *wizard.Wizard) {
		got = w.Draft().Field("customer_name")
	}))
	require.Equal(t, "Acme", got)
}

func TestResumeSurvivesRestart(t *testing.T) {
	m, st := newTestManager(t)

	s, err := m.Open("admin")
	require.NoError(t, err)
	require.NoError(t, m.Mutate(s.Token, func(w *wizard.Wizard) error {
		return w.UpdateField("customer_name", "Acme")
	}))

	// A new manager over the same store stands in for a process restart.
	steps, err := wizard.LoadSteps()
	require.NoError(t, err)
	m2 := session.NewManager(st, steps, staticSource{})

	var got string
	require.NoError(t, m2.View(s.Token, func(w *wizard.Wizard) {
		got = w.Draft().Field("customer_name")
	}))
	require.Equal(t, "Acme", got)
}

func TestFailedMutationNotPersisted(t *testing.T) {
	m, st := newTestManager(t)

	s, err := m.Open("admin")
	require.NoError(t, err)

	err = m.Mutate(s.Token, func(w *wizard.Wizard) error {
		return w.UpdateField("not_a_field", "x")
	})
	var verr *wizard.ValidationError
	require.ErrorAs(t, err, &verr)

	_, state, err := st.GetSession(s.Token)
	require.NoError(t, err)

	fresh := wizardFromState(t, state)
	require.Empty(t, fresh.Draft().Fields, "failed mutation must not reach the store")
}

func TestCloseRemovesSession(t *testing.T) {
	m, st := newTestManager(t)

	s, err := m.Open("admin")
	require.NoError(t, err)
	require.NoError(t, m.Close(s.Token))

	err = m.View(s.Token, func(*wizard.Wizard) {})
	require.ErrorIs(t, err, session.ErrNotFound)

	_, _, err = st.GetSession(s.Token)
	require.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestResumeUnknownToken(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Resume("bogus")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func wizardFromState(t *testing.T, state []byte) *wizard.Wizard {
	t.Helper()
	steps, err := wizard.LoadSteps()
	require.NoError(t, err)
	w := wizard.New(steps, staticSource{})
	require.NoError(t, w.RestoreState(state))
	return w
}
