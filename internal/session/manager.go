package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/config"
)

// Persister stores the scalar session namespace.
type Persister interface {
	ReadSession(ctx context.Context) (string, error)
	WriteSession(ctx context.Context, userID string) error
	ClearSession(ctx context.Context) error
}

// Manager owns session lifecycles: absent, set on login or signup,
// cleared on logout.
type Manager struct {
	persister Persister
	secret    []byte
	validity  time.Duration
}

func NewManager(p Persister, cfg *config.Config) *Manager {
	return &Manager{
		persister: p,
		secret:    []byte(cfg.SecretKey),
		validity:  cfg.AccessTokenValidityDuration,
	}
}

// Issue returns a signed access token for s.
func (m *Manager) Issue(s Session) (string, error) {
	return GenerateToken(s.UserID, m.secret, m.validity)
}

// Validity is the lifetime of tokens produced by Issue.
func (m *Manager) Validity() time.Duration {
	return m.validity
}

// Parse turns an access token back into a Session.
func (m *Manager) Parse(token string) (Session, error) {
	id, err := GetUserIDFromToken(token, m.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: id}, nil
}

// Current returns the persisted session; inactive when nobody is logged in.
func (m *Manager) Current(ctx context.Context) (Session, error) {
	id, err := m.persister.ReadSession(ctx)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: id}, nil
}

// Save persists s as the active session.
func (m *Manager) Save(ctx context.Context, s Session) error {
	return m.persister.WriteSession(ctx, s.UserID)
}

// Clear logs out.
func (m *Manager) Clear(ctx context.Context) error {
	return m.persister.ClearSession(ctx)
}
