// Package session carries the acting user through the program. A Session
// is an explicit value passed to domain operations; the Manager turns it
// into access tokens for HTTP callers and into the persisted session
// namespace for the single-context CLI.
package session

import "context"

// Session identifies the acting user. The zero value is "logged out".
type Session struct {
	UserID string
}

// Active reports whether somebody is logged in.
func (s Session) Active() bool {
	return s.UserID != ""
}

type ctxKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.Active()
}
