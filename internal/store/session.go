package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sigmax/internal/common"
)

// ReadSession returns the persisted session user id, or "" when nobody
// is logged in.
func (s *Store) ReadSession(ctx context.Context) (string, error) {
	data, err := s.backend.Get(ctx, string(NamespaceSession))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read session: %w", err)
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return "", fmt.Errorf("decode session: %w", err)
	}
	return id, nil
}

// WriteSession persists userID as the active session.
func (s *Store) WriteSession(ctx context.Context, userID string) error {
	return s.Write(ctx, NamespaceSession, userID)
}

// ClearSession removes the active session.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.backend.Delete(ctx, string(NamespaceSession)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
