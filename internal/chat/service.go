// Package chat implements the sigmax domain operations: accounts,
// conversations, messages, reactions and blocking. Every mutation reads
// the full snapshot, checks its preconditions, rewrites the namespaces it
// touched and only then publishes change events. A failed precondition
// leaves the store untouched.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence the service needs.
type Store interface {
	Read(ctx context.Context) (*store.Snapshot, error)
	Update(ctx context.Context, fn func(*store.Snapshot) ([]store.Namespace, error)) error
}

// Publisher receives change events after a successful write.
type Publisher interface {
	Publish(ctx context.Context, t notify.EventType, payload any) notify.Event
}

type Service struct {
	store        Store
	publisher    Publisher
	logger       logging.Logger
	now          func() time.Time
	passwordCost int
}

func NewService(st Store, pub Publisher, logger logging.Logger) *Service {
	return &Service{
		store:        st,
		publisher:    pub,
		logger:       logger.With("module", "chat"),
		now:          time.Now,
		passwordCost: bcrypt.DefaultCost,
	}
}

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// actor returns the acting user of sess.
func actor(snap *store.Snapshot, sess session.Session) (*models.User, error) {
	if !sess.Active() {
		return nil, fmt.Errorf("%w: no active session", common.ErrorUnauthorized)
	}
	u, ok := snap.Users[sess.UserID]
	if !ok {
		return nil, fmt.Errorf("%w: session user %s does not exist", common.ErrorUnauthorized, sess.UserID)
	}
	return u, nil
}

func (s *Service) publish(ctx context.Context, t notify.EventType, payload any) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, t, payload)
	}
}
