package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
	"github.com/dmitrijs2005/sigmax/internal/store/kv"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, t notify.EventType, payload any) notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev := notify.Event{Type: t, Seq: uint64(len(p.events) + 1), Payload: payload}
	p.events = append(p.events, ev)
	return ev
}

func (p *recordingPublisher) types() []notify.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

type fixture struct {
	svc   *Service
	store *store.Store
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(kv.NewMemory(), logging.Discard())
	pub := &recordingPublisher{}
	svc := NewService(st, pub, logging.Discard())
	svc.passwordCost = bcrypt.MinCost
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return &fixture{svc: svc, store: st, pub: pub}
}

func (f *fixture) signup(t *testing.T, name, handle string) (*models.User, session.Session) {
	t.Helper()
	u, sess, err := f.svc.Signup(context.Background(), Profile{Name: name, PhoneNumber: handle, Password: "pw-" + handle})
	require.NoError(t, err)
	return u, sess
}

func (f *fixture) snapshot(t *testing.T) *store.Snapshot {
	t.Helper()
	snap, err := f.store.Read(context.Background())
	require.NoError(t, err)
	return snap
}
