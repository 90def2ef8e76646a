// Package cli is the sigmax operator console. It works on the local
// store directly, in a single context, and keeps the logged-in user in
// the persisted session namespace between runs.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/sigmax/internal/chat"
	"github.com/dmitrijs2005/sigmax/internal/config"
	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
	"github.com/dmitrijs2005/sigmax/internal/store/kv"
)

type App struct {
	store    *store.Store
	chat     *chat.Service
	sessions *session.Manager
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the configured store. Change events have no listeners
// in the console, so the service runs without a publisher.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	backend, err := kv.Open(ctx, c.StoreKind, c.StoreDSN)
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, "text", c.LogLevel)
	st := store.New(backend, logger)

	return newApp(st, chat.NewService(st, nil, logger), session.NewManager(st, c), bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(st *store.Store, svc *chat.Service, sm *session.Manager, r *bufio.Reader, w io.Writer) *App {
	return &App{store: st, chat: svc, sessions: sm, reader: r, out: w}
}

// Run reads commands until EOF or exit, then closes the store.
func (a *App) Run(ctx context.Context) error {
	a.runREPL(ctx)
	return a.store.Close()
}
