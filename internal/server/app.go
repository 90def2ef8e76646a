// Package server wires the sigmax components together and runs them:
// the store and its backend, the change notifier, the domain service,
// the persona responder and the HTTP server, with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sigmax/internal/ai"
	"github.com/dmitrijs2005/sigmax/internal/chat"
	"github.com/dmitrijs2005/sigmax/internal/config"
	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/media"
	"github.com/dmitrijs2005/sigmax/internal/metrics"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/server/httpapi"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
	"github.com/dmitrijs2005/sigmax/internal/store/kv"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	metrics   *metrics.Metrics
	store     *store.Store
	notifier  *notify.Notifier
	chat      *chat.Service
	assistant *ai.Client
	archive   *media.Archive
	sessions  *session.Manager
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	backend, err := kv.Open(ctx, c.StoreKind, c.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}
	st := store.New(backend, logger)

	m := metrics.New()
	n := notify.New(logger, m, notify.DefaultQueueSize)
	svc := chat.NewService(st, n, logger)

	archive, err := media.NewArchive(ctx, c, logger, m)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("scan archive init error: %w", err)
	}

	assistant := ai.NewClient(c, logger, ai.WithMetrics(m))
	if !assistant.Enabled() {
		logger.Warn(ctx, "API_KEY not set, AI features degrade to their fallbacks")
	}

	return &App{
		config:    c,
		logger:    logger,
		metrics:   m,
		store:     st,
		notifier:  n,
		chat:      svc,
		assistant: assistant,
		archive:   archive,
		sessions:  session.NewManager(st, c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(httpapi.Options{
		Address:        app.config.HTTPAddr,
		CORSOrigins:    app.config.CORSOrigins,
		RateLimitRPS:   app.config.RateLimitRPS,
		RateLimitBurst: app.config.RateLimitBurst,
	}, app.chat, app.sessions, app.assistant, app.archive, app.notifier, app.metrics, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if app.config.SeedOnStart {
		if err := app.chat.Seed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	responder := chat.NewResponder(app.chat, app.assistant, app.config.PersonaReplyDelay, app.logger)
	responder.Start(ctx, app.notifier)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	responder.Stop()

	app.logger.Info(ctx, "Stopped")
	return app.store.Close()
}
