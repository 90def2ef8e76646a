// Package httpapi is the REST and websocket surface of sigmax.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/ai"
	"github.com/dmitrijs2005/sigmax/internal/chat"
	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/metrics"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Assistant is the AI surface used by the handlers.
type Assistant interface {
	SmartReplies(ctx context.Context, lastMessage, background string) []ai.Suggestion
	Analyze(ctx context.Context, messages []*models.Message) *ai.Analysis
	Translate(ctx context.Context, text string) string
	IdentifyFromImage(ctx context.Context, imageBase64 string) ai.Identity
}

// ScanArchive keeps identity scans and issues their report ids.
type ScanArchive interface {
	Store(ctx context.Context, userID, imageBase64 string) (string, error)
	PresignGet(ctx context.Context, userID, reportID string) (string, error)
}

// Feed is the notifier surface the websocket needs.
type Feed interface {
	Subscribe(id string, onMessage, onChatUpdate notify.Handler) (cancel func())
	Positions() map[notify.Stream]uint64
}

// Options tune the HTTP surface.
type Options struct {
	Address        string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	opts      Options
	chat      *chat.Service
	sessions  *session.Manager
	assistant Assistant
	archive   ScanArchive
	feed      Feed
	metrics   *metrics.Metrics
	logger    logging.Logger
	limiters  *limiterPool
	now       func() time.Time
}

func NewServer(opts Options, svc *chat.Service, sessions *session.Manager, assistant Assistant, archive ScanArchive, feed Feed, m *metrics.Metrics, l logging.Logger) *Server {
	return &Server{
		opts:      opts,
		chat:      svc,
		sessions:  sessions,
		assistant: assistant,
		archive:   archive,
		feed:      feed,
		metrics:   m,
		logger:    l.With("module", "http_server"),
		limiters:  newLimiterPool(opts.RateLimitRPS, opts.RateLimitBurst),
		now:       time.Now,
	}
}

// Handler builds the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.rateLimit)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/signup", s.signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireSession)
	authed.HandleFunc("/me", s.me).Methods(http.MethodGet)
	authed.HandleFunc("/me/country", s.updateCountry).Methods(http.MethodPatch)
	authed.HandleFunc("/me/verify", s.verify).Methods(http.MethodPost)
	authed.HandleFunc("/me/scans/{reportId}", s.scanLink).Methods(http.MethodGet)
	authed.HandleFunc("/users", s.users).Methods(http.MethodGet)
	authed.HandleFunc("/chats", s.listChats).Methods(http.MethodGet)
	authed.HandleFunc("/chats/private", s.createPrivateChat).Methods(http.MethodPost)
	authed.HandleFunc("/chats/group", s.createGroup).Methods(http.MethodPost)
	authed.HandleFunc("/chats/{id}/members", s.addMember).Methods(http.MethodPost)
	authed.HandleFunc("/chats/{id}/members/{userId}", s.removeMember).Methods(http.MethodDelete)
	authed.HandleFunc("/chats/{id}/read", s.toggleRead).Methods(http.MethodPost)
	authed.HandleFunc("/chats/{id}/messages", s.listMessages).Methods(http.MethodGet)
	authed.HandleFunc("/chats/{id}/messages", s.sendMessage).Methods(http.MethodPost)
	authed.HandleFunc("/chats/{id}/messages/{msgId}/reactions", s.react).Methods(http.MethodPost)
	authed.HandleFunc("/chats/{id}/analysis", s.analyze).Methods(http.MethodPost)
	authed.HandleFunc("/chats/{id}/suggestions", s.suggest).Methods(http.MethodPost)
	authed.HandleFunc("/translate", s.translate).Methods(http.MethodPost)
	authed.HandleFunc("/blocks", s.block).Methods(http.MethodPost)
	authed.HandleFunc("/blocks/{userId}", s.unblock).Methods(http.MethodDelete)
	authed.HandleFunc("/ws", s.serveWS).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	go s.limiters.run(ctx, limiterCleanupPeriod)

	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
