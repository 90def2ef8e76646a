package chat

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
)

// Subscriber is the notifier surface the responder listens on.
type Subscriber interface {
	Subscribe(id string, onMessage, onChatUpdate notify.Handler) (cancel func())
}

// PersonaWriter generates a persona's next line.
type PersonaWriter interface {
	PersonaReply(ctx context.Context, persona *models.User, history []*models.Message, userText string) string
}

const responderID = "persona-responder"

// Responder answers humans who write to a persona in a private chat.
// Each reply runs on its own goroutine after Delay; replies still
// waiting when the context is cancelled are dropped.
type Responder struct {
	svc    *Service
	writer PersonaWriter
	delay  time.Duration
	logger logging.Logger

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
	cancel  func()
}

func NewResponder(svc *Service, writer PersonaWriter, delay time.Duration, logger logging.Logger) *Responder {
	return &Responder{
		svc:    svc,
		writer: writer,
		delay:  delay,
		logger: logger.With("module", "responder"),
	}
}

// Start subscribes the responder. Stop must be called to release it.
func (r *Responder) Start(ctx context.Context, sub Subscriber) {
	r.cancel = sub.Subscribe(responderID, func(ev notify.Event) {
		if ev.Type != notify.EventNewMessage {
			return
		}
		m, ok := ev.Message()
		if !ok {
			return
		}
		if !r.track() {
			return
		}
		go func() {
			defer r.wg.Done()
			r.handle(ctx, m)
		}()
	}, nil)
}

// track registers a reply in flight. It reports false once Stop has begun.
func (r *Responder) track() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.wg.Add(1)
	return true
}

// Stop unsubscribes and waits for replies in flight.
func (r *Responder) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Responder) handle(ctx context.Context, m *models.Message) {
	snap, err := r.svc.store.Read(ctx)
	if err != nil {
		r.logger.Error(ctx, "read snapshot", "error", err)
		return
	}
	c, ok := snap.Chats[m.ChatID]
	if !ok || c.Type != models.ChatPrivate {
		return
	}
	sender, ok := snap.Users[m.SenderID]
	if !ok || sender.IsPersona() {
		return
	}
	persona, ok := snap.Users[c.Peer(sender.ID)]
	if !ok || !persona.IsPersona() {
		return
	}

	var history []*models.Message
	for _, prev := range snap.Messages[c.ID] {
		if prev.ID == m.ID {
			break
		}
		history = append(history, prev)
	}

	t := time.NewTimer(r.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}

	text := r.writer.PersonaReply(ctx, persona, history, m.Text)

	priority := models.PriorityNormal
	if m.Priority == models.PriorityCritical {
		priority = models.PriorityCritical
	}
	reply := models.Message{
		ID:       newID("msg_") + "_bot",
		ChatID:   c.ID,
		SenderID: persona.ID,
		Text:     text,
		Status:   models.StatusDelivered,
		Priority: priority,
	}
	if _, err := r.svc.SendMessage(ctx, session.Session{UserID: persona.ID}, reply); err != nil {
		r.logger.Warn(ctx, "persona reply not delivered", "chat", c.ID, "persona", persona.ID, "error", err)
		return
	}
	r.logger.Debug(ctx, "persona replied", "chat", c.ID, "persona", persona.ID)
}
