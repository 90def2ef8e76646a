package notify

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/metrics"
)

// DefaultQueueSize is the per-subscriber buffer used when none is given.
const DefaultQueueSize = 64

// Handler receives one event. Handlers run on the subscriber's own
// goroutine, one event at a time.
type Handler func(Event)

type subscriber struct {
	onMessage    Handler
	onChatUpdate Handler
	queue        chan Event
	done         chan struct{}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.queue:
			s.dispatch(ev)
		}
	}
}

func (s *subscriber) dispatch(ev Event) {
	switch ev.Type {
	case EventNewMessage, EventMessageUpdate:
		if s.onMessage != nil {
			s.onMessage(ev)
		}
	case EventChatUpdate:
		if s.onChatUpdate != nil {
			s.onChatUpdate(ev)
		}
	}
}

// Notifier fans events out to subscribers. Delivery is best effort: a
// subscriber whose queue is full misses the event and can notice the gap
// through the sequence numbers. Nothing is replayed.
type Notifier struct {
	mu        sync.Mutex
	subs      map[string]*subscriber
	seq       map[Stream]uint64
	queueSize int
	logger    logging.Logger
	metrics   *metrics.Metrics
}

// New returns a Notifier. m may be nil.
func New(logger logging.Logger, m *metrics.Metrics, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Notifier{
		subs:      make(map[string]*subscriber),
		seq:       make(map[Stream]uint64),
		queueSize: queueSize,
		logger:    logger.With("module", "notify"),
		metrics:   m,
	}
}

// Publish stamps the next sequence number of the event's stream and
// queues the event for every subscriber.
func (n *Notifier) Publish(ctx context.Context, t EventType, payload any) Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	stream := t.Stream()
	n.seq[stream]++
	ev := Event{Type: t, Seq: n.seq[stream], Payload: payload}

	if n.metrics != nil {
		n.metrics.EventsPublished.WithLabelValues(string(t)).Inc()
	}

	for id, s := range n.subs {
		select {
		case s.queue <- ev:
		default:
			n.logger.Warn(ctx, "subscriber queue full, event dropped", "subscriber", id, "type", t, "seq", ev.Seq)
			if n.metrics != nil {
				n.metrics.EventsDropped.WithLabelValues(string(t)).Inc()
			}
		}
	}
	return ev
}

// Subscribe installs the handler pair for id, replacing any handlers
// previously installed under the same id. Message events (new and
// updated) go to onMessage, chat events to onChatUpdate. The returned
// function removes the subscription; calling it after the id was
// re-subscribed leaves the newer handlers in place.
func (n *Notifier) Subscribe(id string, onMessage, onChatUpdate Handler) (cancel func()) {
	s := &subscriber{
		onMessage:    onMessage,
		onChatUpdate: onChatUpdate,
		queue:        make(chan Event, n.queueSize),
		done:         make(chan struct{}),
	}

	n.mu.Lock()
	if old, ok := n.subs[id]; ok {
		close(old.done)
	}
	n.subs[id] = s
	n.mu.Unlock()

	go s.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if cur, ok := n.subs[id]; ok && cur == s {
				delete(n.subs, id)
				close(s.done)
			}
		})
	}
}

// Positions returns the last sequence number issued per stream.
func (n *Notifier) Positions() map[Stream]uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[Stream]uint64, len(n.seq))
	for k, v := range n.seq {
		out[k] = v
	}
	return out
}

// Subscribers returns the number of active subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
