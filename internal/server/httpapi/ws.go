package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

// Frame types sent besides change events. HELLO carries the current
// stream positions; RESYNC tells the client it missed events and should
// re-read its chats.
const (
	frameHello  notify.EventType = "HELLO"
	frameResync notify.EventType = "RESYNC"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer and the access token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	userID string
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	sess := current(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade", "error", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{}), userID: sess.UserID}
	if s.metrics != nil {
		s.metrics.WSConnections.Inc()
	}

	ctx := r.Context()
	positions := s.feed.Positions()
	cursor := notify.NewCursor(positions)
	c.enqueue(notify.Event{Type: frameHello, Payload: positions})

	deliver := func(ev notify.Event) {
		if cursor.Observe(ev) {
			c.enqueue(notify.Event{Type: frameResync, Seq: ev.Seq, Payload: s.feed.Positions()})
		}
		if s.chat.CanSee(ctx, c.userID, ev) {
			c.enqueue(ev)
		}
	}
	cancel := s.feed.Subscribe("ws-"+uuid.NewString(), deliver, deliver)

	go c.writePump()
	c.readPump()

	cancel()
	close(c.done)
	if s.metrics != nil {
		s.metrics.WSConnections.Dec()
	}
	s.logger.Debug(ctx, "websocket closed", "user", c.userID)
}

// enqueue never blocks; a client that cannot keep up loses frames and
// notices through the sequence numbers.
func (c *wsClient) enqueue(ev notify.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump drains client frames so control messages are processed. It
// returns when the connection fails or closes.
func (c *wsClient) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
