// Package notify is the in-process change notifier. Domain operations
// publish typed events after persisting; subscribers use them as hints to
// refresh, never as the source of truth.
package notify

import "github.com/dmitrijs2005/sigmax/internal/models"

// EventType names the kind of change.
type EventType string

const (
	EventNewMessage    EventType = "NEW_MESSAGE"
	EventMessageUpdate EventType = "MESSAGE_UPDATE"
	EventChatUpdate    EventType = "CHAT_UPDATE"
)

// Stream is the namespace an event's sequence number belongs to.
type Stream string

const (
	StreamMessages Stream = "messages"
	StreamChats    Stream = "chats"
)

// Stream returns the sequence stream t is numbered in.
func (t EventType) Stream() Stream {
	if t == EventChatUpdate {
		return StreamChats
	}
	return StreamMessages
}

// Event is the envelope delivered to subscribers and websocket clients.
// Seq increases by one for every event of the same stream.
type Event struct {
	Type    EventType `json:"type"`
	Seq     uint64    `json:"seq"`
	Payload any       `json:"payload"`
}

// Message returns the payload of a message event.
func (e Event) Message() (*models.Message, bool) {
	m, ok := e.Payload.(*models.Message)
	return m, ok
}

// Chat returns the payload of a chat event.
func (e Event) Chat() (*models.Chat, bool) {
	c, ok := e.Payload.(*models.Chat)
	return c, ok
}
