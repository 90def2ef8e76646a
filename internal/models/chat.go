package models

import "slices"

// ChatType distinguishes conversations.
type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
	ChatChannel ChatType = "channel"
)

// Chat is a conversation container. A private chat has exactly two
// participants; Admins is always a subset of Participants.
type Chat struct {
	ID           string   `json:"id"`
	Type         ChatType `json:"type"`
	Name         string   `json:"name,omitempty"`
	Avatar       string   `json:"avatar,omitempty"`
	Description  string   `json:"description,omitempty"`
	Participants []string `json:"participants"`
	Admins       []string `json:"admins,omitempty"`
	LastMessage  *Message `json:"lastMessage,omitempty"`
	UnreadBy     []string `json:"unreadBy,omitempty"`
}

// HasParticipant reports whether userID is a member of the chat.
func (c *Chat) HasParticipant(userID string) bool {
	return slices.Contains(c.Participants, userID)
}

// IsAdmin reports whether userID may manage the chat's membership.
func (c *Chat) IsAdmin(userID string) bool {
	return slices.Contains(c.Admins, userID)
}

// Peer returns the other participant of a private chat, or "" when there
// is none.
func (c *Chat) Peer(userID string) string {
	for _, id := range c.Participants {
		if id != userID {
			return id
		}
	}
	return ""
}

// IsPair reports whether c is the private chat between a and b.
func (c *Chat) IsPair(a, b string) bool {
	return c.Type == ChatPrivate && c.HasParticipant(a) && c.HasParticipant(b)
}
