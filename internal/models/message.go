package models

import "slices"

// MessageStatus is the delivery state of a message.
type MessageStatus string

const (
	StatusSending   MessageStatus = "sending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Priority marks how urgently a message should be surfaced.
type Priority string

const (
	PriorityNormal   Priority = "NORMAL"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// NetworkType tags the simulated route a message took.
type NetworkType string

const (
	NetworkSecureMesh    NetworkType = "SECURE_MESH"
	NetworkQuantumUplink NetworkType = "QUANTUM_UPLINK"
	NetworkStandardNet   NetworkType = "STANDARD_NET"
)

// MessageMetadata carries routing and translation provenance.
type MessageMetadata struct {
	RoutingPath    string      `json:"routingPath,omitempty"`
	NetworkType    NetworkType `json:"networkType,omitempty"`
	TranslatedFrom string      `json:"translatedFrom,omitempty"`
	OriginalText   string      `json:"originalText,omitempty"`
}

// Message is one entry in a chat's append-only log.
type Message struct {
	ID        string              `json:"id"`
	ChatID    string              `json:"chatId"`
	SenderID  string              `json:"senderId"`
	Text      string              `json:"text"`
	Timestamp string              `json:"timestamp"`
	Status    MessageStatus       `json:"status"`
	Priority  Priority            `json:"priority"`
	Metadata  *MessageMetadata    `json:"metadata,omitempty"`
	Reactions map[string][]string `json:"reactions,omitempty"`
}

// ToggleReaction adds userID to the emoji's reactors, or removes it when
// already present. Emoji entries left without reactors are deleted.
// It reports whether the user now reacts with emoji.
func (m *Message) ToggleReaction(emoji, userID string) bool {
	if m.Reactions == nil {
		m.Reactions = map[string][]string{}
	}
	users := m.Reactions[emoji]
	if i := slices.Index(users, userID); i >= 0 {
		users = slices.Delete(users, i, i+1)
		if len(users) == 0 {
			delete(m.Reactions, emoji)
		} else {
			m.Reactions[emoji] = users
		}
		return false
	}
	m.Reactions[emoji] = append(users, userID)
	return true
}
