package store

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sigmax/internal/models"
)

// Namespace is a top-level key of the backing store.
type Namespace string

const (
	NamespaceUsers    Namespace = "sigmax_users"
	NamespaceChats    Namespace = "sigmax_chats"
	NamespaceMessages Namespace = "sigmax_messages"
	NamespaceSession  Namespace = "sigmax_session"
)

// Snapshot is the full decoded state of the three entity namespaces.
type Snapshot struct {
	Users    map[string]*models.User
	Chats    map[string]*models.Chat
	Messages map[string][]*models.Message
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Users:    map[string]*models.User{},
		Chats:    map[string]*models.Chat{},
		Messages: map[string][]*models.Message{},
	}
}

// encode serializes the namespace ns of s.
func (s *Snapshot) encode(ns Namespace) ([]byte, error) {
	var v any
	switch ns {
	case NamespaceUsers:
		v = s.Users
	case NamespaceChats:
		v = s.Chats
	case NamespaceMessages:
		v = s.Messages
	default:
		return nil, fmt.Errorf("namespace %q is not part of a snapshot", ns)
	}
	return json.Marshal(v)
}

// decode fills the namespace ns of s from data. A JSON null leaves the
// namespace empty.
func (s *Snapshot) decode(ns Namespace, data []byte) error {
	var err error
	switch ns {
	case NamespaceUsers:
		err = json.Unmarshal(data, &s.Users)
		if s.Users == nil {
			s.Users = map[string]*models.User{}
		}
	case NamespaceChats:
		err = json.Unmarshal(data, &s.Chats)
		if s.Chats == nil {
			s.Chats = map[string]*models.Chat{}
		}
	case NamespaceMessages:
		err = json.Unmarshal(data, &s.Messages)
		if s.Messages == nil {
			s.Messages = map[string][]*models.Message{}
		}
	default:
		return fmt.Errorf("namespace %q is not part of a snapshot", ns)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", ns, err)
	}
	return nil
}

// UserByHandle returns the user with the given phone-shaped handle.
func (s *Snapshot) UserByHandle(handle string) (*models.User, bool) {
	for _, u := range s.Users {
		if u.PhoneNumber == handle {
			return u, true
		}
	}
	return nil, false
}

// FindMessage returns the message with id in chat chatID.
func (s *Snapshot) FindMessage(chatID, id string) (*models.Message, bool) {
	for _, m := range s.Messages[chatID] {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}
