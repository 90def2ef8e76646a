package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
)

// SendMessage appends msg to its chat on behalf of the acting user.
// Missing id, timestamp, status, priority and network type are filled
// in. In a private chat a block in either direction stops delivery.
func (s *Service) SendMessage(ctx context.Context, sess session.Session, msg models.Message) (*models.Message, error) {
	if strings.TrimSpace(msg.Text) == "" {
		return nil, fmt.Errorf("%w: message text is empty", common.ErrorIncorrectArgument)
	}
	if msg.Priority != "" && !msg.Priority.Valid() {
		return nil, fmt.Errorf("%w: priority %q", common.ErrorIncorrectArgument, msg.Priority)
	}
	if msg.SenderID == "" {
		msg.SenderID = sess.UserID
	}

	m := &msg
	if m.ID == "" {
		m.ID = newID("msg_")
	}
	if m.Timestamp == "" {
		m.Timestamp = s.timestamp()
	}
	if m.Status == "" {
		m.Status = models.StatusSent
	}
	if m.Priority == "" {
		m.Priority = models.PriorityNormal
	}
	if m.Metadata == nil {
		m.Metadata = &models.MessageMetadata{}
	}
	if m.Metadata.NetworkType == "" {
		m.Metadata.NetworkType = models.NetworkSecureMesh
	}

	var updated *models.Chat
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		me, err := actor(snap, sess)
		if err != nil {
			return nil, err
		}
		if m.SenderID != me.ID {
			return nil, fmt.Errorf("%w: cannot send as another user", common.ErrorUnauthorized)
		}

		c, ok := snap.Chats[m.ChatID]
		if !ok {
			return nil, fmt.Errorf("%w: channel %s not found", common.ErrChannelNotFound, m.ChatID)
		}
		if !c.HasParticipant(me.ID) {
			return nil, fmt.Errorf("%w: access denied, not a participant of this frequency", common.ErrorUnauthorized)
		}
		if c.Type == models.ChatPrivate {
			if peer, ok := snap.Users[c.Peer(me.ID)]; ok {
				if peer.HasBlocked(me.ID) {
					return nil, fmt.Errorf("%w: message blocked, recipient has blocked you", common.ErrBlocked)
				}
				if me.HasBlocked(peer.ID) {
					return nil, fmt.Errorf("%w: message blocked, unblock the recipient first", common.ErrBlocked)
				}
			}
		}

		if _, dup := snap.FindMessage(c.ID, m.ID); dup {
			return nil, fmt.Errorf("%w: message %s already exists", common.ErrDuplicateMessage, m.ID)
		}

		snap.Messages[c.ID] = append(snap.Messages[c.ID], m)
		c.LastMessage = m
		updated = c
		return []store.Namespace{store.NamespaceMessages, store.NamespaceChats}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.EventNewMessage, m)
	s.publish(ctx, notify.EventChatUpdate, updated)
	return m, nil
}

// AddReaction toggles the acting user's emoji on a message. An unknown
// message is ignored and yields a nil message.
func (s *Service) AddReaction(ctx context.Context, sess session.Session, chatID, messageID, emoji string) (*models.Message, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, fmt.Errorf("%w: emoji is required", common.ErrorIncorrectArgument)
	}

	var result *models.Message
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		me, err := actor(snap, sess)
		if err != nil {
			return nil, err
		}
		c, ok := snap.Chats[chatID]
		if !ok {
			return nil, fmt.Errorf("%w: channel %s not found", common.ErrChannelNotFound, chatID)
		}
		if !c.HasParticipant(me.ID) {
			return nil, fmt.Errorf("%w: not a participant", common.ErrorUnauthorized)
		}

		m, ok := snap.FindMessage(chatID, messageID)
		if !ok {
			return nil, nil
		}
		m.ToggleReaction(emoji, me.ID)
		result = m
		if c.LastMessage != nil && c.LastMessage.ID == m.ID {
			c.LastMessage = m
			return []store.Namespace{store.NamespaceMessages, store.NamespaceChats}, nil
		}
		return []store.Namespace{store.NamespaceMessages}, nil
	})
	if err != nil {
		return nil, err
	}

	if result != nil {
		s.publish(ctx, notify.EventMessageUpdate, result)
	}
	return result, nil
}

// GetMessages returns the log of a chat the acting user participates in,
// oldest first.
func (s *Service) GetMessages(ctx context.Context, sess session.Session, chatID string) ([]*models.Message, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	me, err := actor(snap, sess)
	if err != nil {
		return nil, err
	}
	c, ok := snap.Chats[chatID]
	if !ok {
		return nil, fmt.Errorf("%w: channel %s not found", common.ErrChannelNotFound, chatID)
	}
	if !c.HasParticipant(me.ID) {
		return nil, fmt.Errorf("%w: not a participant", common.ErrorUnauthorized)
	}

	msgs := snap.Messages[chatID]
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return msgs, nil
}
