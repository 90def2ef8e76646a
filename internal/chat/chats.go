package chat

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
)

// CreatePrivateChat opens the private chat between the acting user and
// the owner of otherHandle. An existing chat for the pair is returned
// as is.
func (s *Service) CreatePrivateChat(ctx context.Context, sess session.Session, otherHandle string) (*models.Chat, error) {
	var (
		result  *models.Chat
		created bool
	)
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		me, err := actor(snap, sess)
		if err != nil {
			return nil, err
		}
		other, ok := snap.UserByHandle(strings.TrimSpace(otherHandle))
		if !ok {
			return nil, fmt.Errorf("%w: user %s not found on Sigmax Network", common.ErrorNotFound, otherHandle)
		}
		if other.ID == me.ID {
			return nil, fmt.Errorf("%w: cannot open neural link with self", common.ErrSelfLink)
		}
		if me.HasBlocked(other.ID) {
			return nil, fmt.Errorf("%w: you have blocked this neural signature", common.ErrBlocked)
		}
		if other.HasBlocked(me.ID) {
			return nil, fmt.Errorf("%w: remote node has blocked your uplink", common.ErrBlocked)
		}

		for _, c := range snap.Chats {
			if c.IsPair(me.ID, other.ID) {
				result = c
				return nil, nil
			}
		}

		result = &models.Chat{
			ID:           newID("chat_"),
			Type:         models.ChatPrivate,
			Participants: []string{me.ID, other.ID},
		}
		snap.Chats[result.ID] = result
		created = true
		return []store.Namespace{store.NamespaceChats}, nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.publish(ctx, notify.EventChatUpdate, result)
	}
	return result, nil
}

// CreateGroup creates a group or channel owned by the acting user.
// Handles that resolve to nobody are skipped.
func (s *Service) CreateGroup(ctx context.Context, sess session.Session, name string, memberHandles []string, kind models.ChatType) (*models.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorIncorrectArgument)
	}
	if kind == "" {
		kind = models.ChatGroup
	}
	if kind != models.ChatGroup && kind != models.ChatChannel {
		return nil, fmt.Errorf("%w: chat type %q", common.ErrorIncorrectArgument, kind)
	}

	var result *models.Chat
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		me, err := actor(snap, sess)
		if err != nil {
			return nil, err
		}

		participants := []string{me.ID}
		for _, h := range memberHandles {
			u, ok := snap.UserByHandle(strings.TrimSpace(h))
			if !ok || slices.Contains(participants, u.ID) {
				continue
			}
			participants = append(participants, u.ID)
		}

		result = &models.Chat{
			ID:           newID(string(kind) + "_"),
			Type:         kind,
			Name:         name,
			Participants: participants,
			Admins:       []string{me.ID},
			Avatar:       "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random",
		}
		snap.Chats[result.ID] = result
		return []store.Namespace{store.NamespaceChats}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.EventChatUpdate, result)
	return result, nil
}

// adminChat loads a chat the acting user administers.
func adminChat(snap *store.Snapshot, sess session.Session, chatID string) (*models.User, *models.Chat, error) {
	me, err := actor(snap, sess)
	if err != nil {
		return nil, nil, err
	}
	c, ok := snap.Chats[chatID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: chat %s", common.ErrorNotFound, chatID)
	}
	if !c.IsAdmin(me.ID) {
		return nil, nil, fmt.Errorf("%w: only admins can manage members", common.ErrorUnauthorized)
	}
	return me, c, nil
}

// AddMemberToChat adds the owner of handle to a chat the acting user
// administers.
func (s *Service) AddMemberToChat(ctx context.Context, sess session.Session, chatID, handle string) (*models.Chat, error) {
	var result *models.Chat
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		_, c, err := adminChat(snap, sess, chatID)
		if err != nil {
			return nil, err
		}
		u, ok := snap.UserByHandle(strings.TrimSpace(handle))
		if !ok {
			return nil, fmt.Errorf("%w: user %s not found on network", common.ErrorNotFound, handle)
		}
		if c.HasParticipant(u.ID) {
			return nil, fmt.Errorf("%w: user is already in this channel", common.ErrAlreadyMember)
		}
		c.Participants = append(c.Participants, u.ID)
		result = c
		return []store.Namespace{store.NamespaceChats}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.EventChatUpdate, result)
	return result, nil
}

// RemoveMemberFromChat removes targetUserID, and their admin rights, from
// a chat the acting user administers. Admins cannot remove themselves.
func (s *Service) RemoveMemberFromChat(ctx context.Context, sess session.Session, chatID, targetUserID string) (*models.Chat, error) {
	var result *models.Chat
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		me, c, err := adminChat(snap, sess, chatID)
		if err != nil {
			return nil, err
		}
		if targetUserID == me.ID {
			return nil, fmt.Errorf("%w: leave the chat instead", common.ErrInvalidSelfRemoval)
		}
		if !c.HasParticipant(targetUserID) {
			return nil, fmt.Errorf("%w: user %s is not a member", common.ErrorNotFound, targetUserID)
		}
		c.Participants = slices.DeleteFunc(c.Participants, func(id string) bool { return id == targetUserID })
		c.Admins = slices.DeleteFunc(c.Admins, func(id string) bool { return id == targetUserID })
		result = c
		return []store.Namespace{store.NamespaceChats}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.EventChatUpdate, result)
	return result, nil
}

// ToggleChatReadStatus marks the chat unread (or read) for the acting
// user.
func (s *Service) ToggleChatReadStatus(ctx context.Context, sess session.Session, chatID string, markUnread bool) (*models.Chat, error) {
	var (
		result  *models.Chat
		changed bool
	)
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		me, err := actor(snap, sess)
		if err != nil {
			return nil, err
		}
		c, ok := snap.Chats[chatID]
		if !ok {
			return nil, fmt.Errorf("%w: chat %s", common.ErrorNotFound, chatID)
		}
		if !c.HasParticipant(me.ID) {
			return nil, fmt.Errorf("%w: not a participant", common.ErrorUnauthorized)
		}
		result = c

		unread := slices.Contains(c.UnreadBy, me.ID)
		switch {
		case markUnread && !unread:
			c.UnreadBy = append(c.UnreadBy, me.ID)
		case !markUnread && unread:
			c.UnreadBy = slices.DeleteFunc(c.UnreadBy, func(id string) bool { return id == me.ID })
		default:
			return nil, nil
		}
		changed = true
		return []store.Namespace{store.NamespaceChats}, nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, notify.EventChatUpdate, result)
	}
	return result, nil
}

// GetUserChats lists the chats userID participates in, most recent
// activity first.
func (s *Service) GetUserChats(ctx context.Context, userID string) ([]*models.Chat, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Chat, 0)
	for _, c := range snap.Chats {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := lastActivity(out[i]), lastActivity(out[j])
		if ti != tj {
			return ti > tj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func lastActivity(c *models.Chat) string {
	if c.LastMessage == nil {
		return ""
	}
	return c.LastMessage.Timestamp
}

// CanSee reports whether userID may observe ev: chat events for chats
// they are in, message events for messages of those chats.
func (s *Service) CanSee(ctx context.Context, userID string, ev notify.Event) bool {
	if c, ok := ev.Chat(); ok {
		return c.HasParticipant(userID)
	}
	m, ok := ev.Message()
	if !ok {
		return false
	}
	snap, err := s.store.Read(ctx)
	if err != nil {
		s.logger.Warn(ctx, "visibility check failed", "error", err)
		return false
	}
	c, ok := snap.Chats[m.ChatID]
	return ok && c.HasParticipant(userID)
}
