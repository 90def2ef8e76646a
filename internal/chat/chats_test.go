package chat

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePrivateChat_Idempotent(t *testing.T) {
	f := newFixture(t)
	a, sa := f.signup(t, "A", "+SIG-1000")
	b, sb := f.signup(t, "B", "+SIG-2000")
	ctx := context.Background()
	f.pub.reset()

	c1, err := f.svc.CreatePrivateChat(ctx, sa, "+SIG-2000")
	require.NoError(t, err)
	c2, err := f.svc.CreatePrivateChat(ctx, sa, "+SIG-2000")
	require.NoError(t, err)
	c3, err := f.svc.CreatePrivateChat(ctx, sb, "+SIG-1000")
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
	assert.Equal(t, c1.ID, c3.ID)
	assert.Equal(t, models.ChatPrivate, c1.Type)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, c1.Participants)
	assert.Len(t, f.snapshot(t).Chats, 1)
	assert.Equal(t, []notify.EventType{notify.EventChatUpdate}, f.pub.types())
}

func TestCreatePrivateChat_Errors(t *testing.T) {
	f := newFixture(t)
	a, sa := f.signup(t, "A", "+SIG-1000")
	b, sb := f.signup(t, "B", "+SIG-2000")
	_, sc := f.signup(t, "C", "+SIG-3000")
	ctx := context.Background()

	_, err := f.svc.BlockUser(ctx, sb, a.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		sess   session.Session
		handle string
		want   error
	}{
		{"unknown handle", sa, "+SIG-9999", common.ErrorNotFound},
		{"self", sa, "+SIG-1000", common.ErrSelfLink},
		{"blocked by other", sa, "+SIG-2000", common.ErrBlocked},
		{"blocker initiates", sb, "+SIG-1000", common.ErrBlocked},
		{"no session", session.Session{}, "+SIG-2000", common.ErrorUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreatePrivateChat(ctx, tt.sess, tt.handle)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.snapshot(t).Chats)

	c, err := f.svc.CreatePrivateChat(ctx, sc, "+SIG-2000")
	require.NoError(t, err)
	assert.True(t, c.HasParticipant(b.ID))
}

func TestCreateGroup_SkipsUnknownHandles(t *testing.T) {
	f := newFixture(t)
	u1, s1 := f.signup(t, "Creator", "+SIG-5000")
	u2, _ := f.signup(t, "Nova", "+SIG-1000")
	f.pub.reset()

	c, err := f.svc.CreateGroup(context.Background(), s1, "Test", []string{"+SIG-1000", "+SIG-9999", "+SIG-1000", "+SIG-5000"}, models.ChatGroup)
	require.NoError(t, err)

	assert.Equal(t, []string{u1.ID, u2.ID}, c.Participants)
	assert.Equal(t, []string{u1.ID}, c.Admins)
	assert.Equal(t, "Test", c.Name)
	assert.Contains(t, c.ID, "group_")
	assert.Contains(t, c.Avatar, "ui-avatars.com")
	assert.Equal(t, []notify.EventType{notify.EventChatUpdate}, f.pub.types())
}

func TestCreateGroup_Validation(t *testing.T) {
	f := newFixture(t)
	_, s1 := f.signup(t, "Creator", "+SIG-5000")
	ctx := context.Background()

	_, err := f.svc.CreateGroup(ctx, s1, "  ", nil, models.ChatGroup)
	require.ErrorIs(t, err, common.ErrorIncorrectArgument)

	_, err = f.svc.CreateGroup(ctx, s1, "X", nil, models.ChatPrivate)
	require.ErrorIs(t, err, common.ErrorIncorrectArgument)

	c, err := f.svc.CreateGroup(ctx, s1, "Broadcast", nil, models.ChatChannel)
	require.NoError(t, err)
	assert.Equal(t, models.ChatChannel, c.Type)
}

func TestMembership(t *testing.T) {
	f := newFixture(t)
	admin, sAdmin := f.signup(t, "Admin", "+SIG-1000")
	member, sMember := f.signup(t, "Member", "+SIG-2000")
	f.signup(t, "Late", "+SIG-3000")
	ctx := context.Background()

	c, err := f.svc.CreateGroup(ctx, sAdmin, "Ops", []string{"+SIG-2000"}, models.ChatGroup)
	require.NoError(t, err)

	t.Run("non admin cannot add", func(t *testing.T) {
		_, err := f.svc.AddMemberToChat(ctx, sMember, c.ID, "+SIG-3000")
		require.ErrorIs(t, err, common.ErrorUnauthorized)
	})
	t.Run("unknown chat", func(t *testing.T) {
		_, err := f.svc.AddMemberToChat(ctx, sAdmin, "nope", "+SIG-3000")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
	t.Run("unknown handle", func(t *testing.T) {
		_, err := f.svc.AddMemberToChat(ctx, sAdmin, c.ID, "+SIG-9999")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
	t.Run("already member", func(t *testing.T) {
		_, err := f.svc.AddMemberToChat(ctx, sAdmin, c.ID, "+SIG-2000")
		require.ErrorIs(t, err, common.ErrAlreadyMember)
	})
	t.Run("add", func(t *testing.T) {
		got, err := f.svc.AddMemberToChat(ctx, sAdmin, c.ID, "+SIG-3000")
		require.NoError(t, err)
		assert.Len(t, got.Participants, 3)
	})
	t.Run("self removal", func(t *testing.T) {
		_, err := f.svc.RemoveMemberFromChat(ctx, sAdmin, c.ID, admin.ID)
		require.ErrorIs(t, err, common.ErrInvalidSelfRemoval)
	})
	t.Run("non admin cannot remove", func(t *testing.T) {
		_, err := f.svc.RemoveMemberFromChat(ctx, sMember, c.ID, admin.ID)
		require.ErrorIs(t, err, common.ErrorUnauthorized)
	})
	t.Run("remove non member", func(t *testing.T) {
		_, err := f.svc.RemoveMemberFromChat(ctx, sAdmin, c.ID, "u_stranger")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
	t.Run("remove strips admin", func(t *testing.T) {
		require.NoError(t, f.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
			snap.Chats[c.ID].Admins = append(snap.Chats[c.ID].Admins, member.ID)
			return []store.Namespace{store.NamespaceChats}, nil
		}))

		got, err := f.svc.RemoveMemberFromChat(ctx, sAdmin, c.ID, member.ID)
		require.NoError(t, err)
		assert.False(t, got.HasParticipant(member.ID))
		assert.False(t, got.IsAdmin(member.ID))
		assert.Equal(t, []string{admin.ID}, f.snapshot(t).Chats[c.ID].Admins)
	})
}

func TestToggleChatReadStatus(t *testing.T) {
	f := newFixture(t)
	a, sa := f.signup(t, "A", "+SIG-1000")
	_, sc := f.signup(t, "C", "+SIG-3000")
	f.signup(t, "B", "+SIG-2000")
	ctx := context.Background()

	c, err := f.svc.CreatePrivateChat(ctx, sa, "+SIG-2000")
	require.NoError(t, err)

	got, err := f.svc.ToggleChatReadStatus(ctx, sa, c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, got.UnreadBy)

	got, err = f.svc.ToggleChatReadStatus(ctx, sa, c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, got.UnreadBy)

	got, err = f.svc.ToggleChatReadStatus(ctx, sa, c.ID, false)
	require.NoError(t, err)
	assert.Empty(t, got.UnreadBy)

	_, err = f.svc.ToggleChatReadStatus(ctx, sc, c.ID, true)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestGetUserChats_MostRecentFirst(t *testing.T) {
	f := newFixture(t)
	a, sa := f.signup(t, "A", "+SIG-1000")
	f.signup(t, "B", "+SIG-2000")
	f.signup(t, "C", "+SIG-3000")
	ctx := context.Background()

	ab, err := f.svc.CreatePrivateChat(ctx, sa, "+SIG-2000")
	require.NoError(t, err)
	ac, err := f.svc.CreatePrivateChat(ctx, sa, "+SIG-3000")
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, sa, models.Message{ChatID: ab.ID, Text: "first", Timestamp: "2026-01-01T00:00:00Z"})
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, sa, models.Message{ChatID: ac.ID, Text: "second", Timestamp: "2026-01-02T00:00:00Z"})
	require.NoError(t, err)

	chats, err := f.svc.GetUserChats(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, ac.ID, chats[0].ID)
	assert.Equal(t, ab.ID, chats[1].ID)

	none, err := f.svc.GetUserChats(ctx, "u_nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCanSee(t *testing.T) {
	f := newFixture(t)
	a, sa := f.signup(t, "A", "+SIG-1000")
	f.signup(t, "B", "+SIG-2000")
	c, _ := f.signup(t, "C", "+SIG-3000")
	ctx := context.Background()

	chat, err := f.svc.CreatePrivateChat(ctx, sa, "+SIG-2000")
	require.NoError(t, err)
	msg, err := f.svc.SendMessage(ctx, sa, models.Message{ChatID: chat.ID, Text: "hi"})
	require.NoError(t, err)

	chatEv := notify.Event{Type: notify.EventChatUpdate, Payload: chat}
	msgEv := notify.Event{Type: notify.EventNewMessage, Payload: msg}

	assert.True(t, f.svc.CanSee(ctx, a.ID, chatEv))
	assert.True(t, f.svc.CanSee(ctx, a.ID, msgEv))
	assert.False(t, f.svc.CanSee(ctx, c.ID, chatEv))
	assert.False(t, f.svc.CanSee(ctx, c.ID, msgEv))
	assert.False(t, f.svc.CanSee(ctx, a.ID, notify.Event{Type: notify.EventNewMessage, Payload: "junk"}))
}
