package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func privatePair(t *testing.T, f *fixture) (a, b *models.User, sa, sb session.Session, chatID string) {
	t.Helper()
	a, sa = f.signup(t, "A", "+SIG-1000")
	b, sb = f.signup(t, "B", "+SIG-2000")
	c, err := f.svc.CreatePrivateChat(context.Background(), sa, "+SIG-2000")
	require.NoError(t, err)
	f.pub.reset()
	return a, b, sa, sb, c.ID
}

func TestSendMessage_FillsDefaultsAndPublishes(t *testing.T) {
	f := newFixture(t)
	a, _, sa, _, chatID := privatePair(t, f)

	m, err := f.svc.SendMessage(context.Background(), sa, models.Message{ChatID: chatID, Text: "hello"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(m.ID, "msg_"))
	assert.Equal(t, a.ID, m.SenderID)
	assert.Equal(t, models.StatusSent, m.Status)
	assert.Equal(t, models.PriorityNormal, m.Priority)
	assert.Equal(t, models.NetworkSecureMesh, m.Metadata.NetworkType)
	assert.Equal(t, "2026-01-02T03:04:05Z", m.Timestamp)

	snap := f.snapshot(t)
	require.Len(t, snap.Messages[chatID], 1)
	assert.Equal(t, m.ID, snap.Chats[chatID].LastMessage.ID)
	assert.Equal(t, []notify.EventType{notify.EventNewMessage, notify.EventChatUpdate}, f.pub.types())
}

func TestSendMessage_KeepsCallerFields(t *testing.T) {
	f := newFixture(t)
	_, _, sa, _, chatID := privatePair(t, f)

	in := models.Message{
		ID:       "msg_custom",
		ChatID:   chatID,
		Text:     "urgent",
		Priority: models.PriorityCritical,
		Metadata: &models.MessageMetadata{NetworkType: models.NetworkQuantumUplink},
	}
	m, err := f.svc.SendMessage(context.Background(), sa, in)
	require.NoError(t, err)
	assert.Equal(t, "msg_custom", m.ID)
	assert.Equal(t, models.PriorityCritical, m.Priority)
	assert.Equal(t, models.NetworkQuantumUplink, m.Metadata.NetworkType)
}

func TestSendMessage_DuplicateIDRejected(t *testing.T) {
	f := newFixture(t)
	_, _, sa, sb, chatID := privatePair(t, f)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, sa, models.Message{ID: "msg_x", ChatID: chatID, Text: "one"})
	require.NoError(t, err)
	f.pub.reset()

	for _, sess := range []session.Session{sa, sb} {
		_, err = f.svc.SendMessage(ctx, sess, models.Message{ID: "msg_x", ChatID: chatID, Text: "two"})
		require.ErrorIs(t, err, common.ErrDuplicateMessage)
	}

	snap := f.snapshot(t)
	require.Len(t, snap.Messages[chatID], 1, "log length unchanged")
	assert.Equal(t, "one", snap.Messages[chatID][0].Text)
	assert.Equal(t, "one", snap.Chats[chatID].LastMessage.Text)
	assert.Empty(t, f.pub.types())

	_, err = f.svc.SendMessage(ctx, sa, models.Message{ID: "msg_y", ChatID: chatID, Text: "three"})
	require.NoError(t, err)
	assert.Len(t, f.snapshot(t).Messages[chatID], 2)
}

func TestSendMessage_NonParticipantLeavesLogUnchanged(t *testing.T) {
	f := newFixture(t)
	_, _, sa, _, chatID := privatePair(t, f)
	_, sc := f.signup(t, "C", "+SIG-3000")
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, sa, models.Message{ChatID: chatID, Text: "one"})
	require.NoError(t, err)
	before := f.snapshot(t).Messages[chatID]
	f.pub.reset()

	_, err = f.svc.SendMessage(ctx, sc, models.Message{ChatID: chatID, Text: "intrude"})
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	assert.Equal(t, before, f.snapshot(t).Messages[chatID])
	assert.Empty(t, f.pub.types())
}

func TestSendMessage_Errors(t *testing.T) {
	f := newFixture(t)
	_, b, sa, _, chatID := privatePair(t, f)

	tests := []struct {
		name string
		sess session.Session
		msg  models.Message
		want error
	}{
		{"unknown chat", sa, models.Message{ChatID: "chat_missing", Text: "x"}, common.ErrChannelNotFound},
		{"empty text", sa, models.Message{ChatID: chatID, Text: "  "}, common.ErrorIncorrectArgument},
		{"bad priority", sa, models.Message{ChatID: chatID, Text: "x", Priority: "MEH"}, common.ErrorIncorrectArgument},
		{"spoofed sender", sa, models.Message{ChatID: chatID, Text: "x", SenderID: b.ID}, common.ErrorUnauthorized},
		{"no session", session.Session{}, models.Message{ChatID: chatID, Text: "x"}, common.ErrorUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SendMessage(context.Background(), tt.sess, tt.msg)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.snapshot(t).Messages[chatID])
}

func TestSendMessage_BlockedInBothDirections(t *testing.T) {
	f := newFixture(t)
	_, b, sa, sb, chatID := privatePair(t, f)
	ctx := context.Background()

	_, err := f.svc.BlockUser(ctx, sa, b.ID)
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, sa, models.Message{ChatID: chatID, Text: "from blocker"})
	require.ErrorIs(t, err, common.ErrBlocked)

	_, err = f.svc.SendMessage(ctx, sb, models.Message{ChatID: chatID, Text: "from blocked"})
	require.ErrorIs(t, err, common.ErrBlocked)

	assert.Empty(t, f.snapshot(t).Messages[chatID])

	_, err = f.svc.UnblockUser(ctx, sa, b.ID)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, sb, models.Message{ChatID: chatID, Text: "again"})
	require.NoError(t, err)
}

func TestSendMessage_BlockDoesNotAffectGroups(t *testing.T) {
	f := newFixture(t)
	_, b, sa, sb, _ := privatePair(t, f)
	ctx := context.Background()

	g, err := f.svc.CreateGroup(ctx, sa, "Ops", []string{"+SIG-2000"}, models.ChatGroup)
	require.NoError(t, err)
	_, err = f.svc.BlockUser(ctx, sa, b.ID)
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, sb, models.Message{ChatID: g.ID, Text: "still here"})
	require.NoError(t, err)
	assert.True(t, f.snapshot(t).Chats[g.ID].HasParticipant(b.ID))
}

func TestAddReaction_DoubleToggleRestores(t *testing.T) {
	f := newFixture(t)
	_, b, sa, sb, chatID := privatePair(t, f)
	ctx := context.Background()

	m, err := f.svc.SendMessage(ctx, sa, models.Message{ChatID: chatID, Text: "react"})
	require.NoError(t, err)
	f.pub.reset()

	got, err := f.svc.AddReaction(ctx, sb, chatID, m.ID, "🔥")
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, got.Reactions["🔥"])
	assert.Equal(t, []string{b.ID}, f.snapshot(t).Chats[chatID].LastMessage.Reactions["🔥"])

	got, err = f.svc.AddReaction(ctx, sb, chatID, m.ID, "🔥")
	require.NoError(t, err)
	assert.NotContains(t, got.Reactions, "🔥")

	stored, ok := f.snapshot(t).FindMessage(chatID, m.ID)
	require.True(t, ok)
	assert.Empty(t, stored.Reactions)
	assert.Equal(t, []notify.EventType{notify.EventMessageUpdate, notify.EventMessageUpdate}, f.pub.types())
}

func TestAddReaction_UnknownMessageIsNoop(t *testing.T) {
	f := newFixture(t)
	_, _, sa, _, chatID := privatePair(t, f)
	before := f.snapshot(t)

	got, err := f.svc.AddReaction(context.Background(), sa, chatID, "msg_missing", "👍")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, before, f.snapshot(t))
	assert.Empty(t, f.pub.types())
}

func TestGetMessages(t *testing.T) {
	f := newFixture(t)
	_, _, sa, sb, chatID := privatePair(t, f)
	_, sc := f.signup(t, "C", "+SIG-3000")
	ctx := context.Background()

	empty, err := f.svc.GetMessages(ctx, sa, chatID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, text := range []string{"one", "two"} {
		_, err := f.svc.SendMessage(ctx, sa, models.Message{ChatID: chatID, Text: text})
		require.NoError(t, err)
	}

	msgs, err := f.svc.GetMessages(ctx, sb, chatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Text)
	assert.Equal(t, "two", msgs[1].Text)

	_, err = f.svc.GetMessages(ctx, sc, chatID)
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = f.svc.GetMessages(ctx, sa, "chat_missing")
	require.ErrorIs(t, err, common.ErrChannelNotFound)
}
