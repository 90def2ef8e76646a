package chat

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_CreatesUnverifiedCitizen(t *testing.T) {
	f := newFixture(t)

	u, sess := f.signup(t, "Nova", "+SIG-1000")

	assert.False(t, u.IsVerified)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, "Citizen", u.Role)
	assert.Equal(t, models.SecurityCitizen, u.SecurityLevel)
	assert.Equal(t, models.CountryPowerlingx, u.Country)
	assert.Empty(t, u.Password)
	assert.Empty(t, u.SystemPrompt)
	assert.Contains(t, u.Avatar, "dicebear")

	stored := f.snapshot(t).Users[u.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw-+SIG-1000", stored.Password)
	assert.NotNil(t, stored.BlockedUserIDs)
}

func TestSignup_DuplicateHandleLeavesStoreAlone(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Nova", "+SIG-1000")
	before := f.snapshot(t)

	_, _, err := f.svc.Signup(context.Background(), Profile{Name: "Other", PhoneNumber: "+SIG-1000", Password: "x"})
	require.ErrorIs(t, err, common.ErrDuplicateHandle)

	assert.Equal(t, before, f.snapshot(t))
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
	}{
		{"no name", Profile{PhoneNumber: "+SIG-1", Password: "x"}},
		{"no handle", Profile{Name: "N", Password: "x"}},
		{"no password", Profile{Name: "N", PhoneNumber: "+SIG-1"}},
		{"bad country", Profile{Name: "N", PhoneNumber: "+SIG-1", Password: "x", Country: "ATLANTIS"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, _, err := f.svc.Signup(context.Background(), tt.p)
			require.ErrorIs(t, err, common.ErrorIncorrectArgument)
			assert.Empty(t, f.snapshot(t).Users)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u, _ := f.signup(t, "Nova", "+SIG-1000")
	ctx := context.Background()

	_, _, err := f.svc.Login(ctx, "+SIG-1000", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, _, err2 := f.svc.Login(ctx, "+SIG-4242", "pw-+SIG-1000")
	require.ErrorIs(t, err2, common.ErrInvalidCredentials)
	assert.Equal(t, err.Error(), err2.Error())

	got, sess, err := f.svc.Login(ctx, "+SIG-1000", "pw-+SIG-1000")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Empty(t, got.Password)
}

func TestVerifyUser_WithoutCredential(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Seed(context.Background()))
	u, _ := f.signup(t, "Nova", "+SIG-1000")
	f.pub.reset()

	got, err := f.svc.VerifyUser(context.Background(), u.ID, "REP-1", "")
	require.NoError(t, err)

	assert.True(t, got.IsVerified)
	require.NotNil(t, got.VerificationData)
	assert.Equal(t, "REP-1", got.VerificationData.ReportID)
	assert.Equal(t, "Citizen", got.Role)
	assert.Empty(t, f.pub.types())
}

func TestVerifyUser_CredentialJoinsChannelsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Seed(ctx))
	u, _ := f.signup(t, "Nova", "+SIG-1000")
	f.pub.reset()

	cred := models.CredentialSoumyadeeptaRoy
	got, err := f.svc.VerifyUser(ctx, u.ID, "REP-1", cred)
	require.NoError(t, err)
	assert.Equal(t, "Admin: SOUMYADEEPTA ROY", got.Role)
	assert.Equal(t, models.SecurityAdmin, got.SecurityLevel)
	assert.Equal(t, []notify.EventType{notify.EventChatUpdate, notify.EventChatUpdate}, f.pub.types())

	_, err = f.svc.VerifyUser(ctx, u.ID, "REP-2", cred)
	require.NoError(t, err)

	snap := f.snapshot(t)
	for _, id := range ChannelsFor(cred) {
		c := snap.Chats[id]
		require.NotNil(t, c, id)
		assert.Equal(t, 1, count(c.Participants, u.ID), id)
		assert.Equal(t, 1, count(c.Admins, u.ID), id)
	}
	assert.False(t, snap.Chats[ChannelRSD].HasParticipant(u.ID))
}

func TestVerifyUser_UnknownCredentialWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Seed(ctx))
	u, _ := f.signup(t, "Nova", "+SIG-1000")
	before := f.snapshot(t)

	_, err := f.svc.VerifyUser(ctx, u.ID, "REP-1", models.Credential("SUPREME LEADER"))
	require.ErrorIs(t, err, common.ErrUnknownCredential)
	assert.Equal(t, before, f.snapshot(t))
}

func TestVerifyUser_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.VerifyUser(context.Background(), "u_missing", "REP-1", "")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateUserCountry(t *testing.T) {
	f := newFixture(t)
	u, _ := f.signup(t, "Nova", "+SIG-1000")
	ctx := context.Background()

	got, err := f.svc.UpdateUserCountry(ctx, u.ID, models.CountryTaiq)
	require.NoError(t, err)
	assert.Equal(t, models.CountryTaiq, got.Country)

	_, err = f.svc.UpdateUserCountry(ctx, u.ID, "ATLANTIS")
	require.ErrorIs(t, err, common.ErrorIncorrectArgument)

	_, err = f.svc.UpdateUserCountry(ctx, "nobody", models.CountryTaiq)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUserMap_HidesSecrets(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Seed(context.Background()))
	f.signup(t, "Nova", "+SIG-1000")

	users, err := f.svc.GetUserMap(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 5)
	for id, u := range users {
		assert.Empty(t, u.Password, id)
		assert.Empty(t, u.SystemPrompt, id)
	}
}

func count(ids []string, id string) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}
