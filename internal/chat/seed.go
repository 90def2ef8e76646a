package chat

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// Privileged channel ids.
const (
	ChannelSIR      = "admin_sir"
	ChannelSigmax   = "admin_sigmax"
	ChannelRSD      = "admin_rsd"
	ChannelInfinity = "infinity_force"
)

// credentialChannels is the fixed credential to channel table used by
// VerifyUser.
var credentialChannels = map[models.Credential][]string{
	models.CredentialSoumyadeeptaRoy:     {ChannelSIR, ChannelSigmax},
	models.CredentialRitankarChakraborty: {ChannelSIR, ChannelSigmax, ChannelRSD, ChannelInfinity},
	models.CredentialSatyakiHalder:       {ChannelSigmax, ChannelRSD, ChannelInfinity},
	models.CredentialDianDey:             {ChannelSigmax, ChannelRSD, ChannelInfinity},
	models.CredentialIbhanChakraborty:    {ChannelSIR, ChannelSigmax},
}

// ChannelsFor returns the channels a credential unlocks.
func ChannelsFor(c models.Credential) []string {
	return slices.Clone(credentialChannels[c])
}

// personaPassword is the shared password of the seeded personas.
const personaPassword = "admin"

var personas = []models.User{
	{
		ID:            "c1",
		Name:          "Cmdr. Jaxon Vane",
		Country:       models.CountryPowerlingx,
		Role:          "Grid Ops Director",
		SecurityLevel: models.SecurityOfficial,
		Avatar:        "https://api.dicebear.com/7.x/avataaars/svg?seed=Jaxon",
		Status:        "online",
		Bio:           "Energy waits for no one. Efficiency is key.",
		SystemPrompt:  "You are Commander Jaxon Vane. Speak in short, punchy sentences. Focus on power grids, energy efficiency, and speed. You are impatient but competent.",
	},
	{
		ID:            "c2",
		Name:          "Dr. Aris Thorne",
		Country:       models.CountryTaiq,
		Role:          "Chief Cyberneticist",
		SecurityLevel: models.SecurityIntel,
		Avatar:        "https://api.dicebear.com/7.x/avataaars/svg?seed=Aris",
		Status:        "busy",
		Bio:           "The code is the law.",
		SystemPrompt:  "You are Dr. Aris Thorne. You are highly technical. Use computer science metaphors. You are logical and often dry in humor.",
	},
	{
		ID:            "c3",
		Name:          "High Merchant Kaelith",
		Country:       models.CountryDiamondaura,
		Role:          "Trade Minister",
		SecurityLevel: models.SecurityLeader,
		Avatar:        "https://api.dicebear.com/7.x/avataaars/svg?seed=Kaelith",
		Status:        "online",
		Bio:           "Clarity brings value.",
		SystemPrompt:  "You are Lady Kaelith. You are sophisticated, wealthy, and polite. You care about transaction value and aesthetics.",
	},
	{
		ID:            "c4",
		Name:          "Warden Sylas",
		Country:       models.CountrySavirom,
		Role:          "Eco-Preservationist",
		SecurityLevel: models.SecurityCitizen,
		Avatar:        "https://api.dicebear.com/7.x/avataaars/svg?seed=Sylas",
		Status:        "in_mission",
		Bio:           "Nature remembers everything.",
		SystemPrompt:  "You are Warden Sylas. You are calm, poetic, and slow to anger. You speak in metaphors about nature.",
	},
}

var adminChannels = []models.Chat{
	{
		ID:           ChannelSIR,
		Type:         models.ChatChannel,
		Name:         "ADMINS.S.I.R CHANNEL",
		Avatar:       "https://ui-avatars.com/api/?name=SIR&background=000000&color=ffffff&bold=true",
		Description:  "Sigmax Intelligence & Reconnaissance - Top Clearance Only",
		Participants: []string{"c1", "c2"},
	},
	{
		ID:           ChannelSigmax,
		Type:         models.ChatChannel,
		Name:         "ADMINS.SIGMAX CHANNEL",
		Avatar:       "https://ui-avatars.com/api/?name=SGX&background=0f172a&color=06b6d4&bold=true",
		Description:  "Central Command Broadcasts",
		Participants: []string{"c1", "c2", "c3"},
	},
	{
		ID:           ChannelRSD,
		Type:         models.ChatChannel,
		Name:         "ADMINS.R.S.D CHANNEL",
		Avatar:       "https://ui-avatars.com/api/?name=RSD&background=7f1d1d&color=fca5a5&bold=true",
		Description:  "Research, Strategy, Defense",
		Participants: []string{"c2"},
	},
	{
		ID:           ChannelInfinity,
		Type:         models.ChatChannel,
		Name:         "INFINITY FORCE CHANNEL",
		Avatar:       "https://ui-avatars.com/api/?name=INF&background=4c1d95&color=e9d5ff&bold=true",
		Description:  "Multiversal Task Force Coordination",
		Participants: []string{"c1", "c2", "c3", "c4"},
	},
}

// Seed creates the persona contacts and the privileged channels when they
// are missing. Existing records are left alone, so Seed is safe to run on
// every start.
func (s *Service) Seed(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(personaPassword), s.passwordCost)
	if err != nil {
		return fmt.Errorf("hash persona password: %w", err)
	}

	var created []string
	err = s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		var dirty []store.Namespace

		usersChanged := false
		for _, p := range personas {
			if _, ok := snap.Users[p.ID]; ok {
				continue
			}
			u := p
			u.PhoneNumber = freeHandle(snap)
			u.Password = string(hash)
			u.IsVerified = true
			u.BlockedUserIDs = []string{}
			snap.Users[u.ID] = &u
			created = append(created, u.ID)
			usersChanged = true
		}
		if usersChanged {
			dirty = append(dirty, store.NamespaceUsers)
		}

		chatsChanged := false
		for _, c := range adminChannels {
			if _, ok := snap.Chats[c.ID]; ok {
				continue
			}
			ch := c
			ch.Participants = slices.Clone(c.Participants)
			ch.Admins = slices.Clone(c.Participants)
			snap.Chats[ch.ID] = &ch
			created = append(created, ch.ID)
			chatsChanged = true
		}
		if chatsChanged {
			dirty = append(dirty, store.NamespaceChats)
		}
		return dirty, nil
	})
	if err != nil {
		return err
	}

	if len(created) > 0 {
		s.logger.Info(ctx, "seeded network", "created", created)
	}
	return nil
}

// freeHandle draws random handles until one is unused.
func freeHandle(snap *store.Snapshot) string {
	for {
		h := common.RandomHandle()
		if _, taken := snap.UserByHandle(h); !taken {
			return h
		}
	}
}
