package chat

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/notify"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// Profile is what a new user provides at signup.
type Profile struct {
	Name        string
	PhoneNumber string
	Password    string
	Country     models.Country
	Avatar      string
	Bio         string
}

// dummyHash keeps Login's cost the same whether or not the handle exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("sigmax"), bcrypt.MinCost)

// Signup registers an unverified citizen and opens a session for it.
func (s *Service) Signup(ctx context.Context, p Profile) (*models.User, session.Session, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	if p.Name == "" || p.PhoneNumber == "" || p.Password == "" {
		return nil, session.Session{}, fmt.Errorf("%w: name, handle and password are required", common.ErrorIncorrectArgument)
	}
	if p.Country == "" {
		p.Country = models.CountryPowerlingx
	}
	if !p.Country.Valid() {
		return nil, session.Session{}, fmt.Errorf("%w: unknown country %q", common.ErrorIncorrectArgument, p.Country)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.passwordCost)
	if err != nil {
		return nil, session.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:             newID("u_"),
		Name:           p.Name,
		Avatar:         p.Avatar,
		Country:        p.Country,
		Role:           "Citizen",
		SecurityLevel:  models.SecurityCitizen,
		Bio:            p.Bio,
		PhoneNumber:    p.PhoneNumber,
		Password:       string(hash),
		BlockedUserIDs: []string{},
	}
	if user.Avatar == "" {
		user.Avatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(p.Name)
	}
	if user.Bio == "" {
		user.Bio = "New recruit to the Sigmax Alliance."
	}

	err = s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		if _, taken := snap.UserByHandle(user.PhoneNumber); taken {
			return nil, fmt.Errorf("%w: communicator ID %s already registered", common.ErrDuplicateHandle, user.PhoneNumber)
		}
		snap.Users[user.ID] = user
		return []store.Namespace{store.NamespaceUsers}, nil
	})
	if err != nil {
		return nil, session.Session{}, err
	}

	s.logger.Info(ctx, "user signed up", "user", user.ID, "handle", user.PhoneNumber)
	return user.Public(), session.Session{UserID: user.ID}, nil
}

// Login returns the user whose handle and password match. An unknown
// handle and a wrong password fail identically.
func (s *Service) Login(ctx context.Context, handle, password string) (*models.User, session.Session, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, session.Session{}, err
	}

	u, ok := snap.UserByHandle(strings.TrimSpace(handle))
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, session.Session{}, common.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, session.Session{}, common.ErrInvalidCredentials
	}

	return u.Public(), session.Session{UserID: u.ID}, nil
}

// VerifyUser marks the user verified and stamps the scan report. A
// non-empty credential promotes the user to admin and joins the
// credential's channels with admin rights; joining twice changes nothing.
// A credential outside the allow-list is rejected before anything is
// written.
func (s *Service) VerifyUser(ctx context.Context, userID, reportID string, cred models.Credential) (*models.User, error) {
	var channels []string
	if cred != "" {
		var ok bool
		if channels, ok = credentialChannels[cred]; !ok {
			return nil, fmt.Errorf("%w: %q", common.ErrUnknownCredential, cred)
		}
	}

	var (
		user    *models.User
		touched []*models.Chat
	)
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		u, ok := snap.Users[userID]
		if !ok {
			return nil, fmt.Errorf("%w: user %s", common.ErrorNotFound, userID)
		}

		u.IsVerified = true
		u.VerificationData = &models.VerificationData{
			ReportID:          reportID,
			FaceScanTimestamp: s.timestamp(),
			IdentityMatch:     string(cred),
		}
		user = u

		if cred == "" {
			return []store.Namespace{store.NamespaceUsers}, nil
		}

		u.Role = "Admin: " + string(cred)
		u.SecurityLevel = models.SecurityAdmin

		for _, id := range channels {
			c, ok := snap.Chats[id]
			if !ok {
				continue
			}
			if !c.HasParticipant(userID) {
				c.Participants = append(c.Participants, userID)
			}
			if !c.IsAdmin(userID) {
				c.Admins = append(c.Admins, userID)
			}
			touched = append(touched, c)
		}
		return []store.Namespace{store.NamespaceUsers, store.NamespaceChats}, nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range touched {
		s.publish(ctx, notify.EventChatUpdate, c)
	}
	s.logger.Info(ctx, "user verified", "user", userID, "report", reportID, "credential", cred)
	return user.Public(), nil
}

// UpdateUserCountry moves the user to another faction.
func (s *Service) UpdateUserCountry(ctx context.Context, userID string, country models.Country) (*models.User, error) {
	if !country.Valid() {
		return nil, fmt.Errorf("%w: unknown country %q", common.ErrorIncorrectArgument, country)
	}

	var user *models.User
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		u, ok := snap.Users[userID]
		if !ok {
			return nil, fmt.Errorf("%w: user %s", common.ErrorNotFound, userID)
		}
		u.Country = country
		user = u
		return []store.Namespace{store.NamespaceUsers}, nil
	})
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// GetUser returns one user, without secrets.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := snap.Users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", common.ErrorNotFound, userID)
	}
	return u.Public(), nil
}

// GetUserMap returns every user by id, without secrets.
func (s *Service) GetUserMap(ctx context.Context) (map[string]*models.User, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.User, len(snap.Users))
	for id, u := range snap.Users {
		out[id] = u.Public()
	}
	return out, nil
}
