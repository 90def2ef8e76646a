// Package models defines the persisted sigmax entities: users, chats and
// messages, plus their closed value sets. JSON field names match the
// documents stored under the sigmax_* namespaces.
package models

import "slices"

// Country is the faction a user belongs to.
type Country string

const (
	CountryPowerlingx  Country = "POWERLINGX"
	CountryTaiq        Country = "TAIQ"
	CountryBelIqZ      Country = "BEL-IQ-Z"
	CountrySavirom     Country = "SAVIROM"
	CountryDiamondaura Country = "DIAMONDAURA"
	CountryLingDynomax Country = "LING-DYNOMAX"
)

// Countries lists every known faction in display order.
var Countries = []Country{
	CountryPowerlingx, CountryTaiq, CountryBelIqZ,
	CountrySavirom, CountryDiamondaura, CountryLingDynomax,
}

// Valid reports whether c is one of the known factions.
func (c Country) Valid() bool {
	return slices.Contains(Countries, c)
}

// SecurityLevel is a user's clearance.
type SecurityLevel string

const (
	SecurityCitizen  SecurityLevel = "CITIZEN"
	SecurityOfficial SecurityLevel = "OFFICIAL"
	SecurityLeader   SecurityLevel = "LEADER"
	SecurityIntel    SecurityLevel = "INTEL"
	SecurityAdmin    SecurityLevel = "ADMIN"
)

// VerificationData is stamped on a user by a successful identity scan.
type VerificationData struct {
	ReportID          string `json:"reportId"`
	FaceScanTimestamp string `json:"faceScanTimestamp"`
	IdentityMatch     string `json:"identityMatch,omitempty"`
}

// User is a network participant, human or persona.
//
// Password holds a bcrypt hash and is never serialized to API clients;
// see Public.
type User struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Avatar           string            `json:"avatar"`
	Country          Country           `json:"country"`
	Role             string            `json:"role"`
	SecurityLevel    SecurityLevel     `json:"securityLevel"`
	Bio              string            `json:"bio"`
	SystemPrompt     string            `json:"systemPrompt,omitempty"`
	Status           string            `json:"status,omitempty"`
	PhoneNumber      string            `json:"phoneNumber"`
	Password         string            `json:"password,omitempty"`
	IsVerified       bool              `json:"isVerified"`
	BlockedUserIDs   []string          `json:"blockedUserIds"`
	VerificationData *VerificationData `json:"verificationData,omitempty"`
}

// IsPersona reports whether the user is an AI-driven contact.
func (u *User) IsPersona() bool {
	return u.SystemPrompt != ""
}

// HasBlocked reports whether u has blocked the user with the given id.
func (u *User) HasBlocked(id string) bool {
	return slices.Contains(u.BlockedUserIDs, id)
}

// Public returns a copy of u safe to hand to clients: no password hash
// and no persona prompt.
func (u *User) Public() *User {
	c := *u
	c.Password = ""
	c.SystemPrompt = ""
	c.BlockedUserIDs = slices.Clone(u.BlockedUserIDs)
	return &c
}
