// Package common defines shared constants and sentinel errors used across
// sigmax layers. Callers should use errors.Is to match these values; services
// wrap them with a human-readable message via fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token, bad credentials).
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Domain errors surfaced to the acting user.
	ErrDuplicateHandle     = errors.New("duplicate handle")
	ErrDuplicateMessage    = errors.New("duplicate message id")
	ErrSelfLink            = errors.New("self link")
	ErrBlocked             = errors.New("blocked")
	ErrAlreadyMember       = errors.New("already member")
	ErrInvalidSelfRemoval  = errors.New("invalid self removal")
	ErrChannelNotFound     = errors.New("channel not found")
	ErrUnknownCredential   = errors.New("unknown credential")
	ErrorIncorrectArgument = errors.New("incorrect argument")
)
