package session

import (
	"github.com/nishadm/agrosage/internal/auth"
	"github.com/nishadm/agrosage/internal/store"
)

// State is the session lifecycle state exposed to the UI layer.
type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Refreshing
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is the authoritative logged-in snapshot derived from the
// backend-issued token pair.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Email        string
	ExpiresAt    int64 // epoch seconds
}

func sessionFrom(pair store.TokenPair, claims *auth.Claims) Session {
	return Session{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		UserID:       claims.UserID,
		Email:        claims.Email,
		ExpiresAt:    claims.ExpiresAt,
	}
}
