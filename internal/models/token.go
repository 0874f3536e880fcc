package models

import (
	"time"
)

// TokenPair holds the opaque bearer tokens issued by the auth server
// together with the facts needed to reason about their lifetime.
// Expiration is always computed from the stored fields and the query
// time, never cached, so it can't go stale.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// ExpiresIn is the server declared access token lifetime.
	ExpiresIn time.Duration `json:"expires_in"`

	// IssuedAt is the instant this client received the pair.
	IssuedAt time.Time `json:"issued_at"`
}

// ExpiresAt is the instant the access token stops being valid.
func (t TokenPair) ExpiresAt() time.Time {
	return t.IssuedAt.Add(t.ExpiresIn)
}

// Expired reports whether the access token lifetime has elapsed at 'now'.
func (t TokenPair) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt())
}

// ExpiresSoon reports whether the access token is past or within 'window'
// of its expiration at 'now'.
func (t TokenPair) ExpiresSoon(now time.Time, window time.Duration) bool {
	return now.After(t.ExpiresAt().Add(-window))
}

// AuthData is the payload every successful session defining call resolves
// to: the authenticated user and the freshly issued token pair.
type AuthData struct {
	User   UserProfile
	Tokens TokenPair
}
