package models

import (
	"time"
)

// UserProfile is the identity of the signed-in user as the server reports it.
// Treated as a value: replaced wholesale on every update, never mutated in place.
type UserProfile struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Phone         string            `json:"phone,omitempty"`
	Role          string            `json:"role"`
	EmailVerified bool              `json:"email_verified"`
	AvatarURL     string            `json:"avatar_url,omitempty"`
	Preferences   map[string]string `json:"preferences,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Clone returns a copy that shares nothing with the receiver.
// The preference bag is a map and would otherwise alias between the
// stored and the published copies.
func (p UserProfile) Clone() UserProfile {
	if p.Preferences == nil {
		return p
	}

	prefs := make(map[string]string, len(p.Preferences))
	for k, v := range p.Preferences {
		prefs[k] = v
	}
	p.Preferences = prefs
	return p
}

func (p UserProfile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
