package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_TokenPair_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := mustParseTime("2024-01-01 19:00:00Z")
	pair := TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    15 * time.Minute,
		IssuedAt:     issuedAt,
	}
	expiresAt := issuedAt.Add(15 * time.Minute)

	tests := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{name: "fresh", now: issuedAt.Add(time.Minute), expired: false},
		{name: "one second before expiry", now: expiresAt.Add(-time.Second), expired: false},
		{name: "exactly at expiry", now: expiresAt, expired: false},
		{name: "one second after expiry", now: expiresAt.Add(time.Second), expired: true},
		{name: "long after expiry", now: expiresAt.Add(24 * time.Hour), expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, pair.Expired(tt.now))
		})
	}
}

func Test_TokenPair_ExpiresSoon(t *testing.T) {
	t.Parallel()

	issuedAt := mustParseTime("2024-01-01 19:00:00Z")
	pair := TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    15 * time.Minute,
		IssuedAt:     issuedAt,
	}
	window := 5 * time.Minute

	assert.False(t, pair.ExpiresSoon(issuedAt.Add(9*time.Minute), window), "well before window")
	assert.True(t, pair.ExpiresSoon(issuedAt.Add(11*time.Minute), window), "inside window")
	assert.True(t, pair.ExpiresSoon(issuedAt.Add(20*time.Minute), window), "already expired")
}

func Test_TokenPair_ZeroValueCountsExpired(t *testing.T) {
	t.Parallel()

	// A pair synthesized without lifetime facts must fail closed.
	var pair TokenPair
	assert.True(t, pair.Expired(time.Now()))
	assert.True(t, pair.ExpiresSoon(time.Now(), time.Minute))
}
