// Package credstore persists the device local session: the current user
// profile and the two bearer tokens. Adapters back the same contract with
// process memory, a plain file, or an encrypted file.
package credstore

import (
	"context"
	"errors"

	"github.com/eventhive/eventhive-go/internal/models"
)

// ErrNotStored is returned by getters when the requested value is absent.
var ErrNotStored = errors.New("value not stored")

// Store is the credential persistence contract the session manager depends
// on. Every operation is individually atomic; there is no cross key
// transaction guarantee.
type Store interface {
	SaveProfile(ctx context.Context, profile models.UserProfile) error
	Profile(ctx context.Context) (models.UserProfile, error)
	ClearProfile(ctx context.Context) error

	SaveAccessToken(ctx context.Context, token string) error
	AccessToken(ctx context.Context) (string, error)
	ClearAccessToken(ctx context.Context) error

	SaveRefreshToken(ctx context.Context, token string) error
	RefreshToken(ctx context.Context) (string, error)
	ClearRefreshToken(ctx context.Context) error
}
