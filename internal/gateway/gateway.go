// Package gateway talks to the remote EventHive auth API. Every failure it
// returns is already classified into the apperrors taxonomy; callers never
// see a raw transport error or status code.
package gateway

import (
	"context"

	"github.com/eventhive/eventhive-go/internal/models"
)

// AuthGateway is the remote auth contract the session manager consumes.
type AuthGateway interface {
	SignIn(ctx context.Context, email string, password string) (models.AuthData, error)
	SignUp(ctx context.Context, req models.SignUpRequest) (models.AuthData, error)
	SignInWithOAuth(ctx context.Context, req models.OAuthSignInRequest) (models.AuthData, error)
	RefreshToken(ctx context.Context, refreshToken string) (models.TokenPair, error)
	SignOut(ctx context.Context) error

	GetUserProfile(ctx context.Context) (models.UserProfile, error)
	UpdateUserProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error)

	ForgotPassword(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context, email string) error
}

// TokenSource supplies the bearer token for authorized calls.
// The credential store satisfies it directly.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}
