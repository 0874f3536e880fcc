package models

// SignUpRequest carries everything needed to register a new account.
type SignUpRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// OAuthSignInRequest carries provider issued identity for federated sign-in.
// The provider token is opaque to the client; the server verifies it.
type OAuthSignInRequest struct {
	Provider      string `json:"provider" validate:"required,oneof=google apple facebook"`
	ProviderToken string `json:"provider_token" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName     string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName      string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	AvatarURL     string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// UpdateProfileRequest carries the profile fields a user may change.
// The server replies with the full updated profile.
type UpdateProfileRequest struct {
	FirstName   string            `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName    string            `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Phone       string            `json:"phone,omitempty" validate:"omitempty,e164"`
	AvatarURL   string            `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Preferences map[string]string `json:"preferences,omitempty"`
}
