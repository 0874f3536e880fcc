package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eventhive/eventhive-go/internal/apperrors"
	"github.com/eventhive/eventhive-go/internal/logger"
	"github.com/eventhive/eventhive-go/internal/models"
)

const (
	defaultCallTimeout = 15 * time.Second
	defaultTokenTTL    = 15 * time.Minute
)

type Config struct {
	// BaseURL of the auth API, e.g. "https://api.eventhive.app"
	BaseURL string

	// Client to send requests with. Defaults to http.DefaultClient.
	Client *http.Client

	// Timeout applied per call. Defaults to 15s.
	Timeout time.Duration

	// Tokens supplies the bearer token for authorized calls. Optional;
	// without it profile and sign-out calls go out unauthenticated.
	Tokens TokenSource

	Logger logger.Logger
}

// HTTPGateway implements AuthGateway over the EventHive JSON API.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	tokens  TokenSource
	logger  logger.Logger
}

func NewHTTP(cfg Config) *HTTPGateway {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCallTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		client:  client,
		timeout: timeout,
		tokens:  cfg.Tokens,
		logger:  log,
	}
}

// envelope is the uniform response shape of the auth API. Business level
// failures arrive inside a 200 with success=false and a populated error.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type userPayload struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Phone         string            `json:"phone"`
	Role          string            `json:"role"`
	EmailVerified bool              `json:"email_verified"`
	AvatarURL     string            `json:"avatar_url"`
	Preferences   map[string]string `json:"preferences"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type authPayload struct {
	User         userPayload `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
}

func (p userPayload) toModel() models.UserProfile {
	return models.UserProfile{
		ID:            p.ID,
		Email:         p.Email,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Phone:         p.Phone,
		Role:          p.Role,
		EmailVerified: p.EmailVerified,
		AvatarURL:     p.AvatarURL,
		Preferences:   p.Preferences,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// tokenPair builds the client side pair, stamping issuedAt with the
// receive time. A missing expires_in falls back to the JWT exp claim and
// then to the default lifetime.
func (p authPayload) tokenPair(now time.Time) models.TokenPair {
	expiresIn := time.Duration(p.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = lifetimeFromAccessToken(p.AccessToken, now)
	}

	return models.TokenPair{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    expiresIn,
		IssuedAt:     now,
	}
}

// lifetimeFromAccessToken tries the JWT exp claim of an otherwise opaque
// token. No signature check: the server remains the authority, this only
// recovers the declared lifetime.
func lifetimeFromAccessToken(access string, now time.Time) time.Duration {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(access, &claims,
		func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.After(now) {
		return claims.ExpiresAt.Time.Sub(now)
	}
	return defaultTokenTTL
}

func (g *HTTPGateway) SignIn(ctx context.Context, email string, password string) (models.AuthData, error) {
	body := map[string]string{"email": email, "password": password}

	var payload authPayload
	now := time.Now()
	err := g.call(ctx, http.MethodPost, "/api/auth/login", apperrors.EndpointSignIn, body, false, &payload)
	if err != nil {
		return models.AuthData{}, err
	}

	return models.AuthData{User: payload.User.toModel(), Tokens: payload.tokenPair(now)}, nil
}

func (g *HTTPGateway) SignUp(ctx context.Context, req models.SignUpRequest) (models.AuthData, error) {
	var payload authPayload
	now := time.Now()
	err := g.call(ctx, http.MethodPost, "/api/auth/register", apperrors.EndpointRegister, req, false, &payload)
	if err != nil {
		return models.AuthData{}, err
	}

	return models.AuthData{User: payload.User.toModel(), Tokens: payload.tokenPair(now)}, nil
}

func (g *HTTPGateway) SignInWithOAuth(ctx context.Context, req models.OAuthSignInRequest) (models.AuthData, error) {
	var payload authPayload
	now := time.Now()
	err := g.call(ctx, http.MethodPost, "/api/auth/oauth", apperrors.EndpointSignIn, req, false, &payload)
	if err != nil {
		return models.AuthData{}, err
	}

	return models.AuthData{User: payload.User.toModel(), Tokens: payload.tokenPair(now)}, nil
}

func (g *HTTPGateway) RefreshToken(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var payload authPayload
	now := time.Now()
	err := g.call(ctx, http.MethodPost, "/api/auth/refresh", apperrors.EndpointRefresh, body, false, &payload)
	if err != nil {
		return models.TokenPair{}, err
	}

	return payload.tokenPair(now), nil
}

func (g *HTTPGateway) SignOut(ctx context.Context) error {
	return g.call(ctx, http.MethodPost, "/api/auth/logout", apperrors.EndpointGeneric, nil, true, nil)
}

func (g *HTTPGateway) GetUserProfile(ctx context.Context) (models.UserProfile, error) {
	var payload userPayload
	err := g.call(ctx, http.MethodGet, "/api/users/me", apperrors.EndpointUserLookup, nil, true, &payload)
	if err != nil {
		return models.UserProfile{}, err
	}
	return payload.toModel(), nil
}

func (g *HTTPGateway) UpdateUserProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error) {
	var payload userPayload
	err := g.call(ctx, http.MethodPatch, "/api/users/me", apperrors.EndpointUserLookup, req, true, &payload)
	if err != nil {
		return models.UserProfile{}, err
	}
	return payload.toModel(), nil
}

func (g *HTTPGateway) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return g.call(ctx, http.MethodPost, "/api/auth/forgot-password", apperrors.EndpointUserLookup, body, false, nil)
}

func (g *HTTPGateway) SendEmailVerification(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return g.call(ctx, http.MethodPost, "/api/auth/verify-email", apperrors.EndpointGeneric, body, true, nil)
}

// call sends one request and decodes the envelope. Every way the call can
// fail comes back as an *apperrors.Error.
func (g *HTTPGateway) call(ctx context.Context, method string, path string, ep apperrors.Endpoint, body any, authorized bool, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var reqBody *bytes.Buffer
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.KindUnknown, fmt.Errorf("marshal request: %w", err))
		}
		reqBody = bytes.NewBuffer(buf)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	if authorized && g.tokens != nil {
		if token, err := g.tokens.AccessToken(ctx); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		appErr := apperrors.FromTransport(err)
		g.logger.Warn("Auth API unreachable", "path", path, "kind", appErr.Kind)
		return appErr
	}
	defer resp.Body.Close() // nolint:errcheck

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code, message := "", ""
		if decodeErr == nil && env.Error != nil {
			code, message = env.Error.Code, env.Error.Message
		}
		appErr := apperrors.FromResponse(ep, resp.StatusCode, code, message)
		g.logger.Warn("Auth API call failed", "path", path, "status_code", resp.StatusCode, "kind", appErr.Kind)
		return appErr
	}

	if decodeErr != nil {
		return apperrors.Wrap(apperrors.KindParse, fmt.Errorf("decode response: %w", decodeErr))
	}

	// Business level failure inside a 200 response
	if !env.Success {
		code, message := "", ""
		if env.Error != nil {
			code, message = env.Error.Code, env.Error.Message
		}
		appErr := apperrors.FromResponse(ep, resp.StatusCode, code, message)
		g.logger.Warn("Auth API rejected call", "path", path, "code", code, "kind", appErr.Kind)
		return appErr
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperrors.Wrap(apperrors.KindParse, fmt.Errorf("decode payload: %w", err))
		}
	}

	g.logger.Debug("Auth API call ok", "path", path)
	return nil
}
