package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventhive/eventhive-go/internal/apperrors"
	"github.com/eventhive/eventhive-go/internal/credstore"
	"github.com/eventhive/eventhive-go/internal/gateway"
	"github.com/eventhive/eventhive-go/internal/logger"
	"github.com/eventhive/eventhive-go/internal/models"
	"github.com/eventhive/eventhive-go/internal/validate"
)

// Manager orchestrates every operation that changes who is logged in and
// keeps the published state consistent with the credential store. At most
// one authoritative session exists at a time: mutations are serialized,
// the last completed credential operation wins.
type Manager struct {
	store   credstore.Store
	gateway gateway.AuthGateway
	logger  logger.Logger

	// writeMu serializes store writes and state publication. Gateway
	// calls run outside of it so the network never blocks readers.
	writeMu chan struct{}

	states *broadcaster

	// lastTokens remembers the lifetime facts of the most recently
	// issued pair. The store only holds the opaque strings; after a
	// restart a synthesized pair has no lifetime and counts as expired.
	lastTokens *models.TokenPair
}

func NewManager(gw gateway.AuthGateway, store credstore.Store, log logger.Logger) (*Manager, error) {
	if gw == nil || store == nil {
		return nil, errors.New("gateway and store must not be nil")
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	m := &Manager{
		store:   store,
		gateway: gw,
		logger:  log,
		writeMu: make(chan struct{}, 1),
		states:  newBroadcaster(Loading{}),
	}
	return m, nil
}

// lock serializes session mutations, respecting the caller's context.
func (m *Manager) lock(ctx context.Context) error {
	select {
	case m.writeMu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(apperrors.KindTimeout, ctx.Err())
	}
}

func (m *Manager) unlock() {
	<-m.writeMu
}

// CheckCurrentUser resolves the bootstrap Loading state: Authenticated if
// the store holds a profile and tokens, Unauthenticated otherwise.
func (m *Manager) CheckCurrentUser(ctx context.Context) (State, error) {
	if err := m.lock(ctx); err != nil {
		return m.states.Current(), err
	}
	defer m.unlock()

	profile, err := m.store.Profile(ctx)
	if err != nil {
		if !errors.Is(err, credstore.ErrNotStored) {
			m.logger.Warn("Stored profile unreadable", "error", err)
		}
		m.states.Publish(Unauthenticated{})
		return Unauthenticated{}, nil
	}

	tokens := m.storedTokens(ctx)
	if tokens == nil {
		m.states.Publish(Unauthenticated{})
		return Unauthenticated{}, nil
	}

	state := Authenticated{User: profile, Tokens: *tokens}
	m.states.Publish(state)
	return state, nil
}

// SignIn authenticates with email and password. On success the tokens and
// profile are persisted and Authenticated is published; on failure the
// published state becomes Failed and stored credentials are untouched.
func (m *Manager) SignIn(ctx context.Context, email string, password string) (models.AuthData, error) {
	if err := validate.SignInFields(email, password); err != nil {
		return models.AuthData{}, err
	}

	data, err := m.gateway.SignIn(ctx, email, password)
	if err != nil {
		m.publishFailure(ctx, err)
		return models.AuthData{}, err
	}

	if err := m.applySession(ctx, data.User, data.Tokens); err != nil {
		return models.AuthData{}, err
	}
	m.logger.Info("Signed in", "user_id", data.User.ID)
	return data, nil
}

// SignUp registers a new account. The returned profile is freshly assigned
// by the server with the email not yet verified.
func (m *Manager) SignUp(ctx context.Context, req models.SignUpRequest) (models.AuthData, error) {
	if err := validate.Struct(req); err != nil {
		return models.AuthData{}, err
	}

	data, err := m.gateway.SignUp(ctx, req)
	if err != nil {
		m.publishFailure(ctx, err)
		return models.AuthData{}, err
	}

	if err := m.applySession(ctx, data.User, data.Tokens); err != nil {
		return models.AuthData{}, err
	}
	m.logger.Info("Signed up", "user_id", data.User.ID)
	return data, nil
}

// SignInWithOAuth authenticates with a provider issued identity.
func (m *Manager) SignInWithOAuth(ctx context.Context, req models.OAuthSignInRequest) (models.AuthData, error) {
	if err := validate.Struct(req); err != nil {
		return models.AuthData{}, err
	}

	data, err := m.gateway.SignInWithOAuth(ctx, req)
	if err != nil {
		m.publishFailure(ctx, err)
		return models.AuthData{}, err
	}

	if err := m.applySession(ctx, data.User, data.Tokens); err != nil {
		return models.AuthData{}, err
	}
	m.logger.Info("Signed in with oauth", "user_id", data.User.ID, "provider", req.Provider)
	return data, nil
}

// RefreshTokens swaps both tokens for a fresh pair, keeping the profile.
// On failure the published state is demoted to Failed; stored tokens are
// retained so a later retry can reuse the still valid refresh token.
func (m *Manager) RefreshTokens(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	pair, err := m.gateway.RefreshToken(ctx, refreshToken)
	if err != nil {
		m.publishFailure(ctx, err)
		return models.TokenPair{}, err
	}

	if err := m.UpdateTokens(ctx, pair); err != nil {
		return models.TokenPair{}, err
	}
	m.logger.Debug("Tokens refreshed")
	return pair, nil
}

// SignOut terminates the session. The local clear is unconditional: the
// gateway outcome is advisory only and is returned for telemetry, never
// blocking or skipping the clear.
func (m *Manager) SignOut(ctx context.Context) error {
	gwErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = apperrors.Wrap(apperrors.KindUnknown, fmt.Errorf("sign-out panicked: %v", r))
			}
		}()
		return m.gateway.SignOut(ctx)
	}()
	if gwErr != nil {
		m.logger.Warn("Remote sign-out failed, clearing local session anyway", "error", gwErr)
	}

	// The caller abandoning the call must not leave credentials behind.
	if err := m.ClearUserSession(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	m.logger.Info("Signed out")
	return gwErr
}

// CurrentUser reads the stored profile. Nil without error when absent.
func (m *Manager) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	profile, err := m.store.Profile(ctx)
	switch {
	case errors.Is(err, credstore.ErrNotStored):
		return nil, nil
	case err != nil:
		return nil, apperrors.Wrap(apperrors.KindUnknown, err)
	}
	return &profile, nil
}

// CurrentTokens synthesizes a pair from the store, only when both tokens
// are present. A pair stored by a previous process run carries no lifetime
// facts and therefore reports itself expired.
func (m *Manager) CurrentTokens(ctx context.Context) (*models.TokenPair, error) {
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	defer m.unlock()

	return m.storedTokens(ctx), nil
}

// storedTokens builds the current pair; callers hold the write lock.
func (m *Manager) storedTokens(ctx context.Context) *models.TokenPair {
	access, err := m.store.AccessToken(ctx)
	if err != nil {
		return nil
	}
	refresh, err := m.store.RefreshToken(ctx)
	if err != nil {
		return nil
	}

	if m.lastTokens != nil && m.lastTokens.AccessToken == access && m.lastTokens.RefreshToken == refresh {
		pair := *m.lastTokens
		return &pair
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}
}

// IsAuthenticated reports whether a profile and an access token are
// stored. Cheap storage only check, no expiration validation.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	if _, err := m.store.Profile(ctx); err != nil {
		return false
	}
	if _, err := m.store.AccessToken(ctx); err != nil {
		return false
	}
	return true
}

// IsTokenExpired reports whether the access token lifetime has elapsed.
// True when no tokens are stored: callers fail closed, not open.
func (m *Manager) IsTokenExpired(ctx context.Context, now time.Time) bool {
	tokens, err := m.CurrentTokens(ctx)
	if err != nil || tokens == nil {
		return true
	}
	return tokens.Expired(now)
}

// IsTokenExpiringSoon reports whether the access token is within window of
// expiring. True when no tokens are stored.
func (m *Manager) IsTokenExpiringSoon(ctx context.Context, now time.Time, window time.Duration) bool {
	tokens, err := m.CurrentTokens(ctx)
	if err != nil || tokens == nil {
		return true
	}
	return tokens.ExpiresSoon(now, window)
}

// Observe returns the session state stream: the current state arrives
// immediately, then every transition in order. The channel closes when
// ctx is done.
func (m *Manager) Observe(ctx context.Context) <-chan State {
	return m.states.Subscribe(ctx)
}

// Current returns the latest published state without subscribing.
func (m *Manager) Current() State {
	return m.states.Current()
}

// UpdateTokens persists a pair obtained through a side channel and
// republishes Authenticated when a profile is present.
func (m *Manager) UpdateTokens(ctx context.Context, tokens models.TokenPair) error {
	if err := m.lock(ctx); err != nil {
		return err
	}
	defer m.unlock()

	if err := m.writeTokens(ctx, tokens); err != nil {
		return err
	}

	if profile, err := m.store.Profile(ctx); err == nil {
		m.states.Publish(Authenticated{User: profile, Tokens: tokens})
	}
	return nil
}

// SaveUserSession persists a whole session and publishes Authenticated.
// Bulk primitive used by bootstrap paths.
func (m *Manager) SaveUserSession(ctx context.Context, profile models.UserProfile, tokens models.TokenPair) error {
	if err := m.lock(ctx); err != nil {
		return err
	}
	defer m.unlock()

	return m.applySessionLocked(ctx, profile, tokens)
}

// ClearUserSession wipes the stored session and publishes Unauthenticated.
// Clearing continues through individual failures so one bad key can't
// keep the rest of the session alive.
func (m *Manager) ClearUserSession(ctx context.Context) error {
	if err := m.lock(ctx); err != nil {
		return err
	}
	defer m.unlock()

	err := errors.Join(
		m.store.ClearAccessToken(ctx),
		m.store.ClearRefreshToken(ctx),
		m.store.ClearProfile(ctx),
	)
	m.lastTokens = nil
	m.states.Publish(Unauthenticated{})

	if err != nil {
		m.logger.Error("Session clear incomplete", "error", err)
		return apperrors.Wrap(apperrors.KindUnknown, err)
	}
	return nil
}

// Profile fetches a fresh profile from the gateway. Read only: a failure
// never demotes an Authenticated session. On success the stored and
// published profile are replaced wholesale.
func (m *Manager) Profile(ctx context.Context) (models.UserProfile, error) {
	profile, err := m.gateway.GetUserProfile(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}

	if err := m.replaceProfile(ctx, profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

// UpdateProfile pushes profile changes and applies the server's version.
func (m *Manager) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error) {
	if err := validate.Struct(req); err != nil {
		return models.UserProfile{}, err
	}

	profile, err := m.gateway.UpdateUserProfile(ctx, req)
	if err != nil {
		return models.UserProfile{}, err
	}

	if err := m.replaceProfile(ctx, profile); err != nil {
		return models.UserProfile{}, err
	}
	m.logger.Info("Profile updated", "user_id", profile.ID)
	return profile, nil
}

// ForgotPassword asks the server to start a password reset.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	if err := validate.Email(email); err != nil {
		return err
	}
	return m.gateway.ForgotPassword(ctx, email)
}

// SendEmailVerification asks the server to resend the verification mail.
func (m *Manager) SendEmailVerification(ctx context.Context, email string) error {
	if err := validate.Email(email); err != nil {
		return err
	}
	return m.gateway.SendEmailVerification(ctx, email)
}

// EnsureFreshTokens refreshes the pair iff it expires within window.
// Convenience for feature code about to call an API.
func (m *Manager) EnsureFreshTokens(ctx context.Context, window time.Duration) error {
	tokens, err := m.CurrentTokens(ctx)
	if err != nil {
		return err
	}
	if tokens == nil {
		return apperrors.New(apperrors.KindUnauthorized)
	}
	if !tokens.ExpiresSoon(time.Now(), window) {
		return nil
	}

	_, err = m.RefreshTokens(ctx, tokens.RefreshToken)
	return err
}

// applySession persists and publishes a fresh session.
func (m *Manager) applySession(ctx context.Context, profile models.UserProfile, tokens models.TokenPair) error {
	if err := m.lock(ctx); err != nil {
		return err
	}
	defer m.unlock()

	return m.applySessionLocked(ctx, profile, tokens)
}

// applySessionLocked writes tokens then profile. If any single write
// fails the session is wiped rather than left torn, and Failed is
// published.
func (m *Manager) applySessionLocked(ctx context.Context, profile models.UserProfile, tokens models.TokenPair) error {
	persist := func() error {
		if err := m.store.SaveAccessToken(ctx, tokens.AccessToken); err != nil {
			return fmt.Errorf("save access token: %w", err)
		}
		if err := m.store.SaveRefreshToken(ctx, tokens.RefreshToken); err != nil {
			return fmt.Errorf("save refresh token: %w", err)
		}
		if err := m.store.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		return nil
	}

	if err := persist(); err != nil {
		m.logger.Error("Session persist failed, wiping partial state", "error", err)
		_ = m.store.ClearAccessToken(ctx)
		_ = m.store.ClearRefreshToken(ctx)
		_ = m.store.ClearProfile(ctx)
		m.lastTokens = nil

		appErr := apperrors.Wrap(apperrors.KindUnknown, err)
		m.states.Publish(Failed{Message: appErr.Message, Err: appErr})
		return appErr
	}

	pair := tokens
	m.lastTokens = &pair
	m.states.Publish(Authenticated{User: profile, Tokens: tokens})
	return nil
}

// writeTokens persists both tokens; callers hold the write lock.
func (m *Manager) writeTokens(ctx context.Context, tokens models.TokenPair) error {
	if err := m.store.SaveAccessToken(ctx, tokens.AccessToken); err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, fmt.Errorf("save access token: %w", err))
	}
	if err := m.store.SaveRefreshToken(ctx, tokens.RefreshToken); err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, fmt.Errorf("save refresh token: %w", err))
	}

	pair := tokens
	m.lastTokens = &pair
	return nil
}

// replaceProfile persists a new profile and republishes Authenticated if
// the session currently is.
func (m *Manager) replaceProfile(ctx context.Context, profile models.UserProfile) error {
	if err := m.lock(ctx); err != nil {
		return err
	}
	defer m.unlock()

	if err := m.store.SaveProfile(ctx, profile); err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, fmt.Errorf("save profile: %w", err))
	}

	if tokens := m.storedTokens(ctx); tokens != nil {
		if _, ok := m.states.Current().(Authenticated); ok {
			m.states.Publish(Authenticated{User: profile, Tokens: *tokens})
		}
	}
	return nil
}

// publishFailure demotes the published state after a failed session
// defining operation. Stored credentials are left untouched. The demotion
// lands even when the failing call's context is already done.
func (m *Manager) publishFailure(ctx context.Context, err error) {
	if lockErr := m.lock(context.WithoutCancel(ctx)); lockErr != nil {
		return
	}
	defer m.unlock()

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.KindUnknown, err)
	}
	m.states.Publish(Failed{Message: appErr.Message, Err: appErr})
}
