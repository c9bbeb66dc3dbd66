package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"horse.fit/lingo/internal/api"
	"horse.fit/lingo/internal/globaltime"
)

// State is the session's authorization state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// AuthAPI is the slice of the backend client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (api.TokenResponse, error)
	Register(ctx context.Context, username, password, email string) (api.UserResponse, error)
}

// Session owns the credential lifecycle. Every privileged call in the client
// obtains the token through Credential, never from storage directly.
type Session struct {
	mu     sync.Mutex
	api    AuthAPI
	store  *TokenStore
	logger zerolog.Logger

	token string
	phase State
}

// New builds a session, restoring Authenticated state from the durable slot
// when a token survives from an earlier run.
func New(client AuthAPI, store *TokenStore, logger zerolog.Logger) (*Session, error) {
	if client == nil {
		return nil, fmt.Errorf("auth API is required")
	}
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}

	s := &Session{
		api:    client,
		store:  store,
		logger: logger,
	}

	token, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if token != "" {
		s.token = token
		s.phase = StateAuthenticated
		logger.Debug().Msg("session restored from token store")
	}
	return s, nil
}

// State reports the current authorization state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Login exchanges credentials for a bearer token and persists it. A failed
// attempt leaves the session unauthenticated; the error is for this attempt
// only and is not retained as state.
func (s *Session) Login(ctx context.Context, username, password string) error {
	username = normalizeUsername(username)
	password = strings.TrimSpace(password)
	if username == "" {
		return api.NewValidationError("username", "is required")
	}
	if password == "" {
		return api.NewValidationError("password", "is required")
	}

	s.mu.Lock()
	s.phase = StateAuthenticating
	s.mu.Unlock()

	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.mu.Lock()
		s.phase = StateUnauthenticated
		s.token = ""
		s.mu.Unlock()
		return fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.token = token.AccessToken
	s.phase = StateAuthenticated
	s.mu.Unlock()

	if err := s.store.Save(token.AccessToken); err != nil {
		s.logger.Error().Err(err).Msg("persist token failed")
		return fmt.Errorf("persist token: %w", err)
	}

	s.logger.Info().Str("username", username).Msg("logged in")
	return nil
}

// Logout clears the held token unconditionally. Logging out while already
// unauthenticated is a no-op.
func (s *Session) Logout() error {
	s.mu.Lock()
	wasAuthenticated := s.phase == StateAuthenticated
	s.token = ""
	s.phase = StateUnauthenticated
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if wasAuthenticated {
		s.logger.Info().Msg("logged out")
	}
	return nil
}

// Register creates a new account. It is independent of session state and does
// not authenticate on success.
func (s *Session) Register(ctx context.Context, username, password, email string) (api.UserResponse, error) {
	username = normalizeUsername(username)
	password = strings.TrimSpace(password)
	email = strings.TrimSpace(email)
	if username == "" {
		return api.UserResponse{}, api.NewValidationError("username", "is required")
	}
	if password == "" {
		return api.UserResponse{}, api.NewValidationError("password", "is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return api.UserResponse{}, api.NewValidationError("email", "must be a valid address")
	}

	user, err := s.api.Register(ctx, username, password, email)
	if err != nil {
		return api.UserResponse{}, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Credential returns the current token. Expired JWT tokens are invalidated
// locally so the caller fails fast instead of hitting the server.
func (s *Session) Credential() (string, error) {
	s.mu.Lock()
	token := s.token
	phase := s.phase
	s.mu.Unlock()

	if phase != StateAuthenticated || token == "" {
		return "", api.ErrAuthRequired
	}

	if identity, ok := parseIdentity(token); ok && !identity.ExpiresAt.IsZero() {
		if !identity.ExpiresAt.After(globaltime.UTC()) {
			s.Invalidate()
			return "", fmt.Errorf("%w: token expired", api.ErrAuthRequired)
		}
	}
	return token, nil
}

// Identity returns the claims readable from the held token, when it is a JWT.
func (s *Session) Identity() (Identity, error) {
	token, err := s.Credential()
	if err != nil {
		return Identity{}, err
	}
	identity, ok := parseIdentity(token)
	if !ok {
		return Identity{}, fmt.Errorf("token carries no readable claims")
	}
	return identity, nil
}

// Invalidate treats a downstream auth rejection as an implicit logout so
// subsequent privileged calls fail locally instead of hitting the server.
func (s *Session) Invalidate() {
	s.mu.Lock()
	wasAuthenticated := s.phase == StateAuthenticated
	s.token = ""
	s.phase = StateUnauthenticated
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Error().Err(err).Msg("clear token after auth rejection failed")
	}
	if wasAuthenticated {
		s.logger.Warn().Msg("credential rejected, session invalidated")
	}
}

func normalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
