// Package session holds the process-wide authentication state: login,
// rehydration from the session file, the bearer token for outgoing calls,
// and logout with cache teardown.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"clinicdesk/internal/cache"
	"clinicdesk/internal/models"
)

var (
	// ErrNotAuthenticated is returned by operations that need a login.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is returned when username or password is empty.
	ErrInvalidCredentials = errors.New("username and password are required")
)

// AuthAPI is the auth part of the backend client.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
}

// UserSource resolves the logged-in user's full record.
type UserSource interface {
	Current(ctx context.Context, userID string, refresh bool) (*models.UserDetails, error)
}

// Manager owns the session lifecycle.
type Manager struct {
	api      AuthAPI
	users    UserSource
	store    Store
	clearers []cache.Clearer
	logger   zerolog.Logger
	now      func() time.Time

	mu    sync.RWMutex
	state *State
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the wall clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithClearers registers caches dropped on logout.
func WithClearers(c ...cache.Clearer) Option {
	return func(m *Manager) { m.clearers = append(m.clearers, c...) }
}

// NewManager creates a logged-out manager. A nil store keeps the session in memory.
func NewManager(api AuthAPI, users UserSource, store Store, logger zerolog.Logger, opts ...Option) *Manager {
	if store == nil {
		store = &MemoryStore{}
	}
	m := &Manager{
		api:    api,
		users:  users,
		store:  store,
		logger: logger.With().Str("component", "session").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token implements clinicapi.TokenSource. It is empty when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return ""
	}
	return m.state.Token
}

// IsAuthenticated reports whether a token is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Authenticated()
}

// State returns a copy of the current state, or nil when logged out.
func (m *Manager) State() *State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return nil
	}
	s := *m.state
	return &s
}

// Role returns the role of the logged-in user.
func (m *Manager) Role() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return ""
	}
	return m.state.Role
}

// Require returns the state or ErrNotAuthenticated.
func (m *Manager) Require() (*State, error) {
	s := m.State()
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return s, nil
}

// Login authenticates, stores the token, fetches the full user record and
// takes the role from it. A failed user fetch leaves the session logged out.
func (m *Manager) Login(ctx context.Context, username, password string) (*State, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		m.logger.Warn().Err(err).Str("username", username).Msg("login failed")
		return nil, err
	}

	pending := &State{
		Token:     resp.Token,
		UserID:    resp.UserID,
		LoggedIn:  m.now(),
		ExpiresAt: tokenExpiry(resp.Token),
	}
	if pending.UserID == "" {
		pending.UserID = tokenSubject(resp.Token)
	}
	m.mu.Lock()
	m.state = pending
	users := m.users
	m.mu.Unlock()

	if users == nil || pending.UserID == "" {
		m.reset()
		return nil, fmt.Errorf("login: no user id in response")
	}
	user, err := users.Current(ctx, pending.UserID, true)
	if err != nil {
		m.reset()
		m.logger.Warn().Err(err).Str("user_id", pending.UserID).Msg("failed to fetch user after login")
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	done := *pending
	done.User = user
	done.Role = user.Role
	m.mu.Lock()
	m.state = &done
	m.mu.Unlock()
	snapshot := done

	if err := m.store.Save(&snapshot); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist session")
	}
	m.logger.Info().Str("user_id", snapshot.UserID).Str("role", snapshot.Role).Msg("logged in")
	return &snapshot, nil
}

// Rehydrate restores a persisted session at startup. A session whose token
// carries an exp claim in the past is discarded.
func (m *Manager) Rehydrate() (*State, error) {
	s, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if !s.Authenticated() {
		return nil, nil
	}
	if exp := tokenExpiry(s.Token); exp != nil && !m.now().Before(*exp) {
		m.logger.Info().Time("expired_at", *exp).Msg("stored session expired")
		if err := m.store.Clear(); err != nil {
			m.logger.Warn().Err(err).Msg("failed to remove expired session")
		}
		return nil, nil
	}

	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	out := *s
	return &out, nil
}

// Logout drops all local state and clears every registered cache. Cache
// failures are logged and returned joined; the session is gone either way.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	userID := ""
	if m.state != nil {
		userID = m.state.UserID
	}
	m.state = nil
	clearers := append([]cache.Clearer(nil), m.clearers...)
	m.mu.Unlock()

	var errs []error
	if err := m.store.Clear(); err != nil {
		errs = append(errs, err)
	}
	for _, c := range clearers {
		if err := c.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		m.logger.Warn().Err(err).Msg("logout cleanup incomplete")
	}
	m.logger.Info().Str("user_id", userID).Msg("logged out")
	return err
}

func (m *Manager) reset() {
	m.mu.Lock()
	m.state = nil
	m.mu.Unlock()
}

// tokenExpiry reads exp without verifying the signature; the backend does
// that. Opaque tokens have no expiry.
func tokenExpiry(token string) *time.Time {
	claims, ok := parseClaims(token)
	if !ok {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

func tokenSubject(token string) string {
	claims, ok := parseClaims(token)
	if !ok {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

func parseClaims(token string) (jwt.MapClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
