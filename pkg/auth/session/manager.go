package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/redis"
)

// ErrInvalidRefreshToken is returned when a refresh token is unknown or expired.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Store is the subset of the redis client the manager depends on.
type Store interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Manager tracks live access sessions and refresh tokens in Redis. Access
// tokens are only honored while their session record exists, which makes
// logout effective before JWT expiry.
type Manager struct {
	store      Store
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type Session struct {
	AccessID     string
	RefreshToken string
}

func NewManager(store Store, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access ttl must be positive")
	}
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("refresh ttl must be positive")
	}
	return &Manager{store: store, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// NewAccessID mints the JTI embedded into access tokens.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate registers a new session for the user and returns its identifiers.
func (m *Manager) Generate(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	accessID := NewAccessID()
	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := m.store.Set(ctx, redis.AccessSessionKey(accessID), userID.String(), m.accessTTL); err != nil {
		return nil, fmt.Errorf("storing access session: %w", err)
	}
	if err := m.store.Set(ctx, redis.RefreshSessionKey(refreshToken), userID.String(), m.refreshTTL); err != nil {
		_ = m.store.Del(ctx, redis.AccessSessionKey(accessID))
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &Session{AccessID: accessID, RefreshToken: refreshToken}, nil
}

// Rotate consumes a refresh token and issues a fresh session for its user.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (uuid.UUID, *Session, error) {
	if refreshToken == "" {
		return uuid.Nil, nil, ErrInvalidRefreshToken
	}

	raw, err := m.store.Get(ctx, redis.RefreshSessionKey(refreshToken))
	if err != nil {
		return uuid.Nil, nil, wrapNotFound(err)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("corrupt refresh session value: %w", err)
	}

	if err := m.store.Del(ctx, redis.RefreshSessionKey(refreshToken)); err != nil {
		return uuid.Nil, nil, fmt.Errorf("consuming refresh token: %w", err)
	}

	session, err := m.Generate(ctx, userID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return userID, session, nil
}

// Revoke removes the session records for the given identifiers.
func (m *Manager) Revoke(ctx context.Context, accessID, refreshToken string) error {
	keys := []string{}
	if accessID != "" {
		keys = append(keys, redis.AccessSessionKey(accessID))
	}
	if refreshToken != "" {
		keys = append(keys, redis.RefreshSessionKey(refreshToken))
	}
	if len(keys) == 0 {
		return nil
	}
	if err := m.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// HasSession reports whether an access session is still live.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if accessID == "" {
		return false, nil
	}
	return m.store.Exists(ctx, redis.AccessSessionKey(accessID))
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrInvalidRefreshToken
	}
	return fmt.Errorf("loading refresh session: %w", err)
}
