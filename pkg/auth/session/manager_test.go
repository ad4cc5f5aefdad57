package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/redis"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func newTestManager(t *testing.T) (*Manager, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	manager, err := NewManager(store, 30*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return manager, store
}

func TestGenerateAndHasSession(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	session, err := manager.Generate(ctx, uuid.New())
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessID)
	require.NotEmpty(t, session.RefreshToken)

	live, err := manager.HasSession(ctx, session.AccessID)
	require.NoError(t, err)
	require.True(t, live)

	live, err = manager.HasSession(ctx, "unknown-access-id")
	require.NoError(t, err)
	require.False(t, live)
}

func TestRotateConsumesRefreshToken(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	userID := uuid.New()

	session, err := manager.Generate(ctx, userID)
	require.NoError(t, err)

	rotatedUser, next, err := manager.Rotate(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, userID, rotatedUser)
	require.NotEqual(t, session.RefreshToken, next.RefreshToken)

	_, _, err = manager.Rotate(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRevokeEndsSession(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	session, err := manager.Generate(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(ctx, session.AccessID, session.RefreshToken))

	live, err := manager.HasSession(ctx, session.AccessID)
	require.NoError(t, err)
	require.False(t, live)

	_, _, err = manager.Rotate(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRotateRejectsUnknownToken(t *testing.T) {
	manager, _ := newTestManager(t)
	_, _, err := manager.Rotate(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}
