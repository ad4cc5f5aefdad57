package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/internal/users"
	pkgauth "github.com/storegrid/storegrid-backend/pkg/auth"
	"github.com/storegrid/storegrid-backend/pkg/auth/session"
	"github.com/storegrid/storegrid-backend/pkg/config"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	usersDDL := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(usersDDL).Error)
	return db
}

type fakeSessions struct {
	generated int
	revoked   []string
	refresh   map[string]uuid.UUID
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{refresh: map[string]uuid.UUID{}}
}

func (f *fakeSessions) Generate(_ context.Context, userID uuid.UUID) (*session.Session, error) {
	f.generated++
	sess := &session.Session{
		AccessID:     fmt.Sprintf("access-%d", f.generated),
		RefreshToken: fmt.Sprintf("refresh-%d", f.generated),
	}
	f.refresh[sess.RefreshToken] = userID
	return sess, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, refreshToken string) (uuid.UUID, *session.Session, error) {
	userID, ok := f.refresh[refreshToken]
	if !ok {
		return uuid.Nil, nil, session.ErrInvalidRefreshToken
	}
	delete(f.refresh, refreshToken)
	sess, err := f.Generate(ctx, userID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return userID, sess, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID, refreshToken string) error {
	f.revoked = append(f.revoked, accessID, refreshToken)
	delete(f.refresh, refreshToken)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeSessions) {
	t.Helper()

	db := setupAuthTestDB(t)
	sessions := newFakeSessions()

	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storegrid-test",
		ExpirationMinutes: 30,
	}
	pwdCfg := config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	svc, err := NewService(users.NewRepository(db), sessions, jwtCfg, pwdCfg)
	require.NoError(t, err)
	return svc, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Email:    "Dana@Example.com",
		Name:     "Dana",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", registered.Email)
	assert.Nil(t, registered.LastLoginAt)

	pair, err := svc.Login(ctx, LoginInput{Email: "dana@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, registered.ID, pair.User.ID)
	require.NotNil(t, pair.User.LastLoginAt)

	claims, err := pkgauth.ParseAccessToken(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storegrid-test",
		ExpirationMinutes: 30,
	}, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "access-1", claims.ID)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "dana@example.com", Name: "Dana", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "dana@example.com", Name: "Other", Password: "other-pass"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "dana@example.com", Name: "Dana", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "dana@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "dana@example.com", Name: "Dana", Password: "correct-horse"})
	require.NoError(t, err)

	pair, err := svc.Login(ctx, LoginInput{Email: "dana@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, RefreshInput{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Equal(t, pair.User.ID, next.User.ID)

	// the consumed token must not work twice
	_, err = svc.Refresh(ctx, RefreshInput{RefreshToken: pair.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	assert.Equal(t, 2, sessions.generated)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "dana@example.com", Name: "Dana", Password: "correct-horse"})
	require.NoError(t, err)

	pair, err := svc.Login(ctx, LoginInput{Email: "dana@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "access-1", pair.RefreshToken))
	assert.Contains(t, sessions.revoked, "access-1")

	_, err = svc.Refresh(ctx, RefreshInput{RefreshToken: pair.RefreshToken})
	require.Error(t, err)
}
