package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/internal/users"
	pkgauth "github.com/storegrid/storegrid-backend/pkg/auth"
	"github.com/storegrid/storegrid-backend/pkg/auth/session"
	"github.com/storegrid/storegrid-backend/pkg/config"
	"github.com/storegrid/storegrid-backend/pkg/db"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/security"
	"gorm.io/gorm"
)

type sessionManager interface {
	Generate(ctx context.Context, userID uuid.UUID) (*session.Session, error)
	Rotate(ctx context.Context, refreshToken string) (uuid.UUID, *session.Session, error)
	Revoke(ctx context.Context, accessID, refreshToken string) error
}

// Service handles account registration and the session lifecycle.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	Login(ctx context.Context, input LoginInput) (*TokenPairDTO, error)
	Refresh(ctx context.Context, input RefreshInput) (*TokenPairDTO, error)
	Logout(ctx context.Context, accessID, refreshToken string) error
}

type service struct {
	usersRepo users.Repository
	sessions  sessionManager
	jwtConfig config.JWTConfig
	pwdConfig config.PasswordConfig
	now       func() time.Time
}

// NewService builds the auth service.
func NewService(usersRepo users.Repository, sessions sessionManager, jwtConfig config.JWTConfig, pwdConfig config.PasswordConfig) (Service, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if jwtConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		usersRepo: usersRepo,
		sessions:  sessions,
		jwtConfig: jwtConfig,
		pwdConfig: pwdConfig,
		now:       time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := security.HashPassword(input.Password, s.pwdConfig)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
	}

	created, err := s.usersRepo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	dto := userDTO(created)
	return &dto, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*TokenPairDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.usersRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	loginAt := s.now().UTC()
	if err := s.usersRepo.TouchLastLogin(ctx, user.ID, loginAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording login")
	}
	pair.User.LastLoginAt = &loginAt

	return pair, nil
}

func (s *service) Refresh(ctx context.Context, input RefreshInput) (*TokenPairDTO, error) {
	userID, sess, err := s.sessions.Rotate(ctx, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating session")
	}

	user, err := s.usersRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	token, err := pkgauth.MintAccessToken(s.jwtConfig, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.Name,
		JTI:    sess.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &TokenPairDTO{
		AccessToken:  token,
		RefreshToken: sess.RefreshToken,
		User:         userDTO(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID, refreshToken string) error {
	if err := s.sessions.Revoke(ctx, accessID, refreshToken); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*TokenPairDTO, error) {
	sess, err := s.sessions.Generate(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
	}

	token, err := pkgauth.MintAccessToken(s.jwtConfig, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.Name,
		JTI:    sess.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &TokenPairDTO{
		AccessToken:  token,
		RefreshToken: sess.RefreshToken,
		User:         userDTO(user),
	}, nil
}

func userDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
