package memberships

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/internal/users"
	"github.com/storegrid/storegrid-backend/pkg/db"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	"github.com/storegrid/storegrid-backend/pkg/enums"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

type storeLoader interface {
	GetLive(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
}

// Service manages a store's member roster.
//
// Two rules hold for every mutation: the store owner's membership is immutable
// through this service, and the owner role can never be granted to anyone.
type Service interface {
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]MemberDTO, pagination.Paging, error)
	Invite(ctx context.Context, storeID uuid.UUID, input InviteMemberInput) (*MemberDTO, error)
	UpdateRole(ctx context.Context, storeID, memberUserID uuid.UUID, input UpdateMemberInput) (*MemberDTO, error)
	Remove(ctx context.Context, storeID, memberUserID uuid.UUID) error

	// RoleChecker surface used by the authorization middleware.
	ResolveRole(ctx context.Context, userID, storeID uuid.UUID) (enums.MemberRole, error)
	UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

type service struct {
	repo      Repository
	usersRepo users.Repository
	stores    storeLoader
}

// NewService builds the memberships service.
func NewService(repo Repository, usersRepo users.Repository, stores storeLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	return &service{repo: repo, usersRepo: usersRepo, stores: stores}, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]MemberDTO, pagination.Paging, error) {
	if _, err := s.stores.GetLive(ctx, storeID); err != nil {
		return nil, pagination.Paging{}, err
	}

	params = pagination.Normalize(params)
	members, total, err := s.repo.ListByStore(ctx, storeID, params)
	if err != nil {
		return nil, pagination.Paging{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing members")
	}
	return members, pagination.PagingFor(params, total), nil
}

func (s *service) Invite(ctx context.Context, storeID uuid.UUID, input InviteMemberInput) (*MemberDTO, error) {
	role, err := enums.ParseMemberRole(input.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "owner role cannot be granted")
	}

	if _, err := s.stores.GetLive(ctx, storeID); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.usersRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account exists for that email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	membership, err := s.repo.Create(ctx, &models.StoreMembership{
		StoreID: storeID,
		UserID:  user.ID,
		Role:    role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_store_memberships_store_user") {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyMember, "user is already a member of this store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating membership")
	}

	return &MemberDTO{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     membership.Role,
		JoinedAt: membership.CreatedAt,
	}, nil
}

func (s *service) UpdateRole(ctx context.Context, storeID, memberUserID uuid.UUID, input UpdateMemberInput) (*MemberDTO, error) {
	role, err := enums.ParseMemberRole(input.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "owner role cannot be granted")
	}

	if _, err := s.stores.GetLive(ctx, storeID); err != nil {
		return nil, err
	}

	current, err := s.getMembership(ctx, storeID, memberUserID)
	if err != nil {
		return nil, err
	}
	if current.Role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "the store owner's membership cannot be changed")
	}

	if _, err := s.repo.UpdateRole(ctx, storeID, memberUserID, role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating role")
	}

	user, err := s.usersRepo.GetByID(ctx, memberUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	return &MemberDTO{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     role,
		JoinedAt: current.CreatedAt,
	}, nil
}

func (s *service) Remove(ctx context.Context, storeID, memberUserID uuid.UUID) error {
	if _, err := s.stores.GetLive(ctx, storeID); err != nil {
		return err
	}

	current, err := s.getMembership(ctx, storeID, memberUserID)
	if err != nil {
		return err
	}
	if current.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "the store owner's membership cannot be changed")
	}

	if _, err := s.repo.Delete(ctx, storeID, memberUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing member")
	}
	return nil
}

func (s *service) ResolveRole(ctx context.Context, userID, storeID uuid.UUID) (enums.MemberRole, error) {
	return s.repo.ResolveRole(ctx, userID, storeID)
}

func (s *service) UserHasRole(ctx context.Context, userID, storeID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	return s.repo.UserHasRole(ctx, userID, storeID, roles...)
}

func (s *service) getMembership(ctx context.Context, storeID, memberUserID uuid.UUID) (*models.StoreMembership, error) {
	membership, err := s.repo.Get(ctx, storeID, memberUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading membership")
	}
	return membership, nil
}
