package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/internal/memberships"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	"github.com/storegrid/storegrid-backend/pkg/enums"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}


// Service manages store lifecycle.
type Service interface {
	Create(ctx context.Context, ownerUserID uuid.UUID, input CreateStoreInput) (*StoreDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) ([]MemberStoreDTO, pagination.Paging, error)
	Get(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error)
	Update(ctx context.Context, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	Remove(ctx context.Context, storeID uuid.UUID) error

	// GetLive is consumed by sibling services that need a live-store check.
	GetLive(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
}

type service struct {
	tx          txRunner
	repo        Repository
	memberships memberships.Repository
}

// NewService builds the stores service.
func NewService(tx txRunner, repo Repository, membershipsRepo memberships.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	if membershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{tx: tx, repo: repo, memberships: membershipsRepo}, nil
}

// Create opens the store and grants the creator the owner membership in the
// same transaction, so a store can never exist without its owner row.
func (s *service) Create(ctx context.Context, ownerUserID uuid.UUID, input CreateStoreInput) (*StoreDTO, error) {
	if ownerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}

	store := &models.Store{
		Name:    strings.TrimSpace(input.Name),
		OwnerID: ownerUserID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, store); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating store")
		}
		membership := &models.StoreMembership{
			StoreID: store.ID,
			UserID:  ownerUserID,
			Role:    enums.MemberRoleOwner,
		}
		if _, err := s.memberships.WithTx(tx).Create(ctx, membership); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating owner membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := storeDTO(store)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) ([]MemberStoreDTO, pagination.Paging, error) {
	params = pagination.Normalize(params)
	rows, total, err := s.repo.ListForUser(ctx, userID, filter, params)
	if err != nil {
		return nil, pagination.Paging{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stores")
	}
	return rows, pagination.PagingFor(params, total), nil
}

func (s *service) Get(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.GetLive(ctx, storeID)
	if err != nil {
		return nil, err
	}
	dto := storeDTO(store)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.repo.GetLive(ctx, storeID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := s.repo.UpdateName(ctx, storeID, name); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating store")
	}

	store.Name = name
	dto := storeDTO(store)
	return &dto, nil
}

// Remove soft-deletes the store and cascades the flag to its categories and
// products inside one transaction. Orders and their item snapshots are kept.
func (s *service) Remove(ctx context.Context, storeID uuid.UUID) error {
	if _, err := s.repo.GetLive(ctx, storeID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.MarkDeleted(ctx, storeID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting store")
		}
		if err := repo.MarkCategoriesDeleted(ctx, storeID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting store categories")
		}
		if err := repo.MarkProductsDeleted(ctx, storeID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting store products")
		}
		return nil
	})
}

func (s *service) GetLive(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	return s.repo.GetLive(ctx, storeID)
}
