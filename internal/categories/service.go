package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

type storeLoader interface {
	GetLive(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
}

// Service manages a store's categories. Deletion is an independent flag and
// never touches the products referencing the category.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateCategoryInput) (*CategoryDTO, error)
	List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) ([]CategoryDTO, pagination.Paging, error)
	Get(ctx context.Context, storeID, categoryID uuid.UUID) (*CategoryDTO, error)
	Update(ctx context.Context, storeID, categoryID uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	Remove(ctx context.Context, storeID, categoryID uuid.UUID) error
}

type service struct {
	repo   Repository
	stores storeLoader
}

// NewService builds the categories service.
func NewService(repo Repository, stores storeLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	return &service{repo: repo, stores: stores}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateCategoryInput) (*CategoryDTO, error) {
	if _, err := s.stores.GetLive(ctx, storeID); err != nil {
		return nil, err
	}

	category, err := s.repo.Create(ctx, &models.Category{
		StoreID: storeID,
		Name:    strings.TrimSpace(input.Name),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}

	dto := categoryDTO(category)
	return &dto, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) ([]CategoryDTO, pagination.Paging, error) {
	if _, err := s.stores.GetLive(ctx, storeID); err != nil {
		return nil, pagination.Paging{}, err
	}

	params = pagination.Normalize(params)
	rows, total, err := s.repo.List(ctx, storeID, filter, params)
	if err != nil {
		return nil, pagination.Paging{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return categoriesToDTO(rows), pagination.PagingFor(params, total), nil
}

func (s *service) Get(ctx context.Context, storeID, categoryID uuid.UUID) (*CategoryDTO, error) {
	category, err := s.getLive(ctx, storeID, categoryID)
	if err != nil {
		return nil, err
	}
	dto := categoryDTO(category)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, storeID, categoryID uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.getLive(ctx, storeID, categoryID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if _, err := s.repo.UpdateName(ctx, storeID, categoryID, name); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating category")
	}

	category.Name = name
	dto := categoryDTO(category)
	return &dto, nil
}

func (s *service) Remove(ctx context.Context, storeID, categoryID uuid.UUID) error {
	deleted, err := s.repo.MarkDeleted(ctx, storeID, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

func (s *service) getLive(ctx context.Context, storeID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.repo.GetLive(ctx, storeID, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
	}
	return category, nil
}
