package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

type storeLoader interface {
	GetLive(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
}

// Service manages a store's product catalog.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) ([]ProductDTO, pagination.Paging, error)
	Get(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error)
	GetBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*ProductDTO, error)
	Update(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Remove(ctx context.Context, storeID, productID uuid.UUID) error
}

type service struct {
	repo   Repository
	stores storeLoader
}

// NewService builds the products service.
func NewService(repo Repository, stores storeLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	return &service{repo: repo, stores: stores}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if _, err := s.stores.GetLive(ctx, storeID); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(input.SKU)
	taken, err := s.repo.CountLiveBySKU(ctx, storeID, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking sku")
	}
	if taken > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %q already exists in this store", sku))
	}

	product, err := s.repo.Create(ctx, &models.Product{
		StoreID: storeID,
		SKU:     sku,
		Name:    strings.TrimSpace(input.Name),
		Price:   input.Price,
		Stock:   input.Stock,
	})
	if err != nil {
		// the partial unique index backstops concurrent creates
		if db.IsUniqueViolation(err, "idx_products_store_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %q already exists in this store", sku))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}

	dto := productDTO(product)
	return &dto, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) ([]ProductDTO, pagination.Paging, error) {
	if _, err := s.stores.GetLive(ctx, storeID); err != nil {
		return nil, pagination.Paging{}, err
	}

	params = pagination.Normalize(params)
	rows, total, err := s.repo.List(ctx, storeID, filter, params)
	if err != nil {
		return nil, pagination.Paging{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return productsToDTO(rows), pagination.PagingFor(params, total), nil
}

func (s *service) Get(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.getLive(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	dto := productDTO(product)
	return &dto, nil
}

func (s *service) GetBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*ProductDTO, error) {
	product, err := s.repo.GetLiveBySKU(ctx, storeID, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	dto := productDTO(product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.getLive(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}

	dto := productDTO(product)
	return &dto, nil
}

func (s *service) Remove(ctx context.Context, storeID, productID uuid.UUID) error {
	deleted, err := s.repo.MarkDeleted(ctx, storeID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) getLive(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetLive(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}
