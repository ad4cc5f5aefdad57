package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"gorm.io/gorm"
)

type productLoader interface {
	GetLive(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error)
}

// Service is the cart accumulator. Adding an existing product merges the
// quantities into one line; the stock check here is advisory only, the
// authoritative check happens when the order is placed.
type Service interface {
	AddItem(ctx context.Context, storeID, userID uuid.UUID, input AddItemInput) (*CartItemDTO, error)
	List(ctx context.Context, storeID, userID uuid.UUID) (*CartDTO, error)
	UpdateItem(ctx context.Context, storeID, userID, lineID uuid.UUID, input UpdateItemInput) (*CartItemDTO, error)
	RemoveItem(ctx context.Context, storeID, userID, lineID uuid.UUID) (*CartItemDTO, error)
}

type service struct {
	repo     Repository
	products productLoader
}

// NewService builds the cart service.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) AddItem(ctx context.Context, storeID, userID uuid.UUID, input AddItemInput) (*CartItemDTO, error) {
	if input.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}

	product, err := s.loadProduct(ctx, storeID, input.ProductID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetLineByProduct(ctx, storeID, userID, input.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	}

	resulting := input.Qty
	if existing != nil {
		resulting += existing.Qty
	}
	if product.Stock < resulting {
		return nil, insufficientStock(product, resulting)
	}

	var line *models.CartItem
	if existing != nil {
		if err := s.repo.UpdateQty(ctx, existing.ID, resulting); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merging cart line")
		}
		existing.Qty = resulting
		line = existing
	} else {
		line, err = s.repo.Create(ctx, &models.CartItem{
			StoreID:   storeID,
			UserID:    userID,
			ProductID: input.ProductID,
			Qty:       input.Qty,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart line")
		}
	}

	line.Product = product
	dto := lineDTO(line)
	return &dto, nil
}

func (s *service) List(ctx context.Context, storeID, userID uuid.UUID) (*CartDTO, error) {
	lines, err := s.repo.ListWithProducts(ctx, storeID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing cart")
	}
	cart := cartDTO(lines)
	return &cart, nil
}

func (s *service) UpdateItem(ctx context.Context, storeID, userID, lineID uuid.UUID, input UpdateItemInput) (*CartItemDTO, error) {
	if input.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}

	line, err := s.loadLine(ctx, storeID, userID, lineID)
	if err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, storeID, line.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock < input.Qty {
		return nil, insufficientStock(product, input.Qty)
	}

	if err := s.repo.UpdateQty(ctx, line.ID, input.Qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
	}

	line.Qty = input.Qty
	line.Product = product
	dto := lineDTO(line)
	return &dto, nil
}

func (s *service) RemoveItem(ctx context.Context, storeID, userID, lineID uuid.UUID) (*CartItemDTO, error) {
	line, err := s.loadLine(ctx, storeID, userID, lineID)
	if err != nil {
		return nil, err
	}

	// best effort decoration; the product may already be gone
	if product, err := s.products.GetLive(ctx, storeID, line.ProductID); err == nil {
		line.Product = product
	}

	if err := s.repo.Delete(ctx, line.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
	}

	dto := lineDTO(line)
	return &dto, nil
}

func (s *service) loadProduct(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetLive(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) loadLine(ctx context.Context, storeID, userID, lineID uuid.UUID) (*models.CartItem, error) {
	line, err := s.repo.GetLineByID(ctx, storeID, userID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	}
	return line, nil
}

func insufficientStock(product *models.Product, requested int) error {
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %q: %d requested, %d available", product.Name, requested, product.Stock),
	)
}
