package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storegrid/storegrid-backend/internal/cart"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	pkgerrors "github.com/storegrid/storegrid-backend/pkg/errors"
	"github.com/storegrid/storegrid-backend/pkg/logger"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service places orders and reads order history.
type Service interface {
	Create(ctx context.Context, storeID, userID uuid.UUID) (*OrderDTO, error)
	FindAll(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]OrderDTO, pagination.Paging, error)
	FindOne(ctx context.Context, storeID, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	cartRepo cart.Repository
	logg     *logger.Logger
}

// NewService builds the orders service.
func NewService(tx txRunner, repo Repository, cartRepo cart.Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, cartRepo: cartRepo, logg: logg}, nil
}

// Create converts the caller's cart into an order inside one transaction:
// load the lines, decrement stock per line and abort if any went negative,
// snapshot items with the prices read at the start, then clear the cart.
// Any failure rolls the whole thing back, stock included.
func (s *service) Create(ctx context.Context, storeID, userID uuid.UUID) (*OrderDTO, error) {
	if storeID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and user id required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		lines, err := cartRepo.ListWithProducts(ctx, storeID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))

		for i := range lines {
			line := &lines[i]
			if line.Product == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "cart line missing product")
			}

			if err := repo.DecrementStock(ctx, line.ProductID, line.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing stock")
			}
			remaining, err := repo.ReadStock(ctx, line.ProductID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "re-reading stock")
			}
			if remaining < 0 {
				return pkgerrors.New(
					pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for %q", line.Product.Name),
				)
			}

			lineTotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:  line.ProductID,
				Name:       line.Product.Name,
				SKU:        line.Product.SKU,
				Price:      line.Product.Price,
				Qty:        line.Qty,
				TotalPrice: lineTotal,
			})
		}

		order = &models.Order{
			StoreID: storeID,
			UserID:  userID,
			Total:   total,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order items")
		}
		order.Items = items

		if err := cartRepo.DeleteForUserStore(ctx, storeID, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"total":    order.Total.String(),
		"items":    len(order.Items),
	})
	s.logg.Info(logCtx, "order placed")

	return s.decorate(ctx, order)
}

func (s *service) FindAll(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]OrderDTO, pagination.Paging, error) {
	params = pagination.Normalize(params)
	rows, total, err := s.repo.FindAll(ctx, storeID, params)
	if err != nil {
		return nil, pagination.Paging{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	names, err := s.repo.LoadNames(ctx, ids)
	if err != nil {
		return nil, pagination.Paging{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decorating orders")
	}

	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, orderDTO(&rows[i], names[rows[i].ID]))
	}
	return out, pagination.PagingFor(params, total), nil
}

func (s *service) FindOne(ctx context.Context, storeID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOne(ctx, storeID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return s.decorate(ctx, order)
}

func (s *service) decorate(ctx context.Context, order *models.Order) (*OrderDTO, error) {
	names, err := s.repo.LoadNames(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decorating order")
	}
	dto := orderDTO(order, names[order.ID])
	return &dto, nil
}
