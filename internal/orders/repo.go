package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes order persistence plus the stock mutation used inside
// the order-placement transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error
	ReadStock(ctx context.Context, productID uuid.UUID) (int, error)
	FindAll(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
	FindOne(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	LoadNames(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]orderNamesRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// DecrementStock subtracts unconditionally; the caller re-reads and aborts
// the transaction when the result went negative.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty)).Error
}

func (r *repository) ReadStock(ctx context.Context, productID uuid.UUID) (int, error) {
	var stock int
	err := r.db.WithContext(ctx).
		Raw("SELECT stock FROM products WHERE id = ?", productID).
		Scan(&stock).Error
	return stock, err
}

func (r *repository) FindAll(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Order, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("store_id = ?", storeID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err = r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Preload("Items").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) FindOne(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", orderID, storeID).
		Preload("Items").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LoadNames fetches the purchaser and store display names for a set of orders.
func (r *repository) LoadNames(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]orderNamesRow, error) {
	if len(orderIDs) == 0 {
		return map[uuid.UUID]orderNamesRow{}, nil
	}

	var rows []orderNamesRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.id, users.name AS cashier_name, stores.name AS store_name").
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("JOIN stores ON stores.id = orders.store_id").
		Where("orders.id IN ?", orderIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]orderNamesRow, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}
