package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes cart persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, line *models.CartItem) (*models.CartItem, error)
	GetLineByProduct(ctx context.Context, storeID, userID, productID uuid.UUID) (*models.CartItem, error)
	GetLineByID(ctx context.Context, storeID, userID, lineID uuid.UUID) (*models.CartItem, error)
	ListWithProducts(ctx context.Context, storeID, userID uuid.UUID) ([]models.CartItem, error)
	UpdateQty(ctx context.Context, lineID uuid.UUID, qty int) error
	Delete(ctx context.Context, lineID uuid.UUID) error
	DeleteForUserStore(ctx context.Context, storeID, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, line *models.CartItem) (*models.CartItem, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *repository) GetLineByProduct(ctx context.Context, storeID, userID, productID uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ? AND product_id = ?", storeID, userID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) GetLineByID(ctx context.Context, storeID, userID, lineID uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ? AND user_id = ?", lineID, storeID, userID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// ListWithProducts returns the user's lines for the store with their product
// snapshots attached. Lines whose product has since been soft-deleted are
// excluded.
func (r *repository) ListWithProducts(ctx context.Context, storeID, userID uuid.UUID) ([]models.CartItem, error) {
	var lines []models.CartItem
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = cart_items.product_id AND products.is_deleted = ?", false).
		Where("cart_items.store_id = ? AND cart_items.user_id = ?", storeID, userID).
		Preload("Product").
		Order("cart_items.created_at").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) UpdateQty(ctx context.Context, lineID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", lineID).
		Update("qty", qty).Error
}

func (r *repository) Delete(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.CartItem{}, "id = ?", lineID).Error
}

func (r *repository) DeleteForUserStore(ctx context.Context, storeID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		Delete(&models.CartItem{}).Error
}
