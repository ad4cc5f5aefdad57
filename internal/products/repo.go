package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes product persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetLive(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error)
	GetLiveBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*models.Product, error)
	CountLiveBySKU(ctx context.Context, storeID uuid.UUID, sku string) (int64, error)
	List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Product, int64, error)
	Save(ctx context.Context, product *models.Product) error
	MarkDeleted(ctx context.Context, storeID, productID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) GetLive(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Scopes(db.NotDeleted).
		Where("store_id = ?", storeID).
		First(&product, "id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetLiveBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Scopes(db.NotDeleted).
		Where("store_id = ? AND sku = ?", storeID, sku).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CountLiveBySKU(ctx context.Context, storeID uuid.UUID, sku string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(db.NotDeleted).
		Where("store_id = ? AND sku = ?", storeID, sku).
		Count(&count).Error
	return count, err
}

func (r *repository) List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Product, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.Product{}).
			Scopes(db.NotDeleted).
			Where("store_id = ?", storeID)
		if filter.Name != "" {
			q = q.Where("name LIKE ?", "%"+filter.Name+"%")
		}
		if filter.SKU != "" {
			q = q.Where("sku = ?", filter.SKU)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query().
		Order("name").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) MarkDeleted(ctx context.Context, storeID, productID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ? AND is_deleted = ?", productID, storeID, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
