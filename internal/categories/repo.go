package categories

import (
	"context"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
	"github.com/storegrid/storegrid-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes category persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	GetLive(ctx context.Context, storeID, categoryID uuid.UUID) (*models.Category, error)
	List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Category, int64, error)
	UpdateName(ctx context.Context, storeID, categoryID uuid.UUID, name string) (bool, error)
	MarkDeleted(ctx context.Context, storeID, categoryID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a categories repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) GetLive(ctx context.Context, storeID, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Scopes(db.NotDeleted).
		Where("store_id = ?", storeID).
		First(&category, "id = ?", categoryID).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) List(ctx context.Context, storeID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Category, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.Category{}).
			Scopes(db.NotDeleted).
			Where("store_id = ?", storeID)
		if filter.Name != "" {
			q = q.Where("name LIKE ?", "%"+filter.Name+"%")
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Category
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

func (r *repository) UpdateName(ctx context.Context, storeID, categoryID uuid.UUID, name string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND store_id = ? AND is_deleted = ?", categoryID, storeID, false).
		Update("name", name)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) MarkDeleted(ctx context.Context, storeID, categoryID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND store_id = ? AND is_deleted = ?", categoryID, storeID, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
